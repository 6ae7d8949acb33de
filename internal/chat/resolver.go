package chat

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// TargetKind says what kind of recipient a routing decision names.
type TargetKind int

const (
	// TargetModel routes to exactly one LLM voice.
	TargetModel TargetKind = iota
	// TargetEveryone routes to all voices.
	TargetEveryone
	// TargetDataQuery routes to the retrieval pipeline instead of a chat
	// turn; the question travels in DataQuery, not Body.
	TargetDataQuery
)

// String returns the wire name for a target kind.
func (k TargetKind) String() string {
	switch k {
	case TargetModel:
		return "model"
	case TargetEveryone:
		return "all"
	case TargetDataQuery:
		return "data-query"
	}
	return "unknown"
}

// RoutingDecision is the result of resolving one raw input. It is computed
// per message and never stored.
type RoutingDecision struct {
	Kind  TargetKind
	Model models.Identity // set for TargetModel and TargetDataQuery

	// Fallback marks an Everyone decision that was reached because no
	// directive matched, as opposed to a deliberate broadcast. Both route
	// identically today; the distinction is kept so they can diverge.
	Fallback bool

	Body      string
	DataQuery string
}

// mentionRegex matches the first short-mention token: @ followed by letters.
var mentionRegex = regexp.MustCompile(`@([A-Za-z]+)`)

// mentionAliases maps lowercased mention tokens to voices. @q is special
// cased in Resolve because it flips the decision into a data query.
var mentionAliases = map[string]models.Identity{
	"a":       models.IdentityClaude,
	"claude":  models.IdentityClaude,
	"c":       models.IdentityChatGPT,
	"chatgpt": models.IdentityChatGPT,
	"g":       models.IdentityGemini,
	"gemini":  models.IdentityGemini,
}

// Resolve turns one raw input into a routing decision. Precedence: first
// @mention, then persona prefix (only while a project is active), then
// broadcast to everyone. It never fails; anything unrecognized degrades to
// the everyone fallback with the text untouched.
func Resolve(text string, reg *Registry, projectActive bool) RoutingDecision {
	if loc := mentionRegex.FindStringSubmatchIndex(text); loc != nil {
		return resolveMention(text, loc, reg)
	}

	if projectActive && reg != nil {
		if d, ok := resolvePersonaPrefix(text, reg); ok {
			return splitDataQuery(d)
		}
	}

	return splitDataQuery(RoutingDecision{
		Kind:     TargetEveryone,
		Fallback: true,
		Body:     text,
	})
}

// resolveMention handles the first @token in the text. Only this occurrence
// is significant; later @tokens stay embedded in the body.
func resolveMention(text string, loc []int, reg *Registry) RoutingDecision {
	token := strings.ToLower(text[loc[2]:loc[3]])
	stripped := strings.TrimSpace(text[:loc[0]] + text[loc[1]:])

	if token == "q" {
		// The whole remaining text is the retrieval question.
		return RoutingDecision{
			Kind:      TargetDataQuery,
			Model:     models.IdentityGemini,
			DataQuery: stripped,
		}
	}

	if model, ok := mentionAliases[token]; ok {
		return splitDataQuery(RoutingDecision{
			Kind:  TargetModel,
			Model: model,
			Body:  stripped,
		})
	}

	if reg != nil {
		if model, ok := reg.LookupByName(token); ok {
			return splitDataQuery(RoutingDecision{
				Kind:  TargetModel,
				Model: model,
				Body:  stripped,
			})
		}
	}

	// Unrecognized token: not a routing directive, so the original text is
	// preserved as-is for everyone.
	return splitDataQuery(RoutingDecision{
		Kind:     TargetEveryone,
		Fallback: true,
		Body:     text,
	})
}

// resolvePersonaPrefix matches "<persona>," or "<persona> " at the start of
// the text, case-insensitively, walking bindings in registration order.
func resolvePersonaPrefix(text string, reg *Registry) (RoutingDecision, bool) {
	for _, b := range reg.Bindings() {
		// Offsets must come from the original text, not a lowercased copy;
		// lowercasing can change byte lengths (U+0130 and friends).
		n := foldPrefixLen(text, b.Name)
		if n < 0 || n >= len(text) {
			continue
		}
		sep, _ := utf8.DecodeRuneInString(text[n:])
		if sep != ',' && sep != ' ' {
			continue
		}

		body := strings.TrimSpace(text[n:])
		body = strings.TrimLeft(body, ", ")

		return RoutingDecision{
			Kind:  TargetModel,
			Model: b.Model,
			Body:  body,
		}, true
	}
	return RoutingDecision{}, false
}

// foldPrefixLen reports the byte length of the prefix of s that matches name
// case-insensitively, rune by rune, or -1 if s does not start with name.
func foldPrefixLen(s, name string) int {
	i := 0
	for _, nr := range name {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return -1
		}
		if unicode.ToLower(r) != unicode.ToLower(nr) {
			return -1
		}
		i += size
	}
	return i
}

// splitDataQuery applies the legacy "::" side channel: everything after the
// first delimiter becomes the data query. Skipped when the decision is
// already a data query from @q.
func splitDataQuery(d RoutingDecision) RoutingDecision {
	if d.Kind == TargetDataQuery {
		return d
	}
	if i := strings.Index(d.Body, "::"); i >= 0 {
		d.DataQuery = strings.TrimSpace(d.Body[i+2:])
		d.Body = strings.TrimSpace(d.Body[:i])
	}
	return d
}
