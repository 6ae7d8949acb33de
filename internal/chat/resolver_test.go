package chat

import (
	"testing"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

func TestResolveMentionAliases(t *testing.T) {
	cases := []struct {
		text  string
		model models.Identity
		body  string
	}{
		{"@a what do you think?", models.IdentityClaude, "what do you think?"},
		{"@claude what do you think?", models.IdentityClaude, "what do you think?"},
		{"@c your turn", models.IdentityChatGPT, "your turn"},
		{"@chatgpt your turn", models.IdentityChatGPT, "your turn"},
		{"@g summarize this", models.IdentityGemini, "summarize this"},
		{"@gemini summarize this", models.IdentityGemini, "summarize this"},
		{"@A case should not matter", models.IdentityClaude, "case should not matter"},
	}

	for _, tc := range cases {
		d := Resolve(tc.text, nil, false)
		if d.Kind != TargetModel {
			t.Errorf("Resolve(%q) kind = %v, want model", tc.text, d.Kind)
		}
		if d.Model != tc.model {
			t.Errorf("Resolve(%q) model = %v, want %v", tc.text, d.Model, tc.model)
		}
		if d.Body != tc.body {
			t.Errorf("Resolve(%q) body = %q, want %q", tc.text, d.Body, tc.body)
		}
		if d.Fallback {
			t.Errorf("Resolve(%q) marked fallback", tc.text)
		}
	}
}

func TestResolveDataQueryMention(t *testing.T) {
	d := Resolve("@q when was the track recorded", nil, false)
	if d.Kind != TargetDataQuery {
		t.Fatalf("kind = %v, want data-query", d.Kind)
	}
	if d.Model != models.IdentityGemini {
		t.Errorf("model = %v, want gemini", d.Model)
	}
	if d.DataQuery != "when was the track recorded" {
		t.Errorf("data query = %q", d.DataQuery)
	}
	if d.Body != "" {
		t.Errorf("body = %q, want empty", d.Body)
	}
}

func TestResolveMentionMidText(t *testing.T) {
	d := Resolve("so @g what about the bridge", nil, false)
	if d.Kind != TargetModel || d.Model != models.IdentityGemini {
		t.Fatalf("decision = %+v", d)
	}
	// Only the token is removed; the surrounding whitespace is not collapsed.
	if d.Body != "so  what about the bridge" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestResolveOnlyFirstMentionCounts(t *testing.T) {
	d := Resolve("@a ask @g about it", nil, false)
	if d.Model != models.IdentityClaude {
		t.Fatalf("model = %v, want claude", d.Model)
	}
	if d.Body != "ask @g about it" {
		t.Errorf("body = %q, want later mention kept", d.Body)
	}
}

func TestResolveUnknownMentionFallsBack(t *testing.T) {
	text := "email me @bob about it"
	d := Resolve(text, nil, false)
	if d.Kind != TargetEveryone {
		t.Fatalf("kind = %v, want all", d.Kind)
	}
	if !d.Fallback {
		t.Error("expected fallback flag")
	}
	if d.Body != text {
		t.Errorf("body = %q, want original text untouched", d.Body)
	}
}

func TestResolveMentionMatchesPersona(t *testing.T) {
	reg := NewRegistry()
	reg.Register(models.IdentityClaude, "John")

	d := Resolve("@john what key is this in", reg, true)
	if d.Kind != TargetModel || d.Model != models.IdentityClaude {
		t.Fatalf("decision = %+v", d)
	}
	if d.Body != "what key is this in" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestResolvePersonaPrefix(t *testing.T) {
	reg := NewRegistry()
	reg.Register(models.IdentityClaude, "John Lennon")
	reg.Register(models.IdentityChatGPT, "Paul McCartney")

	d := Resolve("john lennon, what do you think of the chorus?", reg, true)
	if d.Kind != TargetModel || d.Model != models.IdentityClaude {
		t.Fatalf("decision = %+v", d)
	}
	if d.Body != "what do you think of the chorus?" {
		t.Errorf("body = %q", d.Body)
	}
	if d.Fallback {
		t.Error("persona match marked fallback")
	}
}

func TestResolvePersonaPrefixSpaceSeparator(t *testing.T) {
	reg := NewRegistry()
	reg.Register(models.IdentityGemini, "George")

	d := Resolve("George play something new", reg, true)
	if d.Model != models.IdentityGemini {
		t.Fatalf("model = %v", d.Model)
	}
	if d.Body != "play something new" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestResolvePersonaPrefixMultibyteName(t *testing.T) {
	// "İ" is two bytes but lowercases to the one-byte "i", so byte
	// offsets taken on a lowered copy do not line up with the original.
	reg := NewRegistry()
	reg.Register(models.IdentityClaude, "İRİS")

	d := Resolve("İRİS hazır mısın", reg, true)
	if d.Kind != TargetModel || d.Model != models.IdentityClaude {
		t.Fatalf("decision = %+v", d)
	}
	if d.Body != "hazır mısın" {
		t.Errorf("body = %q, want %q", d.Body, "hazır mısın")
	}
}

func TestResolvePersonaRequiresActiveProject(t *testing.T) {
	reg := NewRegistry()
	reg.Register(models.IdentityClaude, "John")

	d := Resolve("John, thoughts?", reg, false)
	if d.Kind != TargetEveryone || !d.Fallback {
		t.Fatalf("decision = %+v, want fallback to everyone", d)
	}
	if d.Body != "John, thoughts?" {
		t.Errorf("body = %q, want untouched", d.Body)
	}
}

func TestResolveMentionBeatsPersonaPrefix(t *testing.T) {
	reg := NewRegistry()
	reg.Register(models.IdentityClaude, "Paul")

	// The @ directive wins even though the text also names a persona, and
	// the persona text stays in the body.
	d := Resolve("@g Paul, what are your thoughts?", reg, true)
	if d.Model != models.IdentityGemini {
		t.Fatalf("model = %v, want gemini", d.Model)
	}
	if d.Body != "Paul, what are your thoughts?" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestResolveRegistrationOrderBreaksTies(t *testing.T) {
	reg := NewRegistry()
	reg.Register(models.IdentityClaude, "Jo")
	reg.Register(models.IdentityChatGPT, "Jo Ann")

	// "Jo " matches the first registered binding before "Jo Ann" is tried.
	d := Resolve("Jo Ann, your verse", reg, true)
	if d.Model != models.IdentityClaude {
		t.Fatalf("model = %v, want first registered binding", d.Model)
	}
}

func TestResolveBroadcastDefault(t *testing.T) {
	d := Resolve("let's all try the second verse", nil, true)
	if d.Kind != TargetEveryone || !d.Fallback {
		t.Fatalf("decision = %+v", d)
	}
	if d.Body != "let's all try the second verse" {
		t.Errorf("body = %q", d.Body)
	}
}

func TestResolveDataQuerySplit(t *testing.T) {
	d := Resolve("@a check the lyrics :: what year was Abbey Road released", nil, false)
	if d.Kind != TargetModel || d.Model != models.IdentityClaude {
		t.Fatalf("decision = %+v", d)
	}
	if d.Body != "check the lyrics" {
		t.Errorf("body = %q", d.Body)
	}
	if d.DataQuery != "what year was Abbey Road released" {
		t.Errorf("data query = %q", d.DataQuery)
	}
}

func TestResolveDataQuerySplitOnBroadcast(t *testing.T) {
	d := Resolve("thoughts on this :: tempo of the original take", nil, false)
	if d.Kind != TargetEveryone {
		t.Fatalf("kind = %v", d.Kind)
	}
	if d.Body != "thoughts on this" || d.DataQuery != "tempo of the original take" {
		t.Errorf("body = %q, query = %q", d.Body, d.DataQuery)
	}
}

func TestResolveDataQueryMentionIgnoresDelimiter(t *testing.T) {
	d := Resolve("@q history :: of the song", nil, false)
	if d.Kind != TargetDataQuery {
		t.Fatalf("kind = %v", d.Kind)
	}
	if d.DataQuery != "history :: of the song" {
		t.Errorf("data query = %q, want delimiter left alone", d.DataQuery)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register(models.IdentityClaude, "John")

	inputs := []string{
		"@a hello",
		"John, hello",
		"plain broadcast",
		"@q find it",
		"split :: here",
	}
	for _, text := range inputs {
		first := Resolve(text, reg, true)
		second := Resolve(text, reg, true)
		if first != second {
			t.Errorf("Resolve(%q) differs across calls: %+v vs %+v", text, first, second)
		}
	}
}

func TestResolveEmptyText(t *testing.T) {
	d := Resolve("", nil, false)
	if d.Kind != TargetEveryone || !d.Fallback || d.Body != "" {
		t.Fatalf("decision = %+v", d)
	}
}
