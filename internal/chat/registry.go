package chat

import (
	"strings"
	"sync"

	"github.com/nickfox/LLMCreativeStudio/internal/models"
)

// Binding ties a persona name to one LLM voice.
type Binding struct {
	Model models.Identity
	Name  string
}

// Registry holds the addressable participants for one project: the three
// fixed voices plus any persona bindings. Bindings keep registration order,
// which is the order the resolver's prefix scan walks them in.
type Registry struct {
	mu       sync.RWMutex
	bindings []Binding
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register binds a persona name to a model, replacing any prior binding for
// that model. If the name was attached to a different model, that older
// binding is removed too, so a persona name maps to at most one voice.
func (r *Registry) Register(model models.Identity, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.bindings[:0]
	for _, b := range r.bindings {
		if b.Model == model || strings.EqualFold(b.Name, name) {
			continue
		}
		kept = append(kept, b)
	}
	r.bindings = append(kept, Binding{Model: model, Name: name})
}

// Unbind removes the persona bound to a model, if any.
func (r *Registry) Unbind(model models.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.bindings[:0]
	for _, b := range r.bindings {
		if b.Model != model {
			kept = append(kept, b)
		}
	}
	r.bindings = kept
}

// Clear removes all persona bindings.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = nil
}

// Bindings returns the current bindings in registration order.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// LookupByName resolves a persona name to its model by case-insensitive
// exact match. The second return is false when no persona matches.
func (r *Registry) LookupByName(name string) (models.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bindings {
		if strings.EqualFold(b.Name, name) {
			return b.Model, true
		}
	}
	return "", false
}

// PersonaFor returns the persona name bound to a model, or "" if none.
func (r *Registry) PersonaFor(model models.Identity) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bindings {
		if b.Model == model {
			return b.Name
		}
	}
	return ""
}

// DisplayName returns the human-facing label for an identity: the bound
// persona name when one exists, else the identity's default label. Unknown
// identities come back as "Unknown" rather than an error.
func (r *Registry) DisplayName(id models.Identity) string {
	if name := r.PersonaFor(id); name != "" {
		return name
	}
	return id.DefaultLabel()
}
