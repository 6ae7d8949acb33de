package models

// Identity names one addressable participant in a conversation.
type Identity string

const (
	IdentityClaude    Identity = "claude"
	IdentityChatGPT   Identity = "chatgpt"
	IdentityGemini    Identity = "gemini"
	IdentityUser      Identity = "user"
	IdentitySystem    Identity = "system"
	IdentitySynthesis Identity = "synthesis"
)

// Models lists the three LLM voices in their fixed speaking order.
var Models = []Identity{IdentityClaude, IdentityChatGPT, IdentityGemini}

// IsModel reports whether the identity is one of the three LLM voices.
func (id Identity) IsModel() bool {
	return id == IdentityClaude || id == IdentityChatGPT || id == IdentityGemini
}

// Valid reports whether the identity is one of the known participant kinds.
func (id Identity) Valid() bool {
	switch id {
	case IdentityClaude, IdentityChatGPT, IdentityGemini,
		IdentityUser, IdentitySystem, IdentitySynthesis:
		return true
	}
	return false
}

// DefaultLabel returns the hard-coded display label for an identity when no
// persona is bound to it.
func (id Identity) DefaultLabel() string {
	switch id {
	case IdentityClaude:
		return "Claude"
	case IdentityChatGPT:
		return "ChatGPT"
	case IdentityGemini:
		return "Gemini"
	case IdentityUser:
		return "User"
	case IdentitySystem:
		return "System"
	case IdentitySynthesis:
		return "Synthesis"
	}
	return "Unknown"
}
