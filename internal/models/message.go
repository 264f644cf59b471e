package models

// Role identifies who authored a Turn
type Role string

// Roles understood by the chat-completions endpoint
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// String returns the wire representation of the role
func (r Role) String() string {
	return string(r)
}

// Turn is one message unit of a conversation. Turns are values and are never
// modified after they are appended to a Transcript.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewUserTurn creates a user Turn
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn creates an assistant Turn
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// NewSystemTurn creates a system Turn
func NewSystemTurn(content string) Turn {
	return Turn{Role: RoleSystem, Content: content}
}

// IsUser reports whether the turn was written by the customer
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}
