package models

// MessageRole represents the role of a chat message sender.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// IsValid checks if the message role is valid
func (r MessageRole) IsValid() bool {
	return r == RoleSystem || r == RoleUser || r == RoleAssistant
}

// ChatMessage is a single conversation message as sent by the client.
type ChatMessage struct {
	ID        string      `json:"id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	CreatedAt string      `json:"created_at,omitempty"`
}

// LastUserMessage returns the content of the most recent user message,
// or an empty string when the window has none.
func LastUserMessage(messages []ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	return ""
}
