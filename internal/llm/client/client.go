package llmclient

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient executes one chat-style completion and returns the raw text.
// Cross-cutting concerns (rate limiting, logging, hooks, timeouts) are
// applied as middleware in package llm.
type ChatClient interface {
	Name() string
	Close() error
	Complete(ctx context.Context, messages []Message, temperature float64) (string, error)
}

// PromptChars is the total character count of a conversation, used for logging.
func PromptChars(messages []Message) int {
	n := 0
	for _, m := range messages {
		n += len(m.Content)
	}
	return n
}
