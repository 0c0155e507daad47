package llm

import (
	"context"
	"encoding/json"
	"strings"
)

// Provider is a chat model behind one vendor API. The tutor uses it for
// level feedback, the assistant chat and practice verdicts.
type Provider interface {
	// Generate runs one request. Provider failures are *Error. With a Schema the
	// reply Content is JSON already checked against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the vendor model id requests are sent to.
	ModelID() string
}

// Request is one prompt. The purpose travels in the context, see
// WithPurpose.
type Request struct {
	// System sets the tutor persona and the reply language.
	System string

	// Messages is the conversation history, oldest first. Feedback
	// requests carry one user message; assistant chats carry the recent
	// history.
	Messages []Message

	// Schema asks for a JSON reply, sent in each vendor's structured
	// output form. Nil means free text.
	Schema *Schema

	// MaxTokens caps the response length. Zero takes the default of the
	// purpose in the context, see DefaultsFor.
	MaxTokens int

	// Temperature controls randomness, 0.0 to 1.0. Zero takes the purpose
	// default.
	Temperature float64
}

// DefaultMaxTokens applies when neither the request nor its purpose sets
// a cap.
const DefaultMaxTokens = 1024

// Message is one chat turn.
type Message struct {
	Role    Role
	Content string
}

// Role says who wrote a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema for a structured reply.
type Schema struct {
	// Name is kebab-case, e.g. "level-feedback". Compiled schemas are
	// cached by name, so one name must always carry one definition.
	Name string

	// Description is sent to the model along with the schema.
	Description string

	Definition map[string]any
}

// Response is a successful reply.
type Response struct {
	// Content is the validated JSON object for structured requests and
	// the reply text otherwise. Use Text for the latter.
	Content json.RawMessage

	Usage Usage

	// Model is the model that served the request, which may be a dated
	// version of ModelID.
	Model string

	// StopReason is StopEnd or StopMaxTokens.
	StopReason string
}

// Usage counts the tokens of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Text returns Content as plain text. Providers hand back unstructured
// replies verbatim, but some wrap them as a JSON string; both forms are
// accepted.
func (r *Response) Text() string {
	var s string
	if err := json.Unmarshal(r.Content, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(r.Content))
}
