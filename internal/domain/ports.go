package domain

import "context"

// Choice is one selectable reply. Token is what the client sends back.
type Choice struct {
	Token string `json:"token"`
	Label string `json:"label"`
}

// Message is one outbound transport message.
type Message struct {
	// Session is the quiz kind the message belongs to.
	Session SessionKind    `json:"session,omitempty"`
	Kind    string         `json:"kind"`
	Text    string         `json:"text"`
	Choices []Choice       `json:"choices,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// Transport delivers prompts and notices to a user. The reply to a prompt
// arrives later as a separate event.
type Transport interface {
	Prompt(ctx context.Context, userID int64, msg Message) error
	Notify(ctx context.Context, userID int64, msg Message) error
}

// Summarizer turns a prompt pair into narrative text.
type Summarizer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ReportEntry is one question of the rendered report.
type ReportEntry struct {
	QuestionNumber   int
	QuestionText     string
	MainCategoryName string
	OptionA          string
	OptionB          string
	OptionC          string
	OptionD          string
	CorrectAnswer    string
	// Answered is false for questions the deadline cut off.
	Answered         bool
	UserAnswer       string
	IsCorrect        bool
	Explanation      string
}

// ReportData is the template context. Entries are exposed as "questions".
type ReportData struct {
	Title     string
	UserID    int64
	Questions []ReportEntry
}

// RenderRequest names the template and the target location of the intermediate document.
type RenderRequest struct {
	TemplateRef string
	Dir         string
	BaseName    string
	Data        ReportData
}

// DocumentRenderer renders an intermediate document and converts it to the final artifact.
type DocumentRenderer interface {
	Render(ctx context.Context, req RenderRequest) (string, error)
	Convert(ctx context.Context, intermediatePath string) (string, error)
}
