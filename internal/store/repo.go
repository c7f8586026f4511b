package store

import (
	"context"
	"time"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/ingest"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// Document is an ingested source with its structure. Segments are stored
// separately.
type Document struct {
	ID         string
	Title      string
	SourcePath string
	PageCount  int
	Headings   ingest.HeadingIndex
	Sections   []ingest.Section
	CreatedAt  time.Time
}

// Session describes one practice run.
type Session struct {
	ID          string
	StartedAt   time.Time
	ModelName   string
	Temperature float64
	Seed        int
}

// Attempt is one graded answer.
type Attempt struct {
	ID           string
	Sequence     int64
	SessionID    string
	CardID       string
	CardType     string
	UserAnswer   string
	IsCorrect    bool
	Score        float64
	Method       string
	Feedback     string
	EvidenceUsed []string
	WeightAfter  float64
	AnsweredAt   time.Time
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEventRecord is a stored LLM request event.
type LLMEventRecord struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMPurposeUsage aggregates token usage for one purpose.
type LLMPurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// LLMModelUsage aggregates token usage for one model.
type LLMModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo provides append access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
