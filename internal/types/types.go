// Package types holds the domain value types shared across the orchestrator.
package types

import "time"

// DataType tags the semantic category of a retrievable chunk.
type DataType string

const (
	DataTypePlayerStats DataType = "player_stats"
	DataTypeTeamStats   DataType = "team_stats"
	DataTypeGameData    DataType = "game_data"
	DataTypeDiscussion  DataType = "discussion"
	DataTypeGlossary    DataType = "glossary"
)

// DocumentChunk is an immutable unit of retrievable text with a precomputed
// embedding. Position is the chunk's stable index within a loaded VectorIndex.
type DocumentChunk struct {
	ID       string
	Text     string
	Source   string
	Page     string
	Vector   []float32
	Metadata map[string]string
	Position int
}

// DataTypeOf returns the chunk's data_type metadata tag, or "" if absent.
func (c *DocumentChunk) DataTypeOf() DataType {
	return DataType(c.Metadata["data_type"])
}

// Kind is the classifier's routing decision.
type Kind string

const (
	KindSQLOnly    Kind = "SQL_ONLY"
	KindContextual Kind = "CONTEXTUAL"
	KindHybrid     Kind = "HYBRID"
	KindUnknown    Kind = "UNKNOWN"
)

// QueryClassification is the classifier's output: created per request, never mutated.
type QueryClassification struct {
	Kind           Kind
	Confidence     float64
	StatMatches    int
	ContextMatches int
	HybridMatches  int
	Reason         string
}

// SQLErrorKind distinguishes the ways the SQL path can fail without raising
// a user-visible error on its own; the orchestrator inspects this tag instead
// of catching exceptions.
type SQLErrorKind string

const (
	SQLErrorNone       SQLErrorKind = ""
	SQLErrorSyntax     SQLErrorKind = "sql_syntax_invalid"
	SQLErrorForbidden  SQLErrorKind = "sql_forbidden_statement"
	SQLErrorExecution  SQLErrorKind = "sql_execution_error"
	SQLErrorEmptyValid SQLErrorKind = "sql_empty_result"
)

// SQLExecutionResult is created per request by the SQL Generator/Statistics Store pair.
type SQLExecutionResult struct {
	SQL       string
	Executed  bool
	Rows      []map[string]any
	Truncated bool
	Duration  time.Duration
	ErrorKind SQLErrorKind
	Formatted string
}

// RetrievalHit is a DocumentChunk reference with a similarity score in [0,100].
type RetrievalHit struct {
	Chunk *DocumentChunk
	Score float64
}

// ConversationStatus is the lifecycle state of a Conversation.
type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "active"
	ConversationArchived ConversationStatus = "archived"
	ConversationDeleted  ConversationStatus = "deleted"
)

// Conversation groups an ordered, contiguous sequence of Interactions.
type Conversation struct {
	ID        string             `gorm:"column:id;primaryKey"`
	Title     string             `gorm:"column:title"`
	Status    ConversationStatus `gorm:"column:status"`
	CreatedAt time.Time          `gorm:"column:created_at"`
	UpdatedAt time.Time          `gorm:"column:updated_at"`
}

func (Conversation) TableName() string { return "conversations" }

// Interaction (Turn) is created after a successful response; never mutated.
type Interaction struct {
	ID               string    `gorm:"column:id;primaryKey"`
	ConversationID   string    `gorm:"column:conversation_id;index:idx_conv_turn"`
	TurnNumber       int       `gorm:"column:turn_number;index:idx_conv_turn"`
	Query            string    `gorm:"column:query"`
	Response         string    `gorm:"column:response"`
	Sources          []string  `gorm:"column:sources;serializer:json"`
	ProcessingTimeMs int64     `gorm:"column:processing_time_ms"`
	CreatedAt        time.Time `gorm:"column:created_at"`
}

func (Interaction) TableName() string { return "interactions" }

// HistoryTurn is a single (query, response) pair surfaced to the prompt assembler.
type HistoryTurn struct {
	TurnNumber int
	Query      string
	Response   string
}

// ChatRequest is the inbound /chat payload.
type ChatRequest struct {
	Query          string `json:"query"`
	K              int    `json:"k,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	TurnNumber     int    `json:"turn_number,omitempty"`
	IncludeSources *bool  `json:"include_sources,omitempty"`
}

// SourceCitation is one entry of ChatResponse.Sources.
type SourceCitation struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// ChatResponse is the outbound /chat payload.
type ChatResponse struct {
	Answer             string           `json:"answer"`
	Sources            []SourceCitation `json:"sources"`
	ProcessingTimeMs   int64            `json:"processing_time_ms"`
	Routing            string           `json:"routing"`
	ConversationID     string           `json:"conversation_id"`
	TurnNumber         int              `json:"turn_number"`
	PersistenceWarning string           `json:"persistence_warning,omitempty"`
}

// ErrorKind enumerates the error taxonomy surfaced at the response boundary.
type ErrorKind string

const (
	ErrInvalidInput         ErrorKind = "invalid_input"
	ErrConversationNotFound ErrorKind = "conversation_not_found"
	ErrDeadlineExceeded     ErrorKind = "deadline_exceeded"
	ErrUpstreamUnavailable  ErrorKind = "upstream_unavailable"
	ErrInternal             ErrorKind = "internal_error"
)

// UnavailableAnswer is the literal sentinel returned when no grounded answer
// can be produced; this is a successful response, not an error.
const UnavailableAnswer = "The available context doesn't contain this information."
