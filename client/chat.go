package client

import (
	"context"
	"net/http"
)

// ChatRequest mirrors the orchestrator's inbound /chat payload.
type ChatRequest struct {
	Query          string `json:"query"`
	K              int    `json:"k,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	TurnNumber     int    `json:"turn_number,omitempty"`
	IncludeSources *bool  `json:"include_sources,omitempty"`
}

// SourceCitation is one cited source in a ChatResponse.
type SourceCitation struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// ChatResponse mirrors the orchestrator's outbound /chat payload.
type ChatResponse struct {
	Answer             string           `json:"answer"`
	Sources            []SourceCitation `json:"sources"`
	ProcessingTimeMs   int64            `json:"processing_time_ms"`
	Routing            string           `json:"routing"`
	ConversationID     string           `json:"conversation_id"`
	TurnNumber         int              `json:"turn_number"`
	PersistenceWarning string           `json:"persistence_warning,omitempty"`
}

type chatResponseEnvelope struct {
	Code int          `json:"code"`
	Msg  string       `json:"msg"`
	Data ChatResponse `json:"data"`
}

// AskQuestion sends a chat request and returns the assistant's response.
func (c *Client) AskQuestion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/chat", req, nil)
	if err != nil {
		return nil, err
	}
	var env chatResponseEnvelope
	if err := parseResponse(resp, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
