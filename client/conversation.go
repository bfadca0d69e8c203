package client

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Conversation mirrors the orchestrator's persisted conversation summary.
type Conversation struct {
	ID        string    `json:"ID"`
	Title     string    `json:"Title"`
	Status    string    `json:"Status"`
	CreatedAt time.Time `json:"CreatedAt"`
	UpdatedAt time.Time `json:"UpdatedAt"`
}

// HistoryTurn is a single (query, response) pair in a conversation.
type HistoryTurn struct {
	TurnNumber int    `json:"TurnNumber"`
	Query      string `json:"Query"`
	Response   string `json:"Response"`
}

type conversationEnvelope struct {
	Code int          `json:"code"`
	Msg  string       `json:"msg"`
	Data Conversation `json:"data"`
}

type conversationListEnvelope struct {
	Code int            `json:"code"`
	Msg  string         `json:"msg"`
	Data []Conversation `json:"data"`
}

type historyEnvelope struct {
	Code int           `json:"code"`
	Msg  string        `json:"msg"`
	Data []HistoryTurn `json:"data"`
}

// CreateConversation starts a new conversation, optionally titled.
func (c *Client) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/conversations", map[string]string{"title": title}, nil)
	if err != nil {
		return nil, err
	}
	var env conversationEnvelope
	if err := parseResponse(resp, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// ListConversations returns every non-deleted conversation.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/conversations", nil, nil)
	if err != nil {
		return nil, err
	}
	var env conversationListEnvelope
	if err := parseResponse(resp, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// GetConversation fetches conversation metadata by ID.
func (c *Client) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/conversations/%s", id), nil, nil)
	if err != nil {
		return nil, err
	}
	var env conversationEnvelope
	if err := parseResponse(resp, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// GetConversationMessages fetches a conversation's turn history.
func (c *Client) GetConversationMessages(ctx context.Context, id string) ([]HistoryTurn, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/conversations/%s/messages", id), nil, nil)
	if err != nil {
		return nil, err
	}
	var env historyEnvelope
	if err := parseResponse(resp, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// RenameConversation updates a conversation's title.
func (c *Client) RenameConversation(ctx context.Context, id, title string) error {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/conversations/%s", id), map[string]string{"title": title}, nil)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// ArchiveConversation marks a conversation archived.
func (c *Client) ArchiveConversation(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/conversations/%s", id), map[string]string{"status": "archived"}, nil)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}

// DeleteConversation soft-deletes a conversation.
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/conversations/%s", id), nil, nil)
	if err != nil {
		return err
	}
	return parseResponse(resp, nil)
}
