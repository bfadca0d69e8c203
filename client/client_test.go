package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskQuestionParsesSuccessEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "who led scoring", req.Query)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"msg":  "success",
			"data": ChatResponse{Answer: "Player X", Routing: "sql_only"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.AskQuestion(context.Background(), ChatRequest{Query: "who led scoring"})
	require.NoError(t, err)
	assert.Equal(t, "Player X", resp.Answer)
	assert.Equal(t, "sql_only", resp.Routing)
}

func TestAskQuestionSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "msg": "success", "data": ChatResponse{}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithAPIKey("secret-key"))
	_, err := c.AskQuestion(context.Background(), ChatRequest{Query: "test"})
	require.NoError(t, err)
}

func TestParseResponseReturnsErrorOnHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 400,
			"msg":  "invalid_input: query must not be empty",
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.AskQuestion(context.Background(), ChatRequest{Query: ""})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_input")
}

func TestCreateConversationRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/conversations", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 0,
			"msg":  "success",
			"data": Conversation{ID: "abc123", Title: "who led scoring"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	conv, err := c.CreateConversation(context.Background(), "who led scoring")
	require.NoError(t, err)
	assert.Equal(t, "abc123", conv.ID)
}

func TestRenameConversationIgnoresEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 0, "msg": "success"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.RenameConversation(context.Background(), "abc123", "new title")
	require.NoError(t, err)
}
