// Package facade validates inbound chat and conversation requests, applies
// the per-request deadline, and translates orchestrator/conversation errors
// into the response-boundary error taxonomy.
package facade

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/nbaqa/hro/internal/conversation"
	"github.com/nbaqa/hro/internal/logger"
	"github.com/nbaqa/hro/internal/orchestrator"
	"github.com/nbaqa/hro/internal/types"
	"github.com/nbaqa/hro/internal/utils"
)

const (
	maxQueryLength  = utils.MaxQueryLength
	maxK            = 50
	defaultDeadline = 60 * time.Second
)

// Facade is the single entry point the HTTP layer calls into.
type Facade struct {
	orch            *orchestrator.Orchestrator
	convs           *conversation.Store
	requestDeadline time.Duration
}

// New builds a Facade. requestDeadline ≤ 0 falls back to defaultDeadline.
func New(orch *orchestrator.Orchestrator, convs *conversation.Store, requestDeadline time.Duration) *Facade {
	if requestDeadline <= 0 {
		requestDeadline = defaultDeadline
	}
	return &Facade{orch: orch, convs: convs, requestDeadline: requestDeadline}
}

// FacadeError is a structured error carrying the public ErrorKind surfaced
// at the response boundary.
type FacadeError struct {
	Kind    types.ErrorKind
	Message string
}

func (e *FacadeError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Message) }

func newFacadeError(kind types.ErrorKind, message string) *FacadeError {
	return &FacadeError{Kind: kind, Message: message}
}

// Chat validates req, applies the request deadline, and runs it through the
// orchestrator.
func (f *Facade) Chat(ctx context.Context, req types.ChatRequest) (*types.ChatResponse, error) {
	if err := f.validate(ctx, req); err != nil {
		return nil, err
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, f.requestDeadline)
	defer cancel()

	resp, err := f.orch.Handle(deadlineCtx, req)
	if err != nil {
		if deadlineCtx.Err() != nil {
			logger.Warnf(ctx, "request deadline exceeded for query=%q", utils.SanitizeForLog(req.Query))
			return nil, newFacadeError(types.ErrDeadlineExceeded, "request deadline exceeded")
		}
		logger.Warnf(ctx, "orchestrator error for query=%q: %v", utils.SanitizeForLog(req.Query), err)
		return nil, newFacadeError(types.ErrUpstreamUnavailable, err.Error())
	}
	return resp, nil
}

func (f *Facade) validate(ctx context.Context, req types.ChatRequest) error {
	if len(req.Query) == 0 {
		return newFacadeError(types.ErrInvalidInput, "query must not be empty")
	}
	if len([]rune(req.Query)) > maxQueryLength {
		return newFacadeError(types.ErrInvalidInput, fmt.Sprintf("query exceeds %d characters", maxQueryLength))
	}
	if _, ok := utils.ValidateInput(req.Query); !ok {
		logger.Warnf(ctx, "rejected query failing input validation: %q", utils.SanitizeForLog(req.Query))
		return newFacadeError(types.ErrInvalidInput, "query contains disallowed content")
	}
	if req.K < 0 || req.K > maxK {
		return newFacadeError(types.ErrInvalidInput, "k must be between 0 and 50")
	}
	if req.ConversationID != "" && f.convs != nil {
		conv, err := f.convs.Get(ctx, req.ConversationID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newFacadeError(types.ErrConversationNotFound, "conversation does not exist")
		}
		if err != nil {
			return newFacadeError(types.ErrInternal, err.Error())
		}
		if conv.Status == types.ConversationDeleted {
			return newFacadeError(types.ErrConversationNotFound, "conversation has been deleted")
		}
	}
	return nil
}
