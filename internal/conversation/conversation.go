// Package conversation persists Conversations and their Interactions
// (turns), assigning contiguous turn numbers transactionally and retrieving
// bounded, chronologically-ordered history windows for the prompt assembler.
package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nbaqa/hro/internal/common"
	"github.com/nbaqa/hro/internal/types"
)

const titleMaxLen = 47

// Store is a gorm-backed conversation repository. All writes to persistent
// conversation state go through it; the vector index and statistics store
// are shared read-only, but conversation state mutates per request.
type Store struct {
	db *gorm.DB
}

// New builds a Store over db, which must already have the conversations and
// interactions tables migrated.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// StartConversation creates a conversation, titled from the first query
// (truncated), and returns its ID. AppendInteraction also creates a
// conversation when the ID it is given does not exist yet.
func (s *Store) StartConversation(ctx context.Context, firstQuery string) (*types.Conversation, error) {
	conv := &types.Conversation{
		ID:        uuid.NewString(),
		Title:     truncateTitle(firstQuery),
		Status:    types.ConversationActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(conv).Error; err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// AppendInteraction assigns the next contiguous turn number for
// conversationID (creating the conversation first if it does not exist) and
// persists the interaction inside a single transaction, so turn numbering
// never races under concurrent requests for the same conversation.
func (s *Store) AppendInteraction(ctx context.Context, conversationID, query, response string, sources []string, processingTime time.Duration) (*types.Interaction, error) {
	var interaction types.Interaction

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv types.Conversation
		err := tx.Set("gorm:query_option", "FOR UPDATE").Where("id = ?", conversationID).First(&conv).Error
		if err == gorm.ErrRecordNotFound {
			conv = types.Conversation{
				ID:        conversationID,
				Title:     truncateTitle(query),
				Status:    types.ConversationActive,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}
			if err := tx.Create(&conv).Error; err != nil {
				return fmt.Errorf("lazily create conversation: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("lock conversation: %w", err)
		}

		var maxTurn int
		if err := tx.Model(&types.Interaction{}).
			Where("conversation_id = ?", conversationID).
			Select("COALESCE(MAX(turn_number), 0)").Scan(&maxTurn).Error; err != nil {
			return fmt.Errorf("determine next turn number: %w", err)
		}

		interaction = types.Interaction{
			ID:               uuid.NewString(),
			ConversationID:   conversationID,
			TurnNumber:       maxTurn + 1,
			Query:            query,
			Response:         response,
			Sources:          sources,
			ProcessingTimeMs: processingTime.Milliseconds(),
			CreatedAt:        time.Now(),
		}
		if err := tx.Create(&interaction).Error; err != nil {
			return fmt.Errorf("create interaction: %w", err)
		}

		return tx.Model(&types.Conversation{}).Where("id = ?", conversationID).
			Update("updated_at", time.Now()).Error
	})
	if err != nil {
		return nil, err
	}
	return &interaction, nil
}

// GetHistory returns the most recent maxTurns turns for conversationID in
// chronological order: fetched most-recent-first, trimmed to maxTurns, then
// reversed back to chronological.
func (s *Store) GetHistory(ctx context.Context, conversationID string, maxTurns int) ([]types.HistoryTurn, error) {
	var interactions []types.Interaction
	query := s.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("turn_number DESC")
	if maxTurns > 0 {
		query = query.Limit(maxTurns)
	}
	if err := query.Find(&interactions).Error; err != nil {
		common.PipelineWarn(ctx, "GetHistory", "fetch", map[string]any{
			"conversation_id": conversationID,
			"error":           err.Error(),
		})
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	turns := make([]types.HistoryTurn, len(interactions))
	for i, it := range interactions {
		turns[len(interactions)-1-i] = types.HistoryTurn{
			TurnNumber: it.TurnNumber,
			Query:      it.Query,
			Response:   it.Response,
		}
	}
	return turns, nil
}

// Get returns the conversation by ID, or an error the facade maps to
// conversation_not_found.
func (s *Store) Get(ctx context.Context, conversationID string) (*types.Conversation, error) {
	var conv types.Conversation
	if err := s.db.WithContext(ctx).Where("id = ?", conversationID).First(&conv).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// List returns conversations ordered by most recently updated, excluding
// soft-deleted ones.
func (s *Store) List(ctx context.Context) ([]types.Conversation, error) {
	var convs []types.Conversation
	if err := s.db.WithContext(ctx).
		Where("status <> ?", types.ConversationDeleted).
		Order("updated_at DESC").
		Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// Archive marks a conversation archived.
func (s *Store) Archive(ctx context.Context, conversationID string) error {
	return s.setStatus(ctx, conversationID, types.ConversationArchived)
}

// SoftDelete marks a conversation deleted without removing its rows.
func (s *Store) SoftDelete(ctx context.Context, conversationID string) error {
	return s.setStatus(ctx, conversationID, types.ConversationDeleted)
}

func (s *Store) setStatus(ctx context.Context, conversationID string, status types.ConversationStatus) error {
	res := s.db.WithContext(ctx).Model(&types.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("update conversation status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Rename sets a conversation's title explicitly, overriding the
// auto-derived first-query title.
func (s *Store) Rename(ctx context.Context, conversationID, title string) error {
	res := s.db.WithContext(ctx).Model(&types.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]any{"title": truncateTitle(title), "updated_at": time.Now()})
	if res.Error != nil {
		return fmt.Errorf("rename conversation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// truncateTitle keeps the first titleMaxLen characters of s, appending "..."
// when truncated.
func truncateTitle(s string) string {
	runes := []rune(s)
	if len(runes) <= titleMaxLen {
		return s
	}
	return string(runes[:titleMaxLen]) + "..."
}
