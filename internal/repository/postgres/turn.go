package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/chat-to-task/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TurnRepository implements domain.TurnRepository
type TurnRepository struct {
	pool *pgxpool.Pool
}

// NewTurnRepository creates a new turn repository
func NewTurnRepository(pool *pgxpool.Pool) *TurnRepository {
	return &TurnRepository{pool: pool}
}

// CommitTurn stores the user message, every tool invocation record, and the
// assistant reply in one transaction, then bumps the conversation's
// updated_at. A failure anywhere rolls back the whole turn.
func (r *TurnRepository) CommitTurn(ctx context.Context, turn *domain.Turn) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin turn transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertMessage := `
		INSERT INTO messages (id, conversation_id, user_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	um := turn.UserMessage
	if _, err := tx.Exec(ctx, insertMessage,
		um.ID, um.ConversationID, um.UserID, um.Role, um.Content, um.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to store user message: %w", err)
	}

	am := turn.AssistantMessage
	if _, err := tx.Exec(ctx, insertMessage,
		am.ID, am.ConversationID, am.UserID, am.Role, am.Content, am.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to store assistant message: %w", err)
	}

	for _, inv := range turn.Invocations {
		if _, err := tx.Exec(ctx, `
			INSERT INTO tool_invocations (id, conversation_id, user_id, message_id, seq, tool_name, params, result, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			inv.ID,
			inv.ConversationID,
			inv.UserID,
			inv.MessageID,
			inv.Seq,
			inv.ToolName,
			[]byte(inv.Params),
			[]byte(inv.Result),
			inv.CreatedAt,
		); err != nil {
			return fmt.Errorf("failed to store tool invocation %d: %w", inv.Seq, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE conversations SET updated_at = $2 WHERE id = $1`,
		turn.ConversationID, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit turn: %w", err)
	}
	return nil
}
