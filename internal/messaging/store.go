package messaging

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"

	MessageTypeText = "text"
)

// PgxPool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists conversation turns in Postgres. The whatsapp_messages table
// is append-only: rows are never updated or deleted.
type Store struct {
	pool PgxPool
}

func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("messaging: pgx pool required")
	}
	return &Store{pool: pool}
}

// MessageRecord is one stored conversation turn.
type MessageRecord struct {
	ID          uuid.UUID
	PhoneNumber string
	Body        string
	Sender      string
	MessageType string
	Processed   bool
	// AIResponse carries a serialized snapshot of the raw model response and
	// tool results for assistant turns. Nil for user turns.
	AIResponse []byte
	ReceivedAt time.Time
}

// Insert appends a conversation turn.
func (s *Store) Insert(ctx context.Context, rec MessageRecord) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.MessageType == "" {
		rec.MessageType = MessageTypeText
	}
	query := `
		INSERT INTO whatsapp_messages (id, phone_number, message_content, sender, message_type, processed, ai_response)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, query, rec.ID, rec.PhoneNumber, rec.Body, rec.Sender, rec.MessageType, rec.Processed, rec.AIResponse).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("messaging: insert message: %w", err)
	}
	return id, nil
}

// RecentHistory returns at most limit turns for the phone number in ascending
// received_at order. The query reads newest-first and the result is reversed,
// so the window always covers the most recent turns.
func (s *Store) RecentHistory(ctx context.Context, phoneNumber string, limit int) ([]MessageRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT sender, message_content, received_at
		FROM whatsapp_messages
		WHERE phone_number = $1
		ORDER BY received_at DESC
		LIMIT $2
	`
	rows, err := s.pool.Query(ctx, query, phoneNumber, limit)
	if err != nil {
		return nil, fmt.Errorf("messaging: load history: %w", err)
	}
	defer rows.Close()

	var newestFirst []MessageRecord
	for rows.Next() {
		rec := MessageRecord{PhoneNumber: phoneNumber}
		if err := rows.Scan(&rec.Sender, &rec.Body, &rec.ReceivedAt); err != nil {
			return nil, fmt.Errorf("messaging: scan history row: %w", err)
		}
		newestFirst = append(newestFirst, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("messaging: history rows: %w", err)
	}

	history := make([]MessageRecord, len(newestFirst))
	for i, rec := range newestFirst {
		history[len(newestFirst)-1-i] = rec
	}
	return history, nil
}
