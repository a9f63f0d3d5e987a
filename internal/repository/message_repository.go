package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"skillbridge-api/internal/domain"
	"skillbridge-api/pkg/database"
)

type messageRepository struct {
	db *database.PostgresDB
}

// NewMessageRepository creates a community message repository backed by Postgres
func NewMessageRepository(db *database.PostgresDB) MessageRepository {
	return &messageRepository{db: db}
}

// EnsureChannel returns the channel with the given name, creating it on
// first use.
func (r *messageRepository) EnsureChannel(ctx context.Context, name string) (*domain.Channel, error) {
	var ch domain.Channel
	query := `
		SELECT id, name, created_at
		FROM channels
		WHERE name = $1
		ORDER BY created_at ASC
		LIMIT 1
	`

	err := r.db.Pool.QueryRow(ctx, query, name).Scan(&ch.ID, &ch.Name, &ch.CreatedAt)
	if err == nil {
		return &ch, nil
	}
	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}

	insert := `
		INSERT INTO channels (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at
	`

	err = r.db.Pool.QueryRow(ctx, insert, uuid.NewString(), name).Scan(&ch.ID, &ch.Name, &ch.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}

	return &ch, nil
}

func (r *messageRepository) ListByChannel(ctx context.Context, channelID string) ([]domain.Message, error) {
	query := `
		SELECT m.id, m.channel_id, m.user_id, m.content, m.created_at,
		       COALESCE(p.full_name, ''), p.avatar_url
		FROM messages m
		LEFT JOIN user_profiles p ON p.id = m.user_id
		WHERE m.channel_id = $1
		ORDER BY m.created_at ASC
	`

	rows, err := r.db.Pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		err := rows.Scan(
			&m.ID,
			&m.ChannelID,
			&m.UserID,
			&m.Content,
			&m.CreatedAt,
			&m.SenderName,
			&m.SenderAvatar,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}

	return messages, nil
}

func (r *messageRepository) Insert(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	query := `
		INSERT INTO messages (id, channel_id, user_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query, msg.ID, msg.ChannelID, msg.UserID, msg.Content).Scan(&msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return nil
}
