package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/persistence"
)

// UnreadMessageRow is a message projected for notification listings.
type UnreadMessageRow struct {
	ID        string
	Protocol  string
	Text      string
	CreatedAt time.Time
}

// MessageRepository manages complaint thread messages.
type MessageRepository interface {
	// Create appends the message; when statusChange is non-nil the owning
	// complaint's status is updated in the same transaction.
	Create(ctx context.Context, msg *domain.Message, statusChange *domain.ComplaintStatus) error
	ListByComplaint(ctx context.Context, complaintID string, includeInternal bool) ([]domain.Message, error)
	CountUnreadSince(ctx context.Context, userID string, since time.Time, admin bool) (int, error)
	ListUnreadSince(ctx context.Context, userID string, since time.Time, admin bool, limit int) ([]UnreadMessageRow, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds the repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message, statusChange *domain.ComplaintStatus) error {
	return persistence.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
            INSERT INTO messages (id, complaint_id, author_id, text, internal, created_at)
            VALUES ($1,$2,$3,$4,$5,$6)`,
			msg.ID,
			msg.ComplaintID,
			msg.AuthorID,
			msg.Text,
			msg.Internal,
			msg.CreatedAt,
		); err != nil {
			return err
		}

		if statusChange == nil {
			return nil
		}
		var completedAt *time.Time
		if statusChange.IsTerminal() {
			completedAt = &msg.CreatedAt
		}
		cmd, err := tx.Exec(ctx, `
            UPDATE complaints SET status=$1, updated_at=$2, completed_at=COALESCE($3, completed_at)
            WHERE id=$4`, *statusChange, msg.CreatedAt, completedAt, msg.ComplaintID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		return nil
	})
}

func (r *messageRepository) ListByComplaint(ctx context.Context, complaintID string, includeInternal bool) ([]domain.Message, error) {
	query := `
        SELECT m.id, m.complaint_id, m.author_id, u.name, u.admin, m.text, m.internal, m.created_at
        FROM messages m
        JOIN users u ON u.id = m.author_id
        WHERE m.complaint_id = $1`
	if !includeInternal {
		query += ` AND m.internal = FALSE`
	}
	query += ` ORDER BY m.created_at ASC`

	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		if err := rows.Scan(
			&msg.ID,
			&msg.ComplaintID,
			&msg.AuthorID,
			&msg.AuthorName,
			&msg.AuthorAdmin,
			&msg.Text,
			&msg.Internal,
			&msg.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) CountUnreadSince(ctx context.Context, userID string, since time.Time, admin bool) (int, error) {
	query := `
        SELECT COUNT(m.id)
        FROM messages m
        JOIN complaints c ON c.id = m.complaint_id
        WHERE m.created_at > $1 AND m.author_id <> $2`
	if !admin {
		query += ` AND c.user_id = $2 AND m.internal = FALSE`
	}
	var count int
	err := r.pool.QueryRow(ctx, query, since, userID).Scan(&count)
	return count, err
}

func (r *messageRepository) ListUnreadSince(ctx context.Context, userID string, since time.Time, admin bool, limit int) ([]UnreadMessageRow, error) {
	if limit <= 0 {
		limit = 5
	}
	query := `
        SELECT m.id, c.protocol, m.text, m.created_at
        FROM messages m
        JOIN complaints c ON c.id = m.complaint_id
        WHERE m.created_at > $1 AND m.author_id <> $2`
	if !admin {
		query += ` AND c.user_id = $2 AND m.internal = FALSE`
	}
	query += ` ORDER BY m.created_at DESC LIMIT $3`

	rows, err := r.pool.Query(ctx, query, since, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UnreadMessageRow
	for rows.Next() {
		var row UnreadMessageRow
		if err := rows.Scan(&row.ID, &row.Protocol, &row.Text, &row.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
