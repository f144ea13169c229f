package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/participa-df/ouvidoria-service/internal/domain"
)

// TrackingRow is the public-safe projection served by protocol tracking.
type TrackingRow struct {
	Number        string
	Status        domain.ComplaintStatus
	DailySequence int
	IssuedAt      time.Time
	ExpiresAt     time.Time
	UpdatedAt     *time.Time
	CompletedAt   *time.Time
}

// ProtocolRepository reads the append-only protocol ledger.
type ProtocolRepository interface {
	GetByNumber(ctx context.Context, number string) (*domain.ProtocolEntry, error)
	Track(ctx context.Context, number string) (*TrackingRow, error)
}

type protocolRepository struct {
	pool *pgxpool.Pool
}

// NewProtocolRepository builds the repository.
func NewProtocolRepository(pool *pgxpool.Pool) ProtocolRepository {
	return &protocolRepository{pool: pool}
}

func (r *protocolRepository) GetByNumber(ctx context.Context, number string) (*domain.ProtocolEntry, error) {
	const query = `
        SELECT number, complaint_id, daily_sequence, issued_at, expires_at
        FROM protocol_entries WHERE number=$1`
	var entry domain.ProtocolEntry
	if err := r.pool.QueryRow(ctx, query, number).Scan(
		&entry.Number,
		&entry.ComplaintID,
		&entry.DailySequence,
		&entry.IssuedAt,
		&entry.ExpiresAt,
	); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *protocolRepository) Track(ctx context.Context, number string) (*TrackingRow, error) {
	const query = `
        SELECT p.number, c.status, p.daily_sequence, p.issued_at, p.expires_at, c.updated_at, c.completed_at
        FROM protocol_entries p
        JOIN complaints c ON c.id = p.complaint_id
        WHERE p.number=$1`
	var row TrackingRow
	if err := r.pool.QueryRow(ctx, query, number).Scan(
		&row.Number,
		&row.Status,
		&row.DailySequence,
		&row.IssuedAt,
		&row.ExpiresAt,
		&row.UpdatedAt,
		&row.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &row, nil
}
