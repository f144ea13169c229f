package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/participa-df/ouvidoria-service/internal/domain"
	"github.com/participa-df/ouvidoria-service/internal/persistence"
)

// NewComplaintRow summarizes a complaint for admin notification listings.
type NewComplaintRow struct {
	ID          string
	Protocol    string
	SubjectName string
	CreatedAt   time.Time
}

// ComplaintRepository encapsulates complaint persistence together with the
// protocol ledger rows that must commit atomically with each submission.
type ComplaintRepository interface {
	// CreateWithProtocol persists the complaint, its ledger entry and all
	// attachment rows in one transaction. The day's sequence number is
	// computed under an advisory lock and written into entry.DailySequence.
	CreateWithProtocol(ctx context.Context, complaint *domain.Complaint, entry *domain.ProtocolEntry) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	GetByProtocol(ctx context.Context, protocol string) (*domain.Complaint, error)
	List(ctx context.Context, skip, limit int, ownerID *string) ([]domain.Complaint, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, at time.Time) error
	CountCreatedAfter(ctx context.Context, after time.Time) (int, error)
	ListCreatedAfter(ctx context.Context, after time.Time, limit int) ([]NewComplaintRow, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates the repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, protocol, narrative, classification, supplementary, anonymous, status,
               subject_id, user_id, created_at, updated_at, completed_at`

func (r *complaintRepository) CreateWithProtocol(ctx context.Context, complaint *domain.Complaint, entry *domain.ProtocolEntry) error {
	return persistence.WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		// The ledger day is the UTC calendar day. Both the lock key and
		// the MAX scan derive from the same bounds so the grouping never
		// depends on the Postgres session timezone.
		utc := entry.IssuedAt.UTC()
		dayStart := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
		dayEnd := dayStart.Add(24 * time.Hour)

		// Serializes sequence issuance for the day so two concurrent
		// submissions never read the same MAX.
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('protocol_seq:' || $1::text))`, dayStart.Format("20060102")); err != nil {
			return err
		}

		if err := tx.QueryRow(ctx, `
            SELECT COALESCE(MAX(daily_sequence), 0) + 1
            FROM protocol_entries
            WHERE issued_at >= $1 AND issued_at < $2`, dayStart, dayEnd,
		).Scan(&entry.DailySequence); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO complaints (id, protocol, narrative, classification, supplementary, anonymous, status, subject_id, user_id, created_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			complaint.ID,
			complaint.Protocol,
			complaint.Narrative,
			complaint.Classification,
			complaint.Supplementary,
			complaint.Anonymous,
			complaint.Status,
			complaint.SubjectID,
			complaint.UserID,
			complaint.CreatedAt,
		); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
            INSERT INTO protocol_entries (number, complaint_id, daily_sequence, issued_at, expires_at)
            VALUES ($1,$2,$3,$4,$5)`,
			entry.Number,
			entry.ComplaintID,
			entry.DailySequence,
			entry.IssuedAt,
			entry.ExpiresAt,
		); err != nil {
			return err
		}

		for i := range complaint.Attachments {
			att := &complaint.Attachments[i]
			if _, err := tx.Exec(ctx, `
                INSERT INTO attachments (id, complaint_id, file_url, content_type, size_bytes, uploaded_at)
                VALUES ($1,$2,$3,$4,$5,$6)`,
				att.ID,
				att.ComplaintID,
				att.FileURL,
				att.ContentType,
				att.SizeBytes,
				att.UploadedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	return r.fetchSingle(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE id=$1`, id)
}

func (r *complaintRepository) GetByProtocol(ctx context.Context, protocol string) (*domain.Complaint, error) {
	complaint, err := r.fetchSingle(ctx, `SELECT `+complaintColumns+` FROM complaints WHERE protocol=$1`, protocol)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	subject := &domain.Subject{}
	if err := r.pool.QueryRow(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id=$1`, complaint.SubjectID).Scan(
		&subject.ID,
		&subject.Name,
		&subject.Description,
		&subject.Fields,
		&subject.Active,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	); err == nil {
		complaint.Subject = subject
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	attachments, err := r.listAttachments(ctx, complaint.ID)
	if err != nil {
		return nil, err
	}
	complaint.Attachments = attachments
	return complaint, nil
}

func (r *complaintRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Complaint, error) {
	var complaint domain.Complaint
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&complaint.ID,
		&complaint.Protocol,
		&complaint.Narrative,
		&complaint.Classification,
		&complaint.Supplementary,
		&complaint.Anonymous,
		&complaint.Status,
		&complaint.SubjectID,
		&complaint.UserID,
		&complaint.CreatedAt,
		&complaint.UpdatedAt,
		&complaint.CompletedAt,
	); err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *complaintRepository) listAttachments(ctx context.Context, complaintID string) ([]domain.Attachment, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, complaint_id, file_url, content_type, size_bytes, uploaded_at
        FROM attachments WHERE complaint_id=$1 ORDER BY uploaded_at ASC`, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var att domain.Attachment
		if err := rows.Scan(
			&att.ID,
			&att.ComplaintID,
			&att.FileURL,
			&att.ContentType,
			&att.SizeBytes,
			&att.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, att)
	}
	return result, rows.Err()
}

func (r *complaintRepository) List(ctx context.Context, skip, limit int, ownerID *string) ([]domain.Complaint, int, error) {
	if limit <= 0 {
		limit = 10
	}
	if skip < 0 {
		skip = 0
	}

	countQuery := `SELECT COUNT(id) FROM complaints`
	listQuery := `SELECT ` + complaintColumns + ` FROM complaints`
	args := []any{}
	if ownerID != nil {
		args = append(args, *ownerID)
		countQuery += ` WHERE user_id=$1`
		listQuery += ` WHERE user_id=$1`
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, skip)
	listQuery += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []domain.Complaint
	for rows.Next() {
		var complaint domain.Complaint
		if err := rows.Scan(
			&complaint.ID,
			&complaint.Protocol,
			&complaint.Narrative,
			&complaint.Classification,
			&complaint.Supplementary,
			&complaint.Anonymous,
			&complaint.Status,
			&complaint.SubjectID,
			&complaint.UserID,
			&complaint.CreatedAt,
			&complaint.UpdatedAt,
			&complaint.CompletedAt,
		); err != nil {
			return nil, 0, err
		}
		result = append(result, complaint)
	}
	return result, total, rows.Err()
}

func (r *complaintRepository) UpdateStatus(ctx context.Context, id string, status domain.ComplaintStatus, at time.Time) error {
	var completedAt *time.Time
	if status.IsTerminal() {
		completedAt = &at
	}
	cmd, err := r.pool.Exec(ctx, `
        UPDATE complaints SET status=$1, updated_at=$2, completed_at=COALESCE($3, completed_at)
        WHERE id=$4`, status, at, completedAt, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *complaintRepository) CountCreatedAfter(ctx context.Context, after time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(id) FROM complaints WHERE created_at > $1`, after).Scan(&count)
	return count, err
}

func (r *complaintRepository) ListCreatedAfter(ctx context.Context, after time.Time, limit int) ([]NewComplaintRow, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
        SELECT c.id, c.protocol, s.name, c.created_at
        FROM complaints c
        JOIN subjects s ON s.id = c.subject_id
        WHERE c.created_at > $1
        ORDER BY c.created_at DESC
        LIMIT $2`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []NewComplaintRow
	for rows.Next() {
		var row NewComplaintRow
		if err := rows.Scan(&row.ID, &row.Protocol, &row.SubjectName, &row.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
