package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/participa-df/ouvidoria-service/internal/domain"
)

// SubjectRepository manages complaint category persistence.
type SubjectRepository interface {
	Create(ctx context.Context, subject *domain.Subject) error
	Update(ctx context.Context, subject *domain.Subject) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Subject, error)
	GetByName(ctx context.Context, name string) (*domain.Subject, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Subject, error)
	CountComplaints(ctx context.Context, id string) (int, error)
}

type subjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository instantiates the repository.
func NewSubjectRepository(pool *pgxpool.Pool) SubjectRepository {
	return &subjectRepository{pool: pool}
}

const subjectColumns = `id, name, description, fields, active, created_at, updated_at`

func (r *subjectRepository) Create(ctx context.Context, subject *domain.Subject) error {
	const query = `
        INSERT INTO subjects (id, name, description, fields, active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		subject.ID,
		subject.Name,
		subject.Description,
		subject.Fields,
		subject.Active,
	).Scan(&subject.CreatedAt, &subject.UpdatedAt)
}

func (r *subjectRepository) Update(ctx context.Context, subject *domain.Subject) error {
	const query = `
        UPDATE subjects SET name=$1, description=$2, fields=$3, active=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		subject.Name,
		subject.Description,
		subject.Fields,
		subject.Active,
		subject.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subjectRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM subjects WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *subjectRepository) GetByID(ctx context.Context, id string) (*domain.Subject, error) {
	return r.fetchSingle(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE id=$1`, id)
}

func (r *subjectRepository) GetByName(ctx context.Context, name string) (*domain.Subject, error) {
	return r.fetchSingle(ctx, `SELECT `+subjectColumns+` FROM subjects WHERE name=$1`, name)
}

func (r *subjectRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Subject, error) {
	var subject domain.Subject
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&subject.ID,
		&subject.Name,
		&subject.Description,
		&subject.Fields,
		&subject.Active,
		&subject.CreatedAt,
		&subject.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepository) List(ctx context.Context, activeOnly bool) ([]domain.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Subject
	for rows.Next() {
		var subject domain.Subject
		if err := rows.Scan(
			&subject.ID,
			&subject.Name,
			&subject.Description,
			&subject.Fields,
			&subject.Active,
			&subject.CreatedAt,
			&subject.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, subject)
	}
	return result, rows.Err()
}

func (r *subjectRepository) CountComplaints(ctx context.Context, id string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(id) FROM complaints WHERE subject_id=$1`, id).Scan(&count)
	return count, err
}
