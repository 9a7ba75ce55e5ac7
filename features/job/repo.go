package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"jobportal/internal/apperr"
)

const uniqueViolation = "23505"

type Repository interface {
	Save(ctx context.Context, job *JobPosting) error
	List(ctx context.Context) ([]JobPosting, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, job *JobPosting) error {
	fields := job.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	payload, err := json.Marshal(fields)
	if err != nil {
		return apperr.Storage("failed to encode job fields", err)
	}

	query := `INSERT INTO job_postings (title, company, description, slug, fields) VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query, job.Title, job.Company, job.Description, job.Slug, string(payload)).
		Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return apperr.Storage("a job posting with slug "+job.Slug+" already exists", err)
		}
		return apperr.Storage("failed to save job posting", err)
	}
	return nil
}

func (r *PostgresRepo) List(ctx context.Context) ([]JobPosting, error) {
	query := `SELECT id, title, company, description, slug, fields, created_at, updated_at FROM job_postings ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperr.Storage("failed to list job postings", err)
	}
	defer rows.Close()

	var jobs []JobPosting
	for rows.Next() {
		var j JobPosting
		var fields []byte
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Description, &j.Slug, &fields, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, apperr.Storage("failed to read job posting", err)
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &j.Fields); err != nil {
				return nil, apperr.Storage("failed to decode job fields", err)
			}
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Storage("failed to list job postings", err)
	}
	return jobs, nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM job_postings`
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, apperr.Storage("failed to count job postings", err)
	}
	return count, nil
}
