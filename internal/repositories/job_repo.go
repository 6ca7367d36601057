package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/onlineworkerske/backend/internal/models"
)

type JobRepo struct {
	pool *pgxpool.Pool
}

func NewJobRepo(pool *pgxpool.Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO jobs (employer_id, title, description, skills_required, budget_kes, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, j.EmployerID, j.Title, j.Description, j.SkillsRequired, j.BudgetKES, j.Status,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
}

func (r *JobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := r.pool.QueryRow(ctx, `
		SELECT id, employer_id, title, description, skills_required, budget_kes, status,
		       assigned_worker_id, verified_listing, created_at, updated_at
		FROM jobs WHERE id = $1
	`, id).Scan(&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.SkillsRequired, &j.BudgetKES,
		&j.Status, &j.AssignedWorkerID, &j.VerifiedListing, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// UpdateStatusTx moves a job's status inside a caller-owned transaction so it
// can commit together with the escrow mutation that justifies it.
func (r *JobRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	_, err := tx.Exec(ctx, `UPDATE jobs SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *JobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE jobs SET status = $1, updated_at = now() WHERE id = $2`, status, id)
	return err
}

func (r *JobRepo) Assign(ctx context.Context, jobID, workerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE jobs SET status = $1, assigned_worker_id = $2, updated_at = now()
		WHERE id = $3 AND status = $4
	`, models.JobStatusAssigned, workerID, jobID, models.JobStatusOpen)
	return err
}

func (r *JobRepo) SetVerifiedListing(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE jobs SET verified_listing = true, updated_at = now() WHERE id = $1`, id)
	return err
}

type JobFilter struct {
	EmployerID *uuid.UUID
	WorkerID   *uuid.UUID
	Status     *string
	Skill      *string
	Limit      int
	Offset     int
}

func (r *JobRepo) List(ctx context.Context, f JobFilter) ([]models.Job, error) {
	query := `
		SELECT id, employer_id, title, description, skills_required, budget_kes, status,
		       assigned_worker_id, verified_listing, created_at, updated_at
		FROM jobs
	`
	args := []any{}
	argIdx := 1
	where := []string{}

	if f.EmployerID != nil {
		where = append(where, fmt.Sprintf("employer_id = $%d", argIdx))
		args = append(args, *f.EmployerID)
		argIdx++
	}
	if f.WorkerID != nil {
		where = append(where, fmt.Sprintf("assigned_worker_id = $%d", argIdx))
		args = append(args, *f.WorkerID)
		argIdx++
	}
	if f.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, *f.Status)
		argIdx++
	}
	if f.Skill != nil {
		where = append(where, fmt.Sprintf("$%d = ANY(skills_required)", argIdx))
		args = append(args, *f.Skill)
		argIdx++
	}

	if len(where) > 0 {
		query += " WHERE "
		for i, w := range where {
			if i > 0 {
				query += " AND "
			}
			query += w
		}
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.EmployerID, &j.Title, &j.Description, &j.SkillsRequired,
			&j.BudgetKES, &j.Status, &j.AssignedWorkerID, &j.VerifiedListing, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// ---- Applications ----

func (r *JobRepo) CreateApplication(ctx context.Context, a *models.JobApplication) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO job_applications (job_id, worker_id, cover_letter, bid_kes, status)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id, worker_id) DO UPDATE SET
			cover_letter = EXCLUDED.cover_letter,
			bid_kes = EXCLUDED.bid_kes
		RETURNING id, created_at
	`, a.JobID, a.WorkerID, a.CoverLetter, a.BidKES, a.Status).Scan(&a.ID, &a.CreatedAt)
}

func (r *JobRepo) GetApplications(ctx context.Context, jobID uuid.UUID) ([]models.JobApplication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, job_id, worker_id, cover_letter, bid_kes, status, created_at
		FROM job_applications WHERE job_id = $1 ORDER BY created_at DESC
	`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []models.JobApplication
	for rows.Next() {
		var a models.JobApplication
		if err := rows.Scan(&a.ID, &a.JobID, &a.WorkerID, &a.CoverLetter, &a.BidKES, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, nil
}

func (r *JobRepo) UpdateApplicationStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `UPDATE job_applications SET status = $1 WHERE id = $2`, status, id)
	return err
}
