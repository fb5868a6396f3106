package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/entity"
)

// ErrNotFound is returned when no job matches both id and owner.
var ErrNotFound = errors.New("job not found")

const jobColumns = `id, company, position, status, job_type, created_by, created_at, updated_at`

// JobRepo provides data access for the jobs table using sqlx.
type JobRepo struct {
	db *sqlx.DB
}

func NewJobRepo(db *sqlx.DB) *JobRepo { return &JobRepo{db: db} }

// EnsureTable creates the jobs table and its owner index if missing.
func (r *JobRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS jobs (
  id BIGINT PRIMARY KEY,
  company VARCHAR(50) NOT NULL,
  position VARCHAR(100) NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('interview','declined','pending')),
  job_type TEXT NOT NULL DEFAULT 'full-time' CHECK (job_type IN ('full-time','part-time','internship','contract')),
  created_by BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_jobs_created_by ON jobs(created_by, created_at DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

func (r *JobRepo) Create(ctx context.Context, j *entity.Job) error {
	const q = `INSERT INTO jobs (` + jobColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(ctx, q, j.ID, j.Company, j.Position, j.Status, j.JobType, j.CreatedBy, j.CreatedAt, j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *JobRepo) Get(ctx context.Context, id, owner int64) (*entity.Job, error) {
	const q = `SELECT ` + jobColumns + ` FROM jobs WHERE id=$1 AND created_by=$2`
	var j entity.Job
	if err := r.db.GetContext(ctx, &j, q, id, owner); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// Update applies p and returns the new row in one statement, so there is
// no read-then-write window.
func (r *JobRepo) Update(ctx context.Context, id, owner int64, p entity.Patch) (*entity.Job, error) {
	const q = `UPDATE jobs SET company=$3, position=$4,
		status=COALESCE($5, status), job_type=COALESCE($6, job_type), updated_at=NOW()
		WHERE id=$1 AND created_by=$2 RETURNING ` + jobColumns
	var status, jobType any
	if p.Status != nil {
		status = string(*p.Status)
	}
	if p.JobType != nil {
		jobType = string(*p.JobType)
	}
	var j entity.Job
	if err := r.db.GetContext(ctx, &j, q, id, owner, p.Company, p.Position, status, jobType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update job: %w", err)
	}
	return &j, nil
}

func (r *JobRepo) Delete(ctx context.Context, id, owner int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id=$1 AND created_by=$2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *JobRepo) List(ctx context.Context, q entity.Query) ([]entity.Job, error) {
	where, args := whereClause(q.Filter)
	args = append(args, q.Limit, q.Skip)
	stmt := fmt.Sprintf(`SELECT %s FROM jobs WHERE %s%s LIMIT $%d OFFSET $%d`,
		jobColumns, where, orderBy(q.Sort), len(args)-1, len(args))
	jobs := []entity.Job{}
	if err := r.db.SelectContext(ctx, &jobs, stmt, args...); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepo) Count(ctx context.Context, f entity.Filter) (int, error) {
	where, args := whereClause(f)
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM jobs WHERE `+where, args...); err != nil {
		return 0, fmt.Errorf("count jobs: %w", err)
	}
	return n, nil
}

func (r *JobRepo) CountByStatus(ctx context.Context, owner int64) ([]entity.StatusCount, error) {
	const q = `SELECT status, COUNT(*) AS count FROM jobs WHERE created_by=$1 GROUP BY status`
	var out []entity.StatusCount
	if err := r.db.SelectContext(ctx, &out, q, owner); err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	return out, nil
}

func (r *JobRepo) CountByMonth(ctx context.Context, owner int64, limit int) ([]entity.MonthCount, error) {
	const q = `SELECT EXTRACT(YEAR FROM created_at)::int AS year, EXTRACT(MONTH FROM created_at)::int AS month, COUNT(*) AS count
		FROM jobs WHERE created_by=$1
		GROUP BY 1, 2 ORDER BY 1 DESC, 2 DESC LIMIT $2`
	var out []entity.MonthCount
	if err := r.db.SelectContext(ctx, &out, q, owner, limit); err != nil {
		return nil, fmt.Errorf("count by month: %w", err)
	}
	return out, nil
}

// whereClause renders f with positional parameters starting at $1.
// The owner predicate always comes first.
func whereClause(f entity.Filter) (string, []any) {
	conds := []string{"created_by = $1"}
	args := []any{f.CreatedBy}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Search != "" {
		add(`position ILIKE $%d ESCAPE '\'`, "%"+escapeLike(f.Search)+"%")
	}
	if f.JobType != "" {
		add("job_type = $%d", string(f.JobType))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	return strings.Join(conds, " AND "), args
}

// orderBy always ends on id so rows with equal sort keys keep a fixed
// order across pages.
func orderBy(s entity.Sort) string {
	switch s {
	case entity.SortLatest:
		return " ORDER BY created_at DESC, id"
	case entity.SortOldest:
		return " ORDER BY created_at ASC, id"
	case entity.SortAZ:
		return " ORDER BY position ASC, id"
	case entity.SortZA:
		return " ORDER BY position DESC, id"
	default:
		return " ORDER BY id"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
