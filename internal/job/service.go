package job

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/entity"
	jobrepo "github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/repo"
	"github.com/ovaphlow/pitchfork/service-jobs-go/pkg/utilities"
)

// Store persists jobs. Every lookup and write is keyed by (id, owner);
// a job owned by someone else is reported as jobrepo.ErrNotFound.
type Store interface {
	Create(ctx context.Context, j *entity.Job) error
	Get(ctx context.Context, id, owner int64) (*entity.Job, error)
	Update(ctx context.Context, id, owner int64, p entity.Patch) (*entity.Job, error)
	Delete(ctx context.Context, id, owner int64) error
	List(ctx context.Context, q entity.Query) ([]entity.Job, error)
	Count(ctx context.Context, f entity.Filter) (int, error)
	CountByStatus(ctx context.Context, owner int64) ([]entity.StatusCount, error)
	// CountByMonth returns at most limit groups, newest first.
	CountByMonth(ctx context.Context, owner int64, limit int) ([]entity.MonthCount, error)
}

// IDSource allocates new job ids.
type IDSource interface {
	Next() int64
}

// Service implements job CRUD, listing and statistics for one requester at a time.
type Service struct {
	store Store
	ids   IDSource
	now   func() time.Time
}

func NewService(store Store, ids IDSource) *Service {
	return &Service{store: store, ids: ids, now: time.Now}
}

const (
	maxCompanyLen  = 50
	maxPositionLen = 100
)

var ErrCompanyPositionRequired = apperror.BadRequest("Company and Position cannot be empty")

// CreateInput is the payload for a new job. Status and JobType default
// to pending and full-time.
type CreateInput struct {
	Company  string `json:"company"`
	Position string `json:"position"`
	Status   string `json:"status"`
	JobType  string `json:"jobType"`
	// CreatedAt is honoured by the seeding tool only; the HTTP handler clears it.
	CreatedAt time.Time `json:"createdAt"`
}

// UpdateInput is the payload for an update. Company and Position are required.
type UpdateInput struct {
	Company  string  `json:"company"`
	Position string  `json:"position"`
	Status   *string `json:"status"`
	JobType  *string `json:"jobType"`
}

// ListResult is one page of jobs plus totals for the whole filter.
type ListResult struct {
	Jobs       []entity.Job `json:"jobs"`
	TotalJobs  int          `json:"totalJobs"`
	NumOfPages int          `json:"numOfPages"`
}

// List returns the requested page of the requester's jobs.
func (s *Service) List(ctx context.Context, id auth.Identity, p ListParams) (*ListResult, error) {
	q := BuildQuery(id, p)
	jobs, err := s.store.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	total, err := s.store.Count(ctx, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	if jobs == nil {
		jobs = []entity.Job{}
	}
	return &ListResult{Jobs: jobs, TotalJobs: total, NumOfPages: NumOfPages(total, q.Limit)}, nil
}

// Get returns one of the requester's jobs.
func (s *Service) Get(ctx context.Context, id auth.Identity, rawID string) (*entity.Job, error) {
	jobID, err := parseJobID(rawID)
	if err != nil {
		return nil, err
	}
	j, err := s.store.Get(ctx, jobID, id.UserID)
	if err != nil {
		return nil, notFound(err, rawID)
	}
	return j, nil
}

// Create stores a new job owned by the requester.
func (s *Service) Create(ctx context.Context, id auth.Identity, in CreateInput) (*entity.Job, error) {
	j := &entity.Job{
		Company:   strings.TrimSpace(in.Company),
		Position:  strings.TrimSpace(in.Position),
		Status:    entity.Status(in.Status),
		JobType:   entity.Type(in.JobType),
		CreatedBy: id.UserID,
		CreatedAt: in.CreatedAt,
	}
	if j.Status == "" {
		j.Status = entity.StatusPending
	}
	if j.JobType == "" {
		j.JobType = entity.TypeFullTime
	}
	verr := &apperror.ValidationError{}
	switch {
	case j.Company == "":
		verr.Add("Please provide company")
	case utf8.RuneCountInString(j.Company) > maxCompanyLen:
		verr.Add(fmt.Sprintf("Company must be at most %d characters", maxCompanyLen))
	}
	switch {
	case j.Position == "":
		verr.Add("Please provide position")
	case utf8.RuneCountInString(j.Position) > maxPositionLen:
		verr.Add(fmt.Sprintf("Position must be at most %d characters", maxPositionLen))
	}
	validateEnums(verr, &j.Status, &j.JobType)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	j.ID = s.ids.Next()
	if err := s.store.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return j, nil
}

// Update changes one of the requester's jobs in a single atomic store call.
func (s *Service) Update(ctx context.Context, id auth.Identity, rawID string, in UpdateInput) (*entity.Job, error) {
	p := entity.Patch{
		Company:  strings.TrimSpace(in.Company),
		Position: strings.TrimSpace(in.Position),
	}
	if p.Company == "" || p.Position == "" {
		return nil, ErrCompanyPositionRequired
	}
	jobID, err := parseJobID(rawID)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		st := entity.Status(*in.Status)
		p.Status = &st
	}
	if in.JobType != nil {
		jt := entity.Type(*in.JobType)
		p.JobType = &jt
	}
	verr := &apperror.ValidationError{}
	if utf8.RuneCountInString(p.Company) > maxCompanyLen {
		verr.Add(fmt.Sprintf("Company must be at most %d characters", maxCompanyLen))
	}
	if utf8.RuneCountInString(p.Position) > maxPositionLen {
		verr.Add(fmt.Sprintf("Position must be at most %d characters", maxPositionLen))
	}
	validateEnums(verr, p.Status, p.JobType)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	j, err := s.store.Update(ctx, jobID, id.UserID, p)
	if err != nil {
		return nil, notFound(err, rawID)
	}
	return j, nil
}

// Delete removes one of the requester's jobs.
func (s *Service) Delete(ctx context.Context, id auth.Identity, rawID string) error {
	jobID, err := parseJobID(rawID)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, jobID, id.UserID); err != nil {
		return notFound(err, rawID)
	}
	return nil
}

// Stats aggregates the requester's jobs by status and by month.
func (s *Service) Stats(ctx context.Context, id auth.Identity) (*Stats, error) {
	byStatus, err := s.store.CountByStatus(ctx, id.UserID)
	if err != nil {
		return nil, fmt.Errorf("count jobs by status: %w", err)
	}
	byMonth, err := s.store.CountByMonth(ctx, id.UserID, monthsShown)
	if err != nil {
		return nil, fmt.Errorf("count jobs by month: %w", err)
	}
	return &Stats{
		DefaultStats:        statusTotals(byStatus),
		MonthlyApplications: monthlySeries(byMonth),
	}, nil
}

func parseJobID(raw string) (int64, error) {
	id, err := utilities.ParseID(raw)
	if err != nil {
		return 0, &apperror.MalformedIDError{Value: raw}
	}
	return id, nil
}

// notFound maps a store miss to the response shared by "absent" and "not yours".
func notFound(err error, rawID string) error {
	if errors.Is(err, jobrepo.ErrNotFound) {
		return apperror.NotFound(fmt.Sprintf("No job found with Job ID %s", rawID))
	}
	return err
}

func validateEnums(verr *apperror.ValidationError, st *entity.Status, jt *entity.Type) {
	if st != nil && !st.Valid() {
		verr.Add(fmt.Sprintf("%s is not a valid status", *st))
	}
	if jt != nil && !jt.Valid() {
		verr.Add(fmt.Sprintf("%s is not a valid job type", *jt))
	}
}
