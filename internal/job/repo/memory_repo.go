package repo

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/entity"
)

// MemoryRepo keeps jobs in insertion order in process memory.
type MemoryRepo struct {
	mu   sync.RWMutex
	jobs []entity.Job
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Create(ctx context.Context, j *entity.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs = append(r.jobs, *j)
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id, owner int64) (*entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.index(id, owner)
	if i < 0 {
		return nil, ErrNotFound
	}
	j := r.jobs[i]
	return &j, nil
}

func (r *MemoryRepo) Update(ctx context.Context, id, owner int64, p entity.Patch) (*entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id, owner)
	if i < 0 {
		return nil, ErrNotFound
	}
	j := &r.jobs[i]
	j.Company, j.Position = p.Company, p.Position
	if p.Status != nil {
		j.Status = *p.Status
	}
	if p.JobType != nil {
		j.JobType = *p.JobType
	}
	j.UpdatedAt = time.Now().UTC()
	out := *j
	return &out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id, owner int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.index(id, owner)
	if i < 0 {
		return ErrNotFound
	}
	r.jobs = slices.Delete(r.jobs, i, i+1)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, q entity.Query) ([]entity.Job, error) {
	r.mu.RLock()
	matched := r.matching(q.Filter)
	r.mu.RUnlock()

	if cmpFn := comparator(q.Sort); cmpFn != nil {
		slices.SortStableFunc(matched, cmpFn)
	}
	if q.Skip < 0 || q.Skip >= len(matched) {
		return []entity.Job{}, nil
	}
	matched = matched[q.Skip:]
	if q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

func (r *MemoryRepo) Count(ctx context.Context, f entity.Filter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matching(f)), nil
}

func (r *MemoryRepo) CountByStatus(ctx context.Context, owner int64) ([]entity.StatusCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := map[entity.Status]int{}
	var order []entity.Status
	for _, j := range r.jobs {
		if j.CreatedBy != owner {
			continue
		}
		if _, seen := counts[j.Status]; !seen {
			order = append(order, j.Status)
		}
		counts[j.Status]++
	}
	out := make([]entity.StatusCount, 0, len(order))
	for _, s := range order {
		out = append(out, entity.StatusCount{Status: s, Count: counts[s]})
	}
	return out, nil
}

func (r *MemoryRepo) CountByMonth(ctx context.Context, owner int64, limit int) ([]entity.MonthCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	type ym struct{ year, month int }
	counts := map[ym]int{}
	for _, j := range r.jobs {
		if j.CreatedBy != owner {
			continue
		}
		counts[ym{j.CreatedAt.Year(), int(j.CreatedAt.Month())}]++
	}
	out := make([]entity.MonthCount, 0, len(counts))
	for k, n := range counts {
		out = append(out, entity.MonthCount{Year: k.year, Month: k.month, Count: n})
	}
	slices.SortFunc(out, func(a, b entity.MonthCount) int {
		if c := cmp.Compare(b.Year, a.Year); c != 0 {
			return c
		}
		return cmp.Compare(b.Month, a.Month)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) index(id, owner int64) int {
	return slices.IndexFunc(r.jobs, func(j entity.Job) bool {
		return j.ID == id && j.CreatedBy == owner
	})
}

func (r *MemoryRepo) matching(f entity.Filter) []entity.Job {
	search := strings.ToLower(f.Search)
	out := []entity.Job{}
	for _, j := range r.jobs {
		switch {
		case j.CreatedBy != f.CreatedBy:
		case search != "" && !strings.Contains(strings.ToLower(j.Position), search):
		case f.JobType != "" && j.JobType != f.JobType:
		case f.Status != "" && j.Status != f.Status:
		default:
			out = append(out, j)
		}
	}
	return out
}

func comparator(s entity.Sort) func(a, b entity.Job) int {
	switch s {
	case entity.SortLatest:
		return func(a, b entity.Job) int { return b.CreatedAt.Compare(a.CreatedAt) }
	case entity.SortOldest:
		return func(a, b entity.Job) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case entity.SortAZ:
		return func(a, b entity.Job) int { return strings.Compare(a.Position, b.Position) }
	case entity.SortZA:
		return func(a, b entity.Job) int { return strings.Compare(b.Position, a.Position) }
	default:
		return nil
	}
}
