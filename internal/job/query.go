package job

import (
	"math"
	"net/url"
	"strconv"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/job/entity"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 1000
	// filterAll disables a jobType or status filter.
	filterAll = "all"
)

// ListParams are the raw listing parameters as received from the client.
type ListParams struct {
	Search  string
	JobType string
	Status  string
	Sort    string
	Page    string
	Limit   string
}

// ListParamsFrom reads listing parameters from a query string.
func ListParamsFrom(v url.Values) ListParams {
	return ListParams{
		Search:  v.Get("search"),
		JobType: v.Get("jobType"),
		Status:  v.Get("status"),
		Sort:    v.Get("sort"),
		Page:    v.Get("page"),
		Limit:   v.Get("limit"),
	}
}

// BuildQuery turns p into a store query scoped to the requester. The owner
// constraint comes from id only and cannot be influenced by p.
func BuildQuery(id auth.Identity, p ListParams) entity.Query {
	f := entity.Filter{CreatedBy: id.UserID, Search: p.Search}
	if p.JobType != "" && p.JobType != filterAll {
		f.JobType = entity.Type(p.JobType)
	}
	if p.Status != "" && p.Status != filterAll {
		f.Status = entity.Status(p.Status)
	}

	page := max(defaultPage, atoiOr(p.Page, defaultPage))
	limit := atoiOr(p.Limit, defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)
	return entity.Query{
		Filter: f,
		Sort:   parseSort(p.Sort),
		Limit:  limit,
		Skip:   skipFor(page, limit),
	}
}

// skipFor saturates at math.MaxInt instead of overflowing; such a page is
// simply past the end.
func skipFor(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

// NumOfPages is ceil(total/limit).
func NumOfPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func parseSort(s string) entity.Sort {
	switch sort := entity.Sort(s); sort {
	case entity.SortLatest, entity.SortOldest, entity.SortAZ, entity.SortZA:
		return sort
	default:
		return entity.SortDefault
	}
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
