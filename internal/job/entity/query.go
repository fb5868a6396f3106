package entity

// Sort selects the order of a listing.
type Sort string

const (
	SortDefault Sort = ""
	SortLatest  Sort = "latest"
	SortOldest  Sort = "oldest"
	SortAZ      Sort = "a-z"
	SortZA      Sort = "z-a"
)

// Filter restricts a listing. CreatedBy is always set; empty optional
// fields do not constrain the result.
type Filter struct {
	CreatedBy int64
	// Search is matched case-insensitively as a substring of Position.
	Search  string
	JobType Type
	Status  Status
}

// Query is a filtered, sorted page of jobs.
type Query struct {
	Filter Filter
	Sort   Sort
	Limit  int
	Skip   int
}
