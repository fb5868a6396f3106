package entity

import "time"

// Status of an application.
type Status string

const (
	StatusPending   Status = "pending"
	StatusInterview Status = "interview"
	StatusDeclined  Status = "declined"
)

// Type of position applied for.
type Type string

const (
	TypeFullTime   Type = "full-time"
	TypePartTime   Type = "part-time"
	TypeInternship Type = "internship"
	TypeContract   Type = "contract"
)

// Statuses lists valid statuses in display order.
var Statuses = []Status{StatusInterview, StatusDeclined, StatusPending}

// Types lists valid job types.
var Types = []Type{TypeFullTime, TypePartTime, TypeInternship, TypeContract}

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (t Type) Valid() bool {
	for _, v := range Types {
		if t == v {
			return true
		}
	}
	return false
}

// Job is one tracked application. CreatedBy is the owning user.
type Job struct {
	ID        int64     `db:"id" json:"id,string"`
	Company   string    `db:"company" json:"company"`
	Position  string    `db:"position" json:"position"`
	Status    Status    `db:"status" json:"status"`
	JobType   Type      `db:"job_type" json:"jobType"`
	CreatedBy int64     `db:"created_by" json:"createdBy,string"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Patch is an update to an existing job. Nil fields keep their stored value.
type Patch struct {
	Company  string
	Position string
	Status   *Status
	JobType  *Type
}

// StatusCount is one group of the per-status aggregate.
type StatusCount struct {
	Status Status `db:"status"`
	Count  int    `db:"count"`
}

// MonthCount is one group of the per-month aggregate.
type MonthCount struct {
	Year  int `db:"year"`
	Month int `db:"month"`
	Count int `db:"count"`
}
