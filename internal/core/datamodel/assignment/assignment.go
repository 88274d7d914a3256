package assignment

import "time"

const (
	MinAllocation = 1
	MaxAllocation = 100
)

type EngineerRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ProjectRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Assignment struct {
	ID                   string      `json:"_id"`
	Engineer             EngineerRef `json:"engineerId"`
	Project              ProjectRef  `json:"projectId"`
	AllocationPercentage int         `json:"allocationPercentage"`
	StartDate            time.Time   `json:"startDate"`
	EndDate              time.Time   `json:"endDate"`
	Role                 string      `json:"role"`
}

// ActiveAt reports whether t falls inside the assignment's date range.
func (a Assignment) ActiveAt(t time.Time) bool {
	return !t.Before(a.StartDate) && !t.After(a.EndDate)
}

// Payload is the body of create and update requests. Dates use 2006-01-02.
type Payload struct {
	EngineerID           string `json:"engineerId"`
	ProjectID            string `json:"projectId"`
	AllocationPercentage int    `json:"allocationPercentage"`
	StartDate            string `json:"startDate"`
	EndDate              string `json:"endDate"`
	Role                 string `json:"role"`
}
