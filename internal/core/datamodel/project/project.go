package project

import "time"

type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusCompleted:
		return true
	default:
		return false
	}
}

type ManagerRef struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Project struct {
	ID             string     `json:"_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	StartDate      time.Time  `json:"startDate"`
	EndDate        time.Time  `json:"endDate"`
	RequiredSkills []string   `json:"requiredSkills"`
	TeamSize       int        `json:"teamSize"`
	Status         Status     `json:"status"`
	Manager        ManagerRef `json:"managerId"`
}

// Payload is the body of create and update requests. Dates use 2006-01-02.
type Payload struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	RequiredSkills []string `json:"requiredSkills"`
	TeamSize       int      `json:"teamSize"`
	Status         Status   `json:"status"`
}
