package engineer

import "time"

type Engineer struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Skills      []string `json:"skills"`
	Seniority   string   `json:"seniority"`
	MaxCapacity float64  `json:"maxCapacity"`
	Department  string   `json:"department"`
}

// Capacity is the body of GET /engineers/{id}/capacity. MaxCapacity is
// optional on the wire; zero means the backend did not send it.
type Capacity struct {
	EngineerID        string  `json:"engineerId,omitempty"`
	TotalAllocated    float64 `json:"totalAllocated"`
	AvailableCapacity float64 `json:"availableCapacity"`
	MaxCapacity       float64 `json:"maxCapacity,omitempty"`
}

type Availability struct {
	AvailableDate time.Time `json:"availableDate"`
}
