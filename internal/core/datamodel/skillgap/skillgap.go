package skillgap

type Response struct {
	ProjectID      string   `json:"projectId"`
	RequiredSkills []string `json:"requiredSkills"`
	AssignedSkills []string `json:"assignedSkills"`
	MissingSkills  []string `json:"missingSkills"`
}
