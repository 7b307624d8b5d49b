package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// ProjectStatus represents where a project is in its generation lifecycle
type ProjectStatus string

const (
	ProjectStatusPending    ProjectStatus = "pending"
	ProjectStatusGenerating ProjectStatus = "generating"
	ProjectStatusCompleted  ProjectStatus = "completed"
	ProjectStatusError      ProjectStatus = "error"
)

const (
	MinNameLength        = 3
	MinDescriptionLength = 10
)

// Project is the persisted unit, stored as one JSON document per ID.
type Project struct {
	ID        string        `json:"id"`
	CreatedAt time.Time     `json:"createdAt"`
	Status    ProjectStatus `json:"status"`
	Analysis  *Analysis     `json:"analysis"`
	Error     string        `json:"error,omitempty"`
}

// NewProject creates a pending Project with a generated UUID and an empty analysis skeleton
func NewProject(name, description string) *Project {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)
	return &Project{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Status:    ProjectStatusPending,
		Analysis:  NewAnalysisSkeleton(name, description),
	}
}

// ValidateProjectInput checks the submitted name and description
func ValidateProjectInput(name, description string) error {
	name = strings.TrimSpace(name)
	description = strings.TrimSpace(description)

	if name == "" {
		return &ValidationError{Field: "name", Message: "Project name is required"}
	}
	if description == "" {
		return &ValidationError{Field: "description", Message: "Project description is required"}
	}
	if utf8.RuneCountInString(name) < MinNameLength {
		return &ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("Project name must be at least %d characters", MinNameLength),
		}
	}
	if utf8.RuneCountInString(description) < MinDescriptionLength {
		return &ValidationError{
			Field:   "description",
			Message: fmt.Sprintf("Project description must be at least %d characters", MinDescriptionLength),
		}
	}
	return nil
}

// Normalize upgrades records written before the status field existed.
// The returned bool is true when the record was changed and must be written back.
func Normalize(p Project) (Project, bool) {
	if p.Status != "" {
		return p, false
	}
	p.Status = ProjectStatusCompleted
	return p, true
}

// IsPending checks if the project is waiting for a worker
func (p *Project) IsPending() bool {
	return p.Status == ProjectStatusPending
}

// IsGenerating checks if generation is in progress
func (p *Project) IsGenerating() bool {
	return p.Status == ProjectStatusGenerating
}

// IsCompleted checks if the analysis is available
func (p *Project) IsCompleted() bool {
	return p.Status == ProjectStatusCompleted
}

// IsFailed checks if generation failed
func (p *Project) IsFailed() bool {
	return p.Status == ProjectStatusError
}

// IsInFlight reports whether the project still awaits a terminal status
func (p *Project) IsInFlight() bool {
	return p.IsPending() || p.IsGenerating()
}

// HasAnalysis reports whether there is an analysis to work with
func (p *Project) HasAnalysis() bool {
	return p.Analysis != nil
}

// MarkGenerating moves a pending project to generating
func (p *Project) MarkGenerating() error {
	if !p.IsPending() {
		return p.transitionError(ProjectStatusGenerating)
	}
	p.Status = ProjectStatusGenerating
	return nil
}

// MarkCompleted stores the generated analysis and completes the project
func (p *Project) MarkCompleted(analysis *Analysis) error {
	if !p.IsGenerating() {
		return p.transitionError(ProjectStatusCompleted)
	}
	if analysis == nil {
		return fmt.Errorf("%w: completed project requires an analysis", ErrInvalidState)
	}
	p.Analysis = analysis
	p.Status = ProjectStatusCompleted
	p.Error = ""
	return nil
}

// MarkFailed records the failure message. The analysis is left as it was.
func (p *Project) MarkFailed(message string) error {
	if !p.IsInFlight() {
		return p.transitionError(ProjectStatusError)
	}
	p.Status = ProjectStatusError
	p.Error = message
	return nil
}

func (p *Project) transitionError(to ProjectStatus) error {
	return fmt.Errorf("%w: cannot move project %s from %q to %q", ErrInvalidState, p.ID, p.Status, to)
}
