package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/alimgiray/bizscope/internal/metrics"
	"github.com/alimgiray/bizscope/internal/models"
	"github.com/alimgiray/bizscope/internal/workers"
	"github.com/alimgiray/bizscope/pkg/logger"
	"github.com/sirupsen/logrus"
)

// ProjectStore persists whole project documents
type ProjectStore interface {
	Save(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id string) (*models.Project, error)
	ListIDs(ctx context.Context) ([]string, error)
}

// Analyzer produces analyses and regenerated sections
type Analyzer interface {
	Generate(ctx context.Context, name, description string) (*models.Analysis, error)
	GenerateSection(ctx context.Context, analysis *models.Analysis, key models.SectionKey, hint string) (json.RawMessage, error)
}

// JobQueue accepts background jobs without blocking
type JobQueue interface {
	Submit(job workers.Job) error
}

var whitespaceRun = regexp.MustCompile(`\s+`)

type ProjectService struct {
	repo       ProjectStore
	analyzer   Analyzer
	queue      JobQueue
	metrics    *metrics.Collector
	similarity *TextSimilarityService
}

func NewProjectService(repo ProjectStore, analyzer Analyzer, queue JobQueue, collector *metrics.Collector) *ProjectService {
	return &ProjectService{
		repo:       repo,
		analyzer:   analyzer,
		queue:      queue,
		metrics:    collector,
		similarity: NewTextSimilarityService(),
	}
}

// CreateProject validates the input, persists a pending project and hands
// generation to the worker pool. It returns as soon as the record is stored.
// If the pool refuses the job the stored record is moved to error and returned.
func (s *ProjectService) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	if err := models.ValidateProjectInput(name, description); err != nil {
		return nil, err
	}

	project := models.NewProject(name, description)
	if err := s.repo.Save(ctx, project); err != nil {
		return nil, err
	}
	s.metrics.RecordProjectCreated()

	job := &generationJob{
		service:     s,
		projectID:   project.ID,
		name:        project.Analysis.Name,
		description: project.Analysis.Description,
	}
	if err := s.queue.Submit(job); err != nil {
		s.metrics.RecordQueueRejection()
		logger.WithError(err).WithField("project_id", project.ID).Error("Failed to schedule generation")

		if markErr := project.MarkFailed(fmt.Sprintf("could not schedule generation: %v", err)); markErr == nil {
			if saveErr := s.repo.Save(context.WithoutCancel(ctx), project); saveErr != nil {
				logger.WithError(saveErr).WithField("project_id", project.ID).Error("Failed to record scheduling failure")
			}
		}
		return project, nil
	}

	logger.WithField("project_id", project.ID).Info("Project created, generation scheduled")
	return project, nil
}

// generate is the body of the background job. Failures end up in the stored
// record; the returned error is only logged by the pool.
func (s *ProjectService) generate(ctx context.Context, id, name, description string) (err error) {
	start := time.Now()
	persistCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generation panicked: %v", r)
			s.finish(persistCtx, id, nil, err, start)
		}
	}()

	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := project.MarkGenerating(); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, project); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"project_id": id,
		"status":     project.Status,
	}).Info("Generation started")

	analysis, genErr := s.analyzer.Generate(ctx, name, description)
	return s.finish(persistCtx, id, analysis, genErr, start)
}

// finish moves a generating project to its terminal status. The record is
// re-read so a status change made while the model was working is not
// overwritten.
func (s *ProjectService) finish(ctx context.Context, id string, analysis *models.Analysis, genErr error, start time.Time) error {
	project, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !project.IsGenerating() {
		logger.WithFields(logrus.Fields{
			"project_id": id,
			"status":     project.Status,
		}).Warn("Project left generating state while the analysis was running, discarding result")
		return nil
	}

	if genErr != nil {
		err = project.MarkFailed(genErr.Error())
	} else {
		err = project.MarkCompleted(analysis)
	}
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, project); err != nil {
		return err
	}

	duration := time.Since(start)
	s.metrics.RecordGeneration(string(project.Status), duration)

	entry := logger.WithFields(logrus.Fields{
		"project_id": id,
		"status":     project.Status,
		"duration":   duration.String(),
	})
	if genErr != nil {
		entry.WithError(genErr).Warn("Generation failed")
		return genErr
	}
	entry.Info("Generation completed")
	return nil
}

// ListProjects returns every readable project, newest first. Records that
// cannot be read are logged and skipped.
func (s *ProjectService) ListProjects(ctx context.Context) ([]*models.Project, error) {
	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	projects := make([]*models.Project, 0, len(ids))
	for _, id := range ids {
		project, err := s.load(ctx, id)
		if err != nil {
			logger.WithError(err).WithField("project_id", id).Warn("Skipping unreadable project")
			continue
		}
		projects = append(projects, project)
	}

	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// GetProjectByID returns the project or models.ErrProjectNotFound
func (s *ProjectService) GetProjectByID(ctx context.Context, id string) (*models.Project, error) {
	return s.load(ctx, id)
}

// CountInFlight returns how many of projects still await a terminal status
func CountInFlight(projects []*models.Project) int {
	n := 0
	for _, p := range projects {
		if p.IsInFlight() {
			n++
		}
	}
	return n
}

// RegenerateSection replaces one section of an existing analysis with a new
// model response. The status is left unchanged.
func (s *ProjectService) RegenerateSection(ctx context.Context, id, section, hint string) (err error) {
	key, err := models.ParseSectionKey(section)
	if err != nil {
		message := err.Error()
		if suggestion, ok := s.similarity.SuggestSection(section); ok {
			message = fmt.Sprintf("%s (did you mean %s?)", message, suggestion)
		}
		return &models.ValidationError{Field: "section", Message: message}
	}
	defer func() {
		s.metrics.RecordSectionRegeneration(string(key), err)
	}()

	project, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !project.HasAnalysis() {
		return fmt.Errorf("%w: analysis not available for project %s", models.ErrInvalidState, id)
	}

	raw, err := s.analyzer.GenerateSection(ctx, project.Analysis, key, hint)
	if err != nil {
		return fmt.Errorf("failed to regenerate section %s: %w", key, err)
	}

	current, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !current.HasAnalysis() {
		return fmt.Errorf("%w: analysis not available for project %s", models.ErrInvalidState, id)
	}
	if err := current.Analysis.SetSection(key, raw); err != nil {
		return err
	}
	if err := s.repo.Save(ctx, current); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"project_id": id,
		"section":    key,
	}).Info("Section regenerated")
	return nil
}

// GenerateBoilerplate returns a placeholder message naming where the boilerplate would live
func (s *ProjectService) GenerateBoilerplate(ctx context.Context, id string) (string, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if !project.HasAnalysis() {
		return "", fmt.Errorf("%w: analysis not available for project %s", models.ErrInvalidState, id)
	}

	name := project.Analysis.Name
	slug := whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
	message := fmt.Sprintf("Boilerplate generated locally for \"%s\" at /workspaces/%s", name, slug)

	logger.WithFields(logrus.Fields{
		"project_id": id,
		"path":       "/workspaces/" + slug,
	}).Info("Boilerplate placeholder generated")
	return message, nil
}

// load reads a project and writes back the legacy migration when one applied
func (s *ProjectService) load(ctx context.Context, id string) (*models.Project, error) {
	stored, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	project, migrated := models.Normalize(*stored)
	if migrated {
		if err := s.repo.Save(ctx, &project); err != nil {
			logger.WithError(err).WithField("project_id", id).Warn("Failed to persist legacy status migration")
		} else {
			logger.WithField("project_id", id).Info("Migrated legacy project to completed status")
		}
	}
	return &project, nil
}

type generationJob struct {
	service     *ProjectService
	projectID   string
	name        string
	description string
}

func (j *generationJob) Name() string {
	return "generate:" + j.projectID
}

func (j *generationJob) Run(ctx context.Context) error {
	return j.service.generate(ctx, j.projectID, j.name, j.description)
}
