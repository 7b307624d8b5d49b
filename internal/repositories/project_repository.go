package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/alimgiray/bizscope/internal/models"
)

// ProjectRepository encodes projects as indented JSON documents keyed by project ID
type ProjectRepository struct {
	store DocumentStore
}

func NewProjectRepository(store DocumentStore) *ProjectRepository {
	return &ProjectRepository{
		store: store,
	}
}

// Save replaces the whole stored document for the project
func (r *ProjectRepository) Save(ctx context.Context, project *models.Project) error {
	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return &models.StorageError{Op: "encode", Key: project.ID, Err: err}
	}
	if err := r.store.Put(ctx, project.ID, data); err != nil {
		return &models.StorageError{Op: "write", Key: project.ID, Err: err}
	}
	return nil
}

// GetByID reads and decodes a project. The record is returned as stored,
// without legacy normalization.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*models.Project, error) {
	data, err := r.store.Get(ctx, id)
	if errors.Is(err, ErrDocumentNotFound) {
		return nil, models.ErrProjectNotFound
	}
	if err != nil {
		return nil, &models.StorageError{Op: "read", Key: id, Err: err}
	}

	project := &models.Project{}
	if err := json.Unmarshal(data, project); err != nil {
		return nil, &models.StorageError{Op: "decode", Key: id, Err: err}
	}
	if project.ID == "" {
		project.ID = id
	}
	return project, nil
}

// ListIDs returns the IDs of every stored project
func (r *ProjectRepository) ListIDs(ctx context.Context) ([]string, error) {
	ids, err := r.store.ListKeys(ctx)
	if err != nil {
		return nil, &models.StorageError{Op: "list", Err: err}
	}
	return ids, nil
}
