package repositories

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte) error { return errors.New("disk full") }
func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("io error")
}
func (failingStore) ListKeys(context.Context) ([]string, error) { return nil, errors.New("io error") }

func TestProjectRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			repo := NewProjectRepository(store)

			project := models.NewProject("Pet Sitter", "Marketplace for pet sitting")
			project.CreatedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
			project.Analysis.KeyFeatures = []string{"Booking"}
			project.Analysis.CompetitorsAnalysis.MainCompetitors = []models.Competitor{
				{Name: "Rover", Strengths: []string{"Brand"}, Weaknesses: []string{}},
			}
			require.NoError(t, repo.Save(ctx, project))

			got, err := repo.GetByID(ctx, project.ID)
			require.NoError(t, err)
			assert.Equal(t, project, got)

			ids, err := repo.ListIDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{project.ID}, ids)
		})
	}
}

func TestProjectRepositoryWritesIndentedJSON(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileDocumentStore(t.TempDir())
	require.NoError(t, err)
	repo := NewProjectRepository(store)

	project := models.NewProject("Pet Sitter", "Marketplace for pet sitting")
	require.NoError(t, repo.Save(ctx, project))

	raw, err := store.Get(ctx, project.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "{\n  \"id\": "))
	assert.NotContains(t, string(raw), `"error"`)
}

func TestProjectRepositoryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		store, err := NewFileDocumentStore(t.TempDir())
		require.NoError(t, err)

		_, err = NewProjectRepository(store).GetByID(ctx, "nope")
		assert.ErrorIs(t, err, models.ErrProjectNotFound)
	})

	t.Run("ids that cannot name a document are not found", func(t *testing.T) {
		for name, store := range newStores(t) {
			repo := NewProjectRepository(store)
			for _, id := range []string{`a\b`, "..", "."} {
				_, err := repo.GetByID(ctx, id)
				assert.ErrorIs(t, err, models.ErrProjectNotFound, "%s %q", name, id)
			}
		}
	})

	t.Run("undecodable document", func(t *testing.T) {
		store, err := NewFileDocumentStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "bad", []byte("{not json")))

		_, err = NewProjectRepository(store).GetByID(ctx, "bad")
		var storageErr *models.StorageError
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "decode", storageErr.Op)
	})

	t.Run("backend failures are storage errors", func(t *testing.T) {
		repo := NewProjectRepository(failingStore{})
		var storageErr *models.StorageError

		err := repo.Save(ctx, models.NewProject("Pet Sitter", "Marketplace for pet sitting"))
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "write", storageErr.Op)

		_, err = repo.GetByID(ctx, "x")
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "read", storageErr.Op)

		_, err = repo.ListIDs(ctx)
		require.ErrorAs(t, err, &storageErr)
		assert.Equal(t, "list", storageErr.Op)
	})

	t.Run("legacy document without status or id", func(t *testing.T) {
		store, err := NewFileDocumentStore(t.TempDir())
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "old", []byte(`{"createdAt":"2024-01-01T00:00:00Z","analysis":null}`)))

		got, err := NewProjectRepository(store).GetByID(ctx, "old")
		require.NoError(t, err)
		assert.Equal(t, "old", got.ID)
		assert.Equal(t, models.ProjectStatus(""), got.Status)
		assert.Nil(t, got.Analysis)
	})
}
