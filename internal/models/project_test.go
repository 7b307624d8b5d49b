package models

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProject(t *testing.T) {
	project := NewProject("  Pet Sitter  ", "  Marketplace for pet sitting  ")

	assert.NotEmpty(t, project.ID)
	assert.Equal(t, ProjectStatusPending, project.Status)
	assert.False(t, project.CreatedAt.IsZero())
	assert.Empty(t, project.Error)
	require.NotNil(t, project.Analysis)
	assert.Equal(t, "Pet Sitter", project.Analysis.Name)
	assert.Equal(t, "Marketplace for pet sitting", project.Analysis.Description)

	other := NewProject("Pet Sitter", "Marketplace for pet sitting")
	assert.NotEqual(t, project.ID, other.ID)
}

func TestNewProjectSkeletonHasNoNullFields(t *testing.T) {
	project := NewProject("Pet Sitter", "Marketplace for pet sitting")

	data, err := json.Marshal(project)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "null")

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	analysis := doc["analysis"].(map[string]any)
	for _, key := range SectionKeys {
		assert.Contains(t, analysis, string(key))
	}
	assert.Equal(t, []any{}, analysis["keyFeatures"])

	swot := analysis["swotAnalysis"].(map[string]any)
	for _, bucket := range []string{"strengths", "weaknesses", "opportunities", "threats"} {
		assert.Equal(t, []any{}, swot[bucket], bucket)
	}
	tiers := analysis["businessModel"].(map[string]any)["pricingStrategy"].(map[string]any)["tiers"]
	assert.Equal(t, []any{}, tiers)
}

func TestValidateProjectInput(t *testing.T) {
	testCases := []struct {
		name        string
		projectName string
		description string
		field       string
	}{
		{"empty name", "", "A valid description", "name"},
		{"whitespace name", "   ", "A valid description", "name"},
		{"short name", "ab", "A valid description", "name"},
		{"short name after trim", "  ab  ", "A valid description", "name"},
		{"empty description", "Valid", "", "description"},
		{"whitespace description", "Valid", "          \t ", "description"},
		{"short description", "Valid", "too short", "description"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateProjectInput(tc.projectName, tc.description)
			require.Error(t, err)

			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
			assert.True(t, IsValidationError(err))
		})
	}

	t.Run("minimum lengths", func(t *testing.T) {
		assert.NoError(t, ValidateProjectInput("abc", "0123456789"))
	})

	t.Run("lengths count characters not bytes", func(t *testing.T) {
		assert.NoError(t, ValidateProjectInput("été", "àéîõüàéîõü"))
		assert.Error(t, ValidateProjectInput("é", strings.Repeat("x", 10)))
	})
}

func TestNormalize(t *testing.T) {
	t.Run("legacy record without status", func(t *testing.T) {
		legacy := Project{ID: "legacy"}

		normalized, migrated := Normalize(legacy)
		assert.True(t, migrated)
		assert.Equal(t, ProjectStatusCompleted, normalized.Status)
		assert.Equal(t, ProjectStatus(""), legacy.Status)
	})

	t.Run("current record untouched", func(t *testing.T) {
		for _, status := range []ProjectStatus{ProjectStatusPending, ProjectStatusGenerating, ProjectStatusCompleted, ProjectStatusError} {
			normalized, migrated := Normalize(Project{ID: "p", Status: status})
			assert.False(t, migrated)
			assert.Equal(t, status, normalized.Status)
		}
	})
}

func TestProjectTransitions(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		project := NewProject("Pet Sitter", "Marketplace for pet sitting")
		require.NoError(t, project.MarkGenerating())
		assert.True(t, project.IsGenerating())

		analysis := NewAnalysisSkeleton("Pet Sitter", "Marketplace for pet sitting")
		analysis.KeyFeatures = []string{"Booking"}
		require.NoError(t, project.MarkCompleted(analysis))
		assert.True(t, project.IsCompleted())
		assert.Equal(t, analysis, project.Analysis)
	})

	t.Run("failure keeps analysis", func(t *testing.T) {
		project := NewProject("Pet Sitter", "Marketplace for pet sitting")
		skeleton := project.Analysis
		require.NoError(t, project.MarkGenerating())
		require.NoError(t, project.MarkFailed("boom"))

		assert.True(t, project.IsFailed())
		assert.Equal(t, "boom", project.Error)
		assert.Same(t, skeleton, project.Analysis)
	})

	t.Run("terminal states are final", func(t *testing.T) {
		project := NewProject("Pet Sitter", "Marketplace for pet sitting")
		require.NoError(t, project.MarkGenerating())
		require.NoError(t, project.MarkFailed("boom"))

		assert.ErrorIs(t, project.MarkGenerating(), ErrInvalidState)
		assert.ErrorIs(t, project.MarkCompleted(project.Analysis), ErrInvalidState)
		assert.ErrorIs(t, project.MarkFailed("again"), ErrInvalidState)
		assert.Equal(t, "boom", project.Error)
	})

	t.Run("cannot skip generating", func(t *testing.T) {
		project := NewProject("Pet Sitter", "Marketplace for pet sitting")
		assert.ErrorIs(t, project.MarkCompleted(project.Analysis), ErrInvalidState)
		assert.True(t, project.IsPending())
	})

	t.Run("pending can fail without generating", func(t *testing.T) {
		project := NewProject("Pet Sitter", "Marketplace for pet sitting")
		require.NoError(t, project.MarkFailed("queue full"))
		assert.True(t, project.IsFailed())
		assert.Equal(t, "queue full", project.Error)
	})

	t.Run("completed requires analysis", func(t *testing.T) {
		project := NewProject("Pet Sitter", "Marketplace for pet sitting")
		require.NoError(t, project.MarkGenerating())
		assert.ErrorIs(t, project.MarkCompleted(nil), ErrInvalidState)
		assert.True(t, project.IsGenerating())
	})
}
