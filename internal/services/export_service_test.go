package services

import (
	"bytes"
	"testing"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportServiceWriteXLSX(t *testing.T) {
	project := models.NewProject("Pet Sitter", "Marketplace for pet sitting")
	project.Analysis.KeyFeatures = []string{"Booking", "Reviews"}
	project.Analysis.BusinessModel.PricingStrategy.Tiers = []models.PricingTier{
		{Name: "Pro", Price: "$9", Features: []string{"Priority", "Insurance"}},
	}

	service := NewExportService()
	var buf bytes.Buffer
	require.NoError(t, service.WriteXLSX(project, &buf))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		"Overview", "Business Model", "Market", "SWOT",
		"Competitors", "Product", "Platforms", "Boilerplate",
	}, f.GetSheetList())

	name, err := f.GetCellValue("Overview", "B3")
	require.NoError(t, err)
	assert.Equal(t, "Pet Sitter", name)

	status, err := f.GetCellValue("Overview", "B5")
	require.NoError(t, err)
	assert.Equal(t, "pending", status)

	feature, err := f.GetCellValue("Product", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Booking", feature)

	rows, err := f.GetRows("Business Model")
	require.NoError(t, err)
	assert.Contains(t, rows, []string{"Pro", "$9", "Priority\nInsurance"})
}

func TestExportServiceWithoutAnalysis(t *testing.T) {
	service := NewExportService()
	project := &models.Project{ID: "legacy", Status: models.ProjectStatusCompleted}

	var buf bytes.Buffer
	assert.ErrorIs(t, service.WriteXLSX(project, &buf), models.ErrInvalidState)
	assert.Zero(t, buf.Len())
	assert.Equal(t, "analysis.xlsx", service.FileName(project))
}

func TestExportServiceFileName(t *testing.T) {
	service := NewExportService()
	project := models.NewProject("Pet  Sitter App", "Marketplace for pet sitting")

	assert.Equal(t, "pet-sitter-app.xlsx", service.FileName(project))
}
