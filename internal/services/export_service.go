package services

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alimgiray/bizscope/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders an analysis as an XLSX workbook, one sheet per section
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// sheetWriter appends rows to one sheet
type sheetWriter struct {
	file   *excelize.File
	sheet  string
	row    int
	header int
	err    error
}

func (w *sheetWriter) write(values ...any) {
	if w.err != nil {
		return
	}
	w.row++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, w.row)
		if err != nil {
			w.err = err
			return
		}
		if err := w.file.SetCellValue(w.sheet, cell, v); err != nil {
			w.err = err
			return
		}
	}
}

// heading writes a bold row
func (w *sheetWriter) heading(values ...any) {
	w.write(values...)
	if w.err != nil || len(values) == 0 {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, w.row)
	last, _ := excelize.CoordinatesToCellName(len(values), w.row)
	w.err = w.file.SetCellStyle(w.sheet, first, last, w.header)
}

func (w *sheetWriter) list(title string, items []string) {
	w.heading(title)
	for _, item := range items {
		w.write(item)
	}
	w.row++
}

// FileName returns the download name for a project's workbook
func (s *ExportService) FileName(project *models.Project) string {
	name := "analysis"
	if project.HasAnalysis() && strings.TrimSpace(project.Analysis.Name) != "" {
		name = whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(project.Analysis.Name)), "-")
	}
	return name + ".xlsx"
}

// WriteXLSX writes the project's analysis workbook to out
func (s *ExportService) WriteXLSX(project *models.Project, out io.Writer) error {
	if !project.HasAnalysis() {
		return fmt.Errorf("%w: analysis not available for project %s", models.ErrInvalidState, project.ID)
	}
	a := project.Analysis

	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	sheets := []struct {
		name   string
		render func(w *sheetWriter)
	}{
		{"Overview", func(w *sheetWriter) {
			w.heading("Field", "Value")
			w.write("ID", project.ID)
			w.write("Name", a.Name)
			w.write("Description", a.Description)
			w.write("Status", string(project.Status))
			w.write("Created", project.CreatedAt.Format(time.RFC3339))
		}},
		{"Business Model", func(w *sheetWriter) {
			w.list("Revenue streams", a.BusinessModel.RevenueStreams)
			w.heading("Tier", "Price", "Features")
			for _, tier := range a.BusinessModel.PricingStrategy.Tiers {
				w.write(tier.Name, tier.Price, strings.Join(tier.Features, "\n"))
			}
		}},
		{"Market", func(w *sheetWriter) {
			w.heading("Market size")
			w.write(a.MarketAnalysis.MarketSize)
			w.row++
			w.list("Trends", a.MarketAnalysis.Trends)
			w.list("Opportunities", a.MarketAnalysis.Opportunities)
		}},
		{"SWOT", func(w *sheetWriter) {
			w.list("Strengths", a.SWOTAnalysis.Strengths)
			w.list("Weaknesses", a.SWOTAnalysis.Weaknesses)
			w.list("Opportunities", a.SWOTAnalysis.Opportunities)
			w.list("Threats", a.SWOTAnalysis.Threats)
		}},
		{"Competitors", func(w *sheetWriter) {
			w.heading("Competitor", "Strengths", "Weaknesses")
			for _, c := range a.CompetitorsAnalysis.MainCompetitors {
				w.write(c.Name, strings.Join(c.Strengths, "\n"), strings.Join(c.Weaknesses, "\n"))
			}
			w.row++
			w.heading("Positioning")
			w.write(a.CompetitorsAnalysis.Positioning)
		}},
		{"Product", func(w *sheetWriter) {
			w.list("Key features", a.KeyFeatures)
			w.list("Product strengths", a.StrengthsWeaknesses.Strengths)
			w.list("Product weaknesses", a.StrengthsWeaknesses.Weaknesses)
		}},
		{"Platforms", func(w *sheetWriter) {
			w.heading("Platform", "Justification")
			w.write("Web", a.RecommendedPlatforms.Web.Justification)
			w.write("Mobile", a.RecommendedPlatforms.Mobile.Justification)
			w.write("Desktop", a.RecommendedPlatforms.Desktop.Justification)
		}},
		{"Boilerplate", func(w *sheetWriter) {
			w.heading("Step", "Instructions")
			w.write("Setup", a.BoilerplateInstructions.Setup)
			w.write("Backend", a.BoilerplateInstructions.Backend)
			w.write("Deployment", a.BoilerplateInstructions.Deployment)
			w.write("Version control", a.BoilerplateInstructions.VersionControl)
		}},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return err
		}

		w := &sheetWriter{file: f, sheet: sheet.name, header: header}
		sheet.render(w)
		if w.err != nil {
			return fmt.Errorf("failed to render sheet %s: %w", sheet.name, w.err)
		}
		if err := f.SetColWidth(sheet.name, "A", "C", 40); err != nil {
			return err
		}
	}

	_, err = f.WriteTo(out)
	return err
}
