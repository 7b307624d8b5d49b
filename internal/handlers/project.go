package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/alimgiray/bizscope/internal/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ProjectHandler struct {
	projectService *services.ProjectService
	exportService  *services.ExportService
}

func NewProjectHandler(projectService *services.ProjectService, exportService *services.ExportService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		exportService:  exportService,
	}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type regenerateSectionRequest struct {
	Prompt string `json:"prompt"`
}

// CreateProject stores a pending project and schedules its generation
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": project})
}

// ListProjects returns every project newest first, plus the number still in flight
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Request.Context())
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"projects": projects,
		"pending":  services.CountInFlight(projects),
	})
}

// GetProject returns a single project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.GetProjectByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": project})
}

// RegenerateSection replaces one analysis section using the caller's prompt
func (h *ProjectHandler) RegenerateSection(c *gin.Context) {
	var req regenerateSectionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
			return
		}
	}

	err := h.projectService.RegenerateSection(c.Request.Context(), c.Param("id"), c.Param("section"), req.Prompt)
	if err != nil {
		// Anything unclassified came back from the analysis service
		writeError(c, err, http.StatusBadGateway)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GenerateBoilerplate returns the placeholder boilerplate message
func (h *ProjectHandler) GenerateBoilerplate(c *gin.Context) {
	message, err := h.projectService.GenerateBoilerplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "message": message})
}

// ExportProject streams the analysis as an XLSX workbook
func (h *ProjectHandler) ExportProject(c *gin.Context) {
	project, err := h.projectService.GetProjectByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := h.exportService.WriteXLSX(project, &buf); err != nil {
		writeError(c, err, http.StatusInternalServerError)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exportService.FileName(project)))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
