package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every endpoint onto router
func RegisterRoutes(router *gin.Engine, projectHandler *ProjectHandler, healthHandler *HealthHandler, metricsHandler http.Handler) {
	api := router.Group("/api")
	{
		api.POST("/projects", projectHandler.CreateProject)
		api.GET("/projects", projectHandler.ListProjects)
		api.GET("/projects/:id", projectHandler.GetProject)
		api.POST("/projects/:id/sections/:section/regenerate", projectHandler.RegenerateSection)
		api.POST("/projects/:id/boilerplate", projectHandler.GenerateBoilerplate)
		api.GET("/projects/:id/export.xlsx", projectHandler.ExportProject)
	}

	router.GET("/health", healthHandler.HealthCheck)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	router.NoRoute(NewNotFoundHandler().NotFound)
}
