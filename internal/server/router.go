package server

import (
	"crisk/internal/database"
	"crisk/internal/handlers"
	"crisk/internal/middleware"

	"github.com/gin-gonic/gin"
)

// NewRouter exposes the store as a JSON API. Requests are serialized since
// the store holds a single session.
func NewRouter(store *database.Store) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// HEALTHCHECK
	r.GET("/health", handlers.Health)

	api := r.Group("/")
	api.Use(middleware.Serialize(), middleware.InjectStore(store))

	// ASSESSMENT HEADER
	api.GET("/basic", handlers.ShowBasic)
	api.PUT("/basic", handlers.UpdateBasic)

	// ASSETS
	api.GET("/assets", handlers.ListAssets)
	api.POST("/assets", handlers.CreateAsset)
	api.GET("/assets/:id", handlers.ShowAsset)
	api.PUT("/assets/:id", handlers.UpdateAsset)
	api.DELETE("/assets/:id", handlers.DeleteAsset)
	api.POST("/assets/:id/vulnerabilities/:vid", handlers.LinkAssetVulnerability)
	api.DELETE("/assets/:id/vulnerabilities/:vid", handlers.UnlinkAssetVulnerability)

	// VULNERABILITIES
	api.GET("/vulnerabilities", handlers.ListVulnerabilities)
	api.POST("/vulnerabilities", handlers.CreateVulnerability)
	api.GET("/vulnerabilities/:id", handlers.ShowVulnerability)
	api.PUT("/vulnerabilities/:id", handlers.UpdateVulnerability)
	api.DELETE("/vulnerabilities/:id", handlers.DeleteVulnerability)
	api.POST("/vulnerabilities/:id/threats/:tid", handlers.LinkVulnerabilityThreat)
	api.DELETE("/vulnerabilities/:id/threats/:tid", handlers.UnlinkVulnerabilityThreat)

	// THREATS
	api.GET("/threats", handlers.ListThreats)
	api.POST("/threats", handlers.CreateThreat)
	api.GET("/threats/:id", handlers.ShowThreat)
	api.PUT("/threats/:id", handlers.UpdateThreat)
	api.DELETE("/threats/:id", handlers.DeleteThreat)

	// OWNERS
	api.GET("/owners", handlers.ListOwners)
	api.POST("/owners", handlers.CreateOwner)
	api.GET("/owners/:id", handlers.ShowOwner)
	api.PUT("/owners/:id", handlers.UpdateOwner)
	api.DELETE("/owners/:id", handlers.DeleteOwner)

	// CONTROLS
	api.GET("/controls", handlers.ListControls)
	api.POST("/controls", handlers.CreateControl)
	api.GET("/controls/:id", handlers.ShowControl)
	api.PUT("/controls/:id", handlers.UpdateControl)
	api.DELETE("/controls/:id", handlers.DeleteControl)

	api.GET("/applied-controls", handlers.ListAppliedControls)
	api.POST("/applied-controls", handlers.CreateAppliedControl)
	api.GET("/applied-controls/:id", handlers.ShowAppliedControl)
	api.PUT("/applied-controls/:id", handlers.UpdateAppliedControl)
	api.DELETE("/applied-controls/:id", handlers.DeleteAppliedControl)

	// SESSION
	api.POST("/session/commit", handlers.Commit)
	api.POST("/session/rollback", handlers.Rollback)

	// REPORTING
	api.GET("/report", handlers.Report)
	api.GET("/audit", handlers.ListAuditLogs)

	return r
}
