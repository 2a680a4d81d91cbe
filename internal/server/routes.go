package server

import (
	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/middleware"
	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Verification routes
	apiRoutes.POST("/verify/entries/:id", routes.VerifyEntryHandler)
	apiRoutes.GET("/verify/entries/:id", routes.GetVerificationHandler)
	apiRoutes.POST("/verify/claim", routes.VerifyClaimHandler)

	// Contradiction routes
	apiRoutes.GET("/contradictions", routes.GetContradictionsHandler)
	apiRoutes.POST("/contradictions/:id/resolve", routes.ResolveContradictionHandler)
	apiRoutes.POST("/contradictions/:id/suggestion", routes.SuggestResolutionHandler)

	// Graph routes
	apiRoutes.GET("/graph/:component_id/neighbors", routes.GetNeighborsHandler)
	apiRoutes.GET("/graph/path", routes.GetPathHandler)
	apiRoutes.POST("/graph/:owner_id/build", routes.BuildGraphHandler, middleware.RequireOwner("owner_id"))

	// Drift routes
	apiRoutes.POST("/drift/:owner_id/scan", routes.ScanDriftHandler, middleware.RequireOwner("owner_id"))
	apiRoutes.GET("/drift/:owner_id/report", routes.GetDriftReportHandler, middleware.RequireOwner("owner_id"))
}
