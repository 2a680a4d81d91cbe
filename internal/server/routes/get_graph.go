package routes

import (
	"errors"
	"net/http"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/middleware"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"
	constorage "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetNeighborsHandler returns the components linked to one component,
// optionally filtered by relationship type.
func GetNeighborsHandler(c echo.Context) error {
	type getNeighborsData struct {
		ComponentID string `param:"component_id" validate:"required"`
		Type        string `query:"type"`
		Limit       int    `query:"limit"`
	}

	type getNeighborsResponse struct {
		Message    string                   `json:"message"`
		Components []common.MemoryComponent `json:"components"`
		Edges      []common.GraphEdge       `json:"edges"`
	}

	data := new(getNeighborsData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getNeighborsResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getNeighborsResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getNeighborsResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	st := constorage.NewContinuityDBStorageWithConnection(conn)

	root, err := st.GetComponent(ctx, data.ComponentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, getNeighborsResponse{Message: "Component not found"})
		}
		return c.JSON(http.StatusInternalServerError, getNeighborsResponse{Message: "Internal server error"})
	}
	if !middleware.IsOwner(user, root.OwnerID) {
		return c.JSON(http.StatusForbidden, getNeighborsResponse{Message: "Forbidden"})
	}

	components, edges, err := st.GetNeighbors(ctx, data.ComponentID, common.RelationshipType(data.Type), data.Limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getNeighborsResponse{Message: "Internal server error"})
	}
	if components == nil {
		components = []common.MemoryComponent{}
	}
	if edges == nil {
		edges = []common.GraphEdge{}
	}

	return c.JSON(http.StatusOK, getNeighborsResponse{
		Message:    "Neighbors",
		Components: components,
		Edges:      edges,
	})
}

// GetPathHandler finds a shortest path between two components.
func GetPathHandler(c echo.Context) error {
	type getPathData struct {
		SourceID string `query:"source_id" validate:"required"`
		TargetID string `query:"target_id" validate:"required"`
		MaxDepth int    `query:"max_depth"`
	}

	type getPathResponse struct {
		Message string   `json:"message"`
		Path    []string `json:"path,omitempty"`
	}

	data := new(getPathData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getPathResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getPathResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getPathResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	st := constorage.NewContinuityDBStorageWithConnection(conn)

	source, err := st.GetComponent(ctx, data.SourceID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, getPathResponse{Message: "Component not found"})
		}
		return c.JSON(http.StatusInternalServerError, getPathResponse{Message: "Internal server error"})
	}
	if !middleware.IsOwner(user, source.OwnerID) {
		return c.JSON(http.StatusForbidden, getPathResponse{Message: "Forbidden"})
	}

	path, err := st.FindPath(ctx, data.SourceID, data.TargetID, data.MaxDepth)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, getPathResponse{Message: "No path found"})
		}
		return c.JSON(http.StatusInternalServerError, getPathResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, getPathResponse{
		Message: "Path found",
		Path:    path,
	})
}
