package routes

import (
	"encoding/json"
	"net/http"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/queue"
	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/middleware"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/graphlink"
	constorage "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// BuildGraphHandler rebuilds the relationship graph for an owner. By default
// the job is queued for the worker; with sync=true the build runs inline and
// the response reports how many edges were written.
func BuildGraphHandler(c echo.Context) error {
	type buildGraphData struct {
		OwnerID     string `param:"owner_id" validate:"required"`
		ComponentID string `query:"component_id"`
		Sync        bool   `query:"sync"`
	}

	type buildGraphResponse struct {
		Message string `json:"message"`
		Edges   int    `json:"edges,omitempty"`
	}

	data := new(buildGraphData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, buildGraphResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, buildGraphResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, buildGraphResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	if data.Sync {
		st := constorage.NewContinuityDBStorageWithConnection(app.DBConn)
		builder := graphlink.NewBuilder(st, app.AiClient)

		if data.ComponentID != "" {
			edges, err := builder.BuildForComponent(ctx, data.ComponentID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, buildGraphResponse{Message: "Internal server error"})
			}
			return c.JSON(http.StatusOK, buildGraphResponse{
				Message: "Component linked",
				Edges:   len(edges),
			})
		}

		handle, err := builder.BuildAll(ctx, data.OwnerID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, buildGraphResponse{Message: "Internal server error"})
		}
		count, err := handle.Wait(ctx)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, buildGraphResponse{Message: "Internal server error"})
		}
		return c.JSON(http.StatusOK, buildGraphResponse{
			Message: "Graph rebuilt",
			Edges:   count,
		})
	}

	queueData := queue.QueueEdgeBuildMsg{
		Message:     "Rebuild relationship graph",
		OwnerID:     data.OwnerID,
		ComponentID: data.ComponentID,
	}

	msgBytes, err := json.Marshal(queueData)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, buildGraphResponse{Message: "Internal server error"})
	}

	if err := queue.PublishFIFO(app.Queue, "edge_build_queue", msgBytes); err != nil {
		return c.JSON(http.StatusInternalServerError, buildGraphResponse{Message: "Failed to queue build"})
	}

	return c.JSON(http.StatusAccepted, buildGraphResponse{Message: "Build queued"})
}
