package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/middleware"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/ai"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/logger"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"
	constorage "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// ResolveContradictionHandler marks a continuity event as resolved.
func ResolveContradictionHandler(c echo.Context) error {
	type resolveData struct {
		ID string `param:"id" validate:"required"`
	}

	type resolveResponse struct {
		Message string `json:"message"`
	}

	data := new(resolveData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, resolveResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, resolveResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, resolveResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	st := constorage.NewContinuityDBStorageWithConnection(conn)

	// Only the owner's unresolved events are resolvable through this route;
	// foreign event IDs look absent rather than forbidden.
	events, err := st.ListUnresolvedEvents(ctx, user.UserID, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, resolveResponse{Message: "Internal server error"})
	}
	owned := false
	for _, event := range events {
		if event.ID == data.ID {
			owned = true
			break
		}
	}
	if !owned && !middleware.IsAdmin(user) {
		return c.JSON(http.StatusNotFound, resolveResponse{Message: "Event not found"})
	}

	if err := st.ResolveEvent(ctx, data.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, resolveResponse{Message: "Event not found"})
		}
		return c.JSON(http.StatusInternalServerError, resolveResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, resolveResponse{Message: "Event resolved"})
}

// SuggestResolutionHandler asks the model for a short suggestion on how the
// contradiction could be reconciled, grounded in the involved components.
func SuggestResolutionHandler(c echo.Context) error {
	type suggestData struct {
		ID string `param:"id" validate:"required"`
	}

	type suggestResponse struct {
		Message    string `json:"message"`
		Suggestion string `json:"suggestion,omitempty"`
	}

	data := new(suggestData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, suggestResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, suggestResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, suggestResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	st := constorage.NewContinuityDBStorageWithConnection(app.DBConn)

	events, err := st.ListUnresolvedEvents(ctx, user.UserID, "")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, suggestResponse{Message: "Internal server error"})
	}

	var event *common.ContinuityEvent
	for i := range events {
		if events[i].ID == data.ID {
			event = &events[i]
			break
		}
	}
	if event == nil {
		return c.JSON(http.StatusNotFound, suggestResponse{Message: "Event not found"})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Contradiction: %s\n", event.Description)
	for _, componentID := range event.SourceComponents {
		comp, err := st.GetComponent(ctx, componentID)
		if err != nil {
			logger.Warn("[Routes][Suggestion] Failed to load component", "component_id", componentID, "err", err)
			continue
		}
		fmt.Fprintf(&sb, "Entry component (%s): %s\n", componentID, comp.Text)
	}

	suggestion, err := app.AiClient.GenerateCompletion(
		ctx,
		sb.String(),
		ai.WithSystemPrompts(ai.ResolutionSuggestionPrompt),
		ai.WithTemperature(0.4),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, suggestResponse{Message: "Failed to generate suggestion"})
	}

	return c.JSON(http.StatusOK, suggestResponse{
		Message:    "Suggestion generated",
		Suggestion: strings.TrimSpace(suggestion),
	})
}
