package routes

import (
	"net/http"
	"time"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/middleware"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/drift"
	constorage "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// ScanDriftHandler runs the contradiction, identity and emotional-arc
// detectors over an owner's components and persists the resulting events.
func ScanDriftHandler(c echo.Context) error {
	type scanDriftData struct {
		OwnerID          string `param:"owner_id" validate:"required"`
		RecentWindowDays int    `query:"recent_window_days"`
	}

	type scanDriftResponse struct {
		Message string                   `json:"message"`
		Events  []common.ContinuityEvent `json:"events"`
	}

	data := new(scanDriftData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, scanDriftResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, scanDriftResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, scanDriftResponse{Message: "Unauthorized"})
	}

	window := drift.DefaultRecentWindow
	if data.RecentWindowDays > 0 {
		window = time.Duration(data.RecentWindowDays) * 24 * time.Hour
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	st := constorage.NewContinuityDBStorageWithConnection(app.DBConn)
	detector := drift.NewDetector(st, app.AiClient)

	events, err := detector.Scan(ctx, data.OwnerID, time.Now(), window)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, scanDriftResponse{Message: "Internal server error"})
	}
	if events == nil {
		events = []common.ContinuityEvent{}
	}

	return c.JSON(http.StatusOK, scanDriftResponse{
		Message: "Drift scan complete",
		Events:  events,
	})
}
