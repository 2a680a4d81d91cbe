package routes

import (
	"net/http"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/middleware"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/drift"
	constorage "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store/pgx"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// GetDriftReportHandler summarizes the owner's open continuity events into a
// single health score with correction suggestions.
func GetDriftReportHandler(c echo.Context) error {
	type reportData struct {
		OwnerID string `param:"owner_id" validate:"required"`
	}

	type reportResponse struct {
		Message string                  `json:"message"`
		Report  *drift.ContinuityReport `json:"report,omitempty"`
	}

	data := new(reportData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, reportResponse{Message: "Invalid request params"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, reportResponse{Message: "Invalid request params"})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, reportResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	st := constorage.NewContinuityDBStorageWithConnection(app.DBConn)
	detector := drift.NewDetector(st, app.AiClient)

	report, err := detector.Report(ctx, data.OwnerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, reportResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, reportResponse{
		Message: "Continuity report",
		Report:  &report,
	})
}
