package routes

import (
	"net/http"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/middleware"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	constorage "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store/pgx"

	"github.com/labstack/echo/v4"
)

// GetContradictionsHandler lists the caller's unresolved contradiction events.
func GetContradictionsHandler(c echo.Context) error {
	type getContradictionsResponse struct {
		Message string                   `json:"message"`
		Events  []common.ContinuityEvent `json:"events"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getContradictionsResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	st := constorage.NewContinuityDBStorageWithConnection(conn)

	events, err := st.ListUnresolvedEvents(ctx, user.UserID, common.EventContradiction)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, getContradictionsResponse{Message: "Internal server error"})
	}
	if events == nil {
		events = []common.ContinuityEvent{}
	}

	return c.JSON(http.StatusOK, getContradictionsResponse{
		Message: "Unresolved contradictions",
		Events:  events,
	})
}
