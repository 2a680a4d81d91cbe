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

// GetVerificationHandler returns the persisted verification result for an
// entry without re-running verification.
func GetVerificationHandler(c echo.Context) error {
	type getVerificationData struct {
		ID string `param:"id" validate:"required"`
	}

	type getVerificationResponse struct {
		Message string                     `json:"message"`
		Result  *common.VerificationResult `json:"result,omitempty"`
	}

	data := new(getVerificationData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, getVerificationResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, getVerificationResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, getVerificationResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	st := constorage.NewContinuityDBStorageWithConnection(app.DBConn)

	entry, err := st.GetEntry(ctx, data.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, getVerificationResponse{Message: "Entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, getVerificationResponse{Message: "Internal server error"})
	}
	if !middleware.IsOwner(user, entry.OwnerID) {
		return c.JSON(http.StatusForbidden, getVerificationResponse{Message: "Forbidden"})
	}

	result, err := st.GetVerification(ctx, data.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, getVerificationResponse{Message: "No verification for entry"})
		}
		return c.JSON(http.StatusInternalServerError, getVerificationResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, getVerificationResponse{
		Message: "Verification found",
		Result:  &result,
	})
}
