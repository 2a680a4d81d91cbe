package routes

import (
	"errors"
	"net/http"

	"github.com/abelxmendoza/Lore-Keeper-sub001/internal/server/middleware"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/common"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/fact"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store"
	constorage "github.com/abelxmendoza/Lore-Keeper-sub001/pkg/store/pgx"
	"github.com/abelxmendoza/Lore-Keeper-sub001/pkg/verify"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// VerifyEntryHandler checks one entry against the owner's history and
// persists the result.
func VerifyEntryHandler(c echo.Context) error {
	type verifyEntryData struct {
		ID string `param:"id" validate:"required"`
	}

	type verifyEntryResponse struct {
		Message string                     `json:"message"`
		Result  *common.VerificationResult `json:"result,omitempty"`
	}

	data := new(verifyEntryData)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, verifyEntryResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, verifyEntryResponse{
			Message: "Invalid request params",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, verifyEntryResponse{Message: "Unauthorized"})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	st := constorage.NewContinuityDBStorageWithConnection(app.DBConn)

	entry, err := st.GetEntry(ctx, data.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, verifyEntryResponse{Message: "Entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, verifyEntryResponse{Message: "Internal server error"})
	}
	if !middleware.IsOwner(user, entry.OwnerID) {
		return c.JSON(http.StatusForbidden, verifyEntryResponse{Message: "Forbidden"})
	}

	verifier := verify.NewVerifier(
		st,
		fact.NewCachingExtractor(fact.NewRuleExtractor(), fact.NewLLMExtractor(app.AiClient)),
		fact.NewComparer(),
	)

	result, err := verifier.VerifyEntry(ctx, data.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, verifyEntryResponse{Message: "Entry not found"})
		}
		return c.JSON(http.StatusInternalServerError, verifyEntryResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, verifyEntryResponse{
		Message: "Entry verified",
		Result:  &result,
	})
}

// VerifyClaimHandler checks a single caller-supplied claim against the
// owner's stored claim history.
func VerifyClaimHandler(c echo.Context) error {
	type verifyClaimBody struct {
		Subject    string  `json:"subject" validate:"required"`
		Attribute  string  `json:"attribute" validate:"required"`
		Value      string  `json:"value" validate:"required"`
		ClaimType  string  `json:"claim_type"`
		Context    string  `json:"context"`
		EntryID    string  `json:"entry_id"`
		Confidence float64 `json:"confidence"`
	}

	type verifyClaimResponse struct {
		Message string                  `json:"message"`
		Detail  *common.FactCheckDetail `json:"detail,omitempty"`
	}

	data := new(verifyClaimBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, verifyClaimResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, verifyClaimResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, verifyClaimResponse{Message: "Unauthorized"})
	}

	claimType := common.ClaimType(data.ClaimType)
	if claimType == "" {
		claimType = common.ClaimTypeOther
	}

	claim := common.FactClaim{
		EntryID:    data.EntryID,
		ClaimType:  claimType,
		Subject:    data.Subject,
		Attribute:  data.Attribute,
		Value:      data.Value,
		Confidence: data.Confidence,
		Context:    data.Context,
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App
	st := constorage.NewContinuityDBStorageWithConnection(app.DBConn)
	verifier := verify.NewVerifier(
		st,
		fact.NewCachingExtractor(fact.NewRuleExtractor(), fact.NewLLMExtractor(app.AiClient)),
		fact.NewComparer(),
	)

	detail, err := verifier.VerifyClaim(ctx, user.UserID, claim)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, verifyClaimResponse{Message: "Internal server error"})
	}

	return c.JSON(http.StatusOK, verifyClaimResponse{
		Message: "Claim verified",
		Detail:  &detail,
	})
}
