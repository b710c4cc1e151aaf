package http

import (
	"net/http"

	"registrar-workflow/internal/adapter/middleware"
	claimUC "registrar-workflow/internal/usecase/claim"

	"github.com/labstack/echo/v4"
)

type ClaimHandler struct{ uc *claimUC.Usecase }

func NewClaimHandler(uc *claimUC.Usecase) *ClaimHandler { return &ClaimHandler{uc: uc} }

type confirmClaimReq struct {
	Confirmed bool   `json:"confirmed"`
	Notes     string `json:"notes" validate:"max=500"`
}

// ConfirmClaim is called by the requesting student at the pickup window.
func (h *ClaimHandler) ConfirmClaim(c echo.Context) error {
	actor := middleware.ActorID(c)
	if actor == "" {
		return missingActor(c)
	}
	var req confirmClaimReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.ConfirmClaim(c.Request().Context(), claimUC.ClaimInput{
		RequestID:   c.Param("request_id"),
		RequesterID: actor,
		Confirmed:   req.Confirmed,
		Notes:       req.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
