package http

import (
	"net/http"
	"time"

	"loan-ledger/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

type approveLoanReq struct {
	// Canonical date `YYYY-MM-DD`; this is the caller's clock (aligns
	// with schema DATE)
	AsOfDate string `json:"as_of_date" validate:"required,datetime=2006-01-02"`
}

func (h *ApprovalHandler) ApproveLoan(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req approveLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	asOf, _ := time.Parse("2006-01-02", req.AsOfDate)

	dto, err := h.uc.Approve(c.Request().Context(), approval.ApproveInput{
		LoanID:   loanID,
		AsOfDate: asOf,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
