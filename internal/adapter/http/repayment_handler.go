package http

import (
	"net/http"
	"time"

	"loan-ledger/internal/usecase/repayment"

	"github.com/labstack/echo/v4"
)

type RepaymentHandler struct{ uc *repayment.Usecase }

func NewRepaymentHandler(uc *repayment.Usecase) *RepaymentHandler {
	return &RepaymentHandler{uc: uc}
}

type makeRepaymentReq struct {
	PaymentDate string  `json:"payment_date" validate:"required,datetime=2006-01-02"`
	Amount      float64 `json:"amount"       validate:"required,gt=0,dec2"`
}

func (h *RepaymentHandler) MakeRepayment(c echo.Context) error {
	loanID := c.Param("loan_id")
	if loanID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	var req makeRepaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	paidAt, _ := time.Parse("2006-01-02", req.PaymentDate)

	dto, err := h.uc.MakeRepayment(c.Request().Context(), repayment.MakeRepaymentInput{
		LoanID:      loanID,
		PaymentDate: paidAt,
		Amount:      req.Amount,
	})
	if err != nil {
		return domainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}
