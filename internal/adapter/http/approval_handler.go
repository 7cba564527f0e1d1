package http

import (
	"net/http"

	"chama-ledger/internal/usecase/approval"

	"github.com/labstack/echo/v4"
)

type ApprovalHandler struct{ uc *approval.Usecase }

func NewApprovalHandler(uc *approval.Usecase) *ApprovalHandler { return &ApprovalHandler{uc: uc} }

// approver_id defaults to the Ax-Actor-Id of the caller.
type approveLoanReq struct {
	ApproverID string `json:"approver_id" validate:"max=64"`
}

type rejectLoanReq struct {
	ApproverID string `json:"approver_id" validate:"max=64"`
	Reason     string `json:"reason"      validate:"required,max=500"`
}

func approverOr(c echo.Context, id string) string {
	if id != "" {
		return id
	}
	return actorID(c)
}

func (h *ApprovalHandler) ApproveLoan(c echo.Context) error {
	id, ok, err := loanID(c)
	if !ok {
		return err
	}
	var req approveLoanReq
	if code, er := bindAndValidate(c, &req); er != nil {
		return c.JSON(code, er)
	}
	dto, err := h.uc.Approve(c.Request().Context(), approval.ApproveInput{
		LoanID:     id,
		ApproverID: approverOr(c, req.ApproverID),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) RejectLoan(c echo.Context) error {
	id, ok, err := loanID(c)
	if !ok {
		return err
	}
	var req rejectLoanReq
	if code, er := bindAndValidate(c, &req); er != nil {
		return c.JSON(code, er)
	}
	dto, err := h.uc.Reject(c.Request().Context(), approval.RejectInput{
		LoanID:     id,
		ApproverID: approverOr(c, req.ApproverID),
		Reason:     req.Reason,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ApprovalHandler) GetDecision(c echo.Context) error {
	id, ok, err := loanID(c)
	if !ok {
		return err
	}
	dto, err := h.uc.GetDecision(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
