package http

import (
	"net/http"

	"chama-ledger/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type createLoanReq struct {
	MemberID     string   `json:"member_id"     validate:"required,max=64"`
	Principal    int64    `json:"principal"     validate:"gt=0"`
	InterestRate float64  `json:"interest_rate" validate:"gte=0,lte=100,dec2"`
	TermMonths   int      `json:"term_months"   validate:"gte=1,lte=360"`
	Purpose      string   `json:"purpose"       validate:"max=255"`
	Guarantors   []string `json:"guarantors"    validate:"max=10,dive,required,max=64"`
}

type repaymentReq struct {
	Amount    int64  `json:"amount"    validate:"gt=0"`
	Method    string `json:"method"    validate:"required,max=32"`
	Reference string `json:"reference" validate:"max=64"`
}

// loanID reads and checks the :loan_id path param, writing the rejection itself.
func loanID(c echo.Context) (string, bool, error) {
	id := c.Param("loan_id")
	if id == "" {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing loan_id path param"})
	}
	if !validLoanID(id) {
		return "", false, c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid loan_id"})
	}
	return id, true, nil
}

func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req createLoanReq
	if code, er := bindAndValidate(c, &req); er != nil {
		return c.JSON(code, er)
	}
	dto, err := h.uc.Create(c.Request().Context(), loan.CreateLoanInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	id, ok, err := loanID(c)
	if !ok {
		return err
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetSchedule(c echo.Context) error {
	id, ok, err := loanID(c)
	if !ok {
		return err
	}
	dto, err := h.uc.Schedule(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) ListByMember(c echo.Context) error {
	list, err := h.uc.ListByMember(c.Request().Context(), c.Param("member_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"loans": list})
}

func (h *LoanHandler) Disburse(c echo.Context) error {
	id, ok, err := loanID(c)
	if !ok {
		return err
	}
	dto, err := h.uc.Disburse(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) RecordRepayment(c echo.Context) error {
	id, ok, err := loanID(c)
	if !ok {
		return err
	}
	var req repaymentReq
	if code, er := bindAndValidate(c, &req); er != nil {
		return c.JSON(code, er)
	}
	dto, err := h.uc.RecordRepayment(c.Request().Context(), loan.RepaymentInput{
		LoanID:     id,
		Amount:     req.Amount,
		Method:     req.Method,
		Reference:  req.Reference,
		RecordedBy: actorID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) MarkDefaulted(c echo.Context) error {
	id, ok, err := loanID(c)
	if !ok {
		return err
	}
	dto, err := h.uc.MarkDefaulted(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
