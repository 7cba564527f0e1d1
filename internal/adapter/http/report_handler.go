package http

import (
	"net/http"
	"strconv"

	"chama-ledger/internal/usecase/reminder"
	"chama-ledger/internal/usecase/report"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct{ uc *report.Usecase }

func NewReportHandler(uc *report.Usecase) *ReportHandler { return &ReportHandler{uc: uc} }

// LoanSummary serves GET /reports/loans?member_id=&from=&to= (dates YYYY-MM-DD, to exclusive).
func (h *ReportHandler) LoanSummary(c echo.Context) error {
	from, ok := queryDate(c, "from")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from must be YYYY-MM-DD"})
	}
	to, ok := queryDate(c, "to")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "to must be YYYY-MM-DD"})
	}
	s, err := h.uc.Summary(c.Request().Context(), report.SummaryInput{
		MemberID: c.QueryParam("member_id"),
		From:     from,
		To:       to,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

type NotificationHandler struct{ uc *reminder.Usecase }

func NewNotificationHandler(uc *reminder.Usecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func (h *NotificationHandler) ListByMember(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
		}
		limit = n
	}
	list, err := h.uc.Recent(c.Request().Context(), c.Param("member_id"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": list})
}
