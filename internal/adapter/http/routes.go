package http

import (
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health        *Handler
	Loans         *LoanHandler
	Approvals     *ApprovalHandler
	Reports       *ReportHandler
	Notifications *NotificationHandler
}

// Register mounts every route. mutating wraps the POST routes (idempotency).
func Register(e *echo.Echo, h Handlers, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	e.GET("/loans/:loan_id", h.Loans.GetLoan)
	e.GET("/loans/:loan_id/schedule", h.Loans.GetSchedule)
	e.GET("/loans/:loan_id/decision", h.Approvals.GetDecision)
	e.GET("/members/:member_id/loans", h.Loans.ListByMember)
	e.GET("/members/:member_id/notifications", h.Notifications.ListByMember)
	e.GET("/reports/loans", h.Reports.LoanSummary)

	e.POST("/loans", h.Loans.CreateLoan, mutating...)
	e.POST("/loans/:loan_id/approve", h.Approvals.ApproveLoan, mutating...)
	e.POST("/loans/:loan_id/reject", h.Approvals.RejectLoan, mutating...)
	e.POST("/loans/:loan_id/disburse", h.Loans.Disburse, mutating...)
	e.POST("/loans/:loan_id/repayments", h.Loans.RecordRepayment, mutating...)
	e.POST("/loans/:loan_id/default", h.Loans.MarkDefaulted, mutating...)
}
