package http

import (
	"context"
	stdhttp "net/http"
	"testing"

	domain "chama-ledger/internal/domain/loan"
	"chama-ledger/internal/domain/notification"
)

func TestLoanSummary(t *testing.T) {
	f := newFixture(t)
	a := f.createLoan(t, 10_000)
	f.createLoan(t, 5_000)
	f.do(t, stdhttp.MethodPost, "/loans/"+a.LoanID+"/approve", map[string]any{})
	f.do(t, stdhttp.MethodPost, "/loans/"+a.LoanID+"/disburse", nil)
	f.do(t, stdhttp.MethodPost, "/loans/"+a.LoanID+"/repayments", map[string]any{"amount": 4_000, "method": "cash"})

	rec := f.do(t, stdhttp.MethodGet, "/reports/loans?member_id=M-001", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	s := decode[domain.Summary](t, rec)
	if s.LoanCount != 2 || s.TotalOutstanding != 6_000 || s.TotalRepaidInRange != 4_000 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.CountByStatus[domain.StatusActive] != 1 || s.CountByStatus[domain.StatusPending] != 1 {
		t.Fatalf("counts: %+v", s.CountByStatus)
	}

	// a window in the past holds no repayments
	rec = f.do(t, stdhttp.MethodGet, "/reports/loans?from=2000-01-01&to=2000-02-01", nil)
	if s := decode[domain.Summary](t, rec); rec.Code != stdhttp.StatusOK || s.TotalRepaidInRange != 0 || s.LoanCount != 2 {
		t.Fatalf("ranged: %d %+v", rec.Code, s)
	}
}

func TestLoanSummary_BadQuery(t *testing.T) {
	f := newFixture(t)
	for _, q := range []string{"?from=2025/01/01", "?to=tomorrow"} {
		if rec := f.do(t, stdhttp.MethodGet, "/reports/loans"+q, nil); rec.Code != stdhttp.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", q, rec.Code)
		}
	}
	// inverted range is an invalid argument from the use case
	if rec := f.do(t, stdhttp.MethodGet, "/reports/loans?from=2025-02-01&to=2025-01-01", nil); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("inverted: status = %d, want 400", rec.Code)
	}
}

func TestNotificationsByMember(t *testing.T) {
	f := newFixture(t)
	if rec := f.do(t, stdhttp.MethodGet, "/members/M-001/notifications?limit=abc", nil); rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("bad limit: status = %d", rec.Code)
	}

	_ = f.store.Notifications.Create(context.Background(), &notification.Notification{
		NotificationID: "n1", EventID: "e1", MemberID: "M-001", Type: notification.TypeLoanUpdate,
		Title: "Loan approved", Message: "ok", Status: notification.StatusPending,
	})
	rec := f.do(t, stdhttp.MethodGet, "/members/M-001/notifications?limit=5", nil)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[struct {
		Notifications []notification.Notification `json:"notifications"`
	}](t, rec)
	if len(body.Notifications) != 1 || body.Notifications[0].NotificationID != "n1" {
		t.Fatalf("unexpected body: %+v", body)
	}
}
