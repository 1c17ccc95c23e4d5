// Package http exposes the JSON API: expense and budget management, the
// budget-vs-actual summary report, the cached dashboard and invitations.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/cache"
	"bilancio/internal/core"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/report"
)

// ExpenseService is what the expense handlers need.
type ExpenseService interface {
	CreateExpense(ctx context.Context, e core.Expense) (string, error)
	ListExpenses(ctx context.Context, ownerID string, window *core.DateRange) ([]core.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, id string) error
}

// BudgetStore is what the budget handlers need.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) (string, error)
	ListBudgets(ctx context.Context, ownerID string) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) error
	DeleteBudget(ctx context.Context, ownerID, id string) error
}

// ReportGenerator produces the summary report.
type ReportGenerator interface {
	Summary(ctx context.Context, ownerID, startDate, endDate string) (*report.Result, error)
}

// SnapshotReader supplies the worker-maintained month totals for the
// dashboard.
type SnapshotReader interface {
	ListMonthSnapshots(ctx context.Context, ownerID string) ([]report.MonthAmount, error)
}

// InviteService is what the invitation handlers need.
type InviteService interface {
	Invite(ctx context.Context, ownerID, email string) (core.Invitation, error)
	List(ctx context.Context, ownerID string) ([]core.Invitation, error)
	Accept(ctx context.Context, token string) error
}

// Options tunes the server-owned middleware and cache.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	DashboardCacheSize int
	DashboardCacheTTL  time.Duration
}

type Server struct {
	http.Server

	auth      Authenticator
	expenses  ExpenseService
	budgets   BudgetStore
	reports   ReportGenerator
	snapshots SnapshotReader
	invites   InviteService

	limiter   *ratelimit.Limiter
	dashCache *cache.LRUCache[DashboardView]

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options, auth Authenticator, expenses ExpenseService, budgets BudgetStore, reports ReportGenerator, snapshots SnapshotReader, invites InviteService) *Server {
	if opts.DashboardCacheSize <= 0 {
		opts.DashboardCacheSize = 256
	}
	if opts.DashboardCacheTTL <= 0 {
		opts.DashboardCacheTTL = time.Minute
	}

	s := &Server{
		auth:      auth,
		expenses:  expenses,
		budgets:   budgets,
		reports:   reports,
		snapshots: snapshots,
		invites:   invites,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
		}),
		dashCache: cache.NewLRUCache[DashboardView](opts.DashboardCacheSize, opts.DashboardCacheTTL),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/expenses", s.requireOwner(s.handleExpenses))
	mux.HandleFunc("/expenses/delete", s.requireOwner(s.handleDeleteExpense))
	mux.HandleFunc("/budgets", s.requireOwner(s.handleBudgets))
	mux.HandleFunc("/budgets/update", s.requireOwner(s.handleUpdateBudget))
	mux.HandleFunc("/budgets/delete", s.requireOwner(s.handleDeleteBudget))
	mux.HandleFunc("/reports/summary", s.requireOwner(s.handleReportSummary))
	mux.HandleFunc("/dashboard", s.requireOwner(s.handleDashboard))
	mux.HandleFunc("/invitations", s.requireOwner(s.handleInvitations))
	// Accepting needs only the token; the invitee has no identity yet.
	mux.HandleFunc("/invitations/accept", s.handleAcceptInvitation)

	tracer := trace.NewMiddleware(clientIP)
	headers := security.Headers(security.DefaultHeadersConfig())
	handler := tracer.Handler(headers(s.rateLimitWrites(mux)))

	s.Server = http.Server{
		Addr:    opts.Addr,
		Handler: handler,
	}

	return s
}

// rateLimitWrites applies the per-IP limit to mutating requests only; reads
// and health probes pass through.
func (s *Server) rateLimitWrites(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && !s.limiter.Allow(clientIP(r)) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP(r),
				"method", r.Method,
				"path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// DashboardCache exposes the view cache so a janitor can clean expired
// entries.
func (s *Server) DashboardCache() *cache.LRUCache[DashboardView] {
	return s.dashCache
}

// Shutdown stops the background goroutines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
