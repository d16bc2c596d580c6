package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/example/safi-bank/internal/metrics"
	"github.com/example/safi-bank/internal/security"
	"github.com/example/safi-bank/internal/session"
	"github.com/example/safi-bank/pkg/audit"
)

// Auditor records one event per mutating request.
type Auditor interface {
	Record(event string, kv ...any) *audit.LogEntry
}

type Dependencies struct {
	Logger  *slog.Logger
	Session *session.Controller
	Metrics *metrics.Metrics

	Auditor      Auditor
	RateLimiter  *security.RedisTokenBucket
	IPAllowlist  security.Allowlist
	MaxBodyBytes int64
}

func NewRouter(deps Dependencies) (http.Handler, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	validators := map[string]*security.JSONSchemaValidator{}
	for name, schema := range map[string]string{
		"deposit":   depositSchema,
		"withdraw":  withdrawSchema,
		"transfer":  transferSchema,
		"review":    reviewSchema,
		"profile":   profileSchema,
		"assistant": assistantSchema,
	} {
		v, err := security.NewJSONSchemaValidator(name+".json", schema)
		if err != nil {
			return nil, err
		}
		validators[name] = v
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(security.CorrelationID)
	r.Use(RequestLogger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}
	r.Use(security.BodySizeLimit(deps.MaxBodyBytes))
	r.Use(security.IPAllowlist(deps.IPAllowlist))
	if deps.RateLimiter != nil {
		r.Use(security.RateLimitMiddleware(deps.RateLimiter, security.KeyByIP))
	}
	if deps.Auditor != nil {
		r.Use(AuditMiddleware(deps.Auditor))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", handleSession(deps))
			r.Post("/login", handleLogin(deps))
			r.Post("/logout", handleLogout(deps))
		})

		r.Get("/summary", handleSummary(deps))
		r.Get("/transactions", handleTransactions(deps))
		r.Get("/transactions/export", handleExport(deps))
		r.With(validators["deposit"].Middleware).Post("/deposits", handleDeposit(deps))
		r.With(validators["withdraw"].Middleware).Post("/withdrawals", handleWithdraw(deps))

		r.Route("/transfers", func(r chi.Router) {
			r.With(validators["transfer"].Middleware).Post("/", handleTransfer(deps))
			r.With(validators["review"].Middleware).Post("/review", handleReviewTransfer(deps))
			r.Post("/confirm", handleConfirmTransfer(deps))
			r.Post("/back", handleBackTransfer(deps))
		})

		r.Get("/profile", handleGetProfile(deps))
		r.With(validators["profile"].Middleware).Patch("/profile", handleUpdateProfile(deps))

		r.Route("/admin/requests", func(r chi.Router) {
			r.Get("/", handleListRequests(deps))
			r.Post("/{id}/approve", handleApproveRequest(deps))
			r.Post("/{id}/reject", handleRejectRequest(deps))
		})

		r.Get("/cards", handleCards(deps))
		r.With(validators["assistant"].Middleware).Post("/assistant", handleAssistant(deps))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		security.WriteJSONError(w, r, http.StatusMethodNotAllowed, "method_not_allowed")
	})

	return r, nil
}
