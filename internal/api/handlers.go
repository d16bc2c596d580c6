package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/safi-bank/internal/assistant"
	"github.com/example/safi-bank/internal/ledger"
	"github.com/example/safi-bank/internal/profile"
	"github.com/example/safi-bank/internal/requests"
	"github.com/example/safi-bank/internal/security"
	"github.com/example/safi-bank/internal/statement"
	"github.com/example/safi-bank/internal/transfer"
)

const defaultRecent = 5

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
		return false
	}
	return true
}

func handleLogin(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := deps.Session.Login()
		if err != nil {
			deps.Logger.Error("login failed", "cid", security.CorrelationIDFromContext(r.Context()), "error", err)
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, toSessionView(snap))
	}
}

func handleLogout(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps.Session.Logout()
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleSession(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, toSessionView(deps.Session.Snapshot()))
	}
}

func handleSummary(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recent := defaultRecent
		if v := r.URL.Query().Get("recent"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				security.WriteJSONError(w, r, http.StatusBadRequest, "validation_error")
				return
			}
			recent = n
		}

		s, err := deps.Session.Summary(recent)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, summaryView{
			Balance: s.Balance.StringFixed(2),
			Income:  s.Income.StringFixed(2),
			Expense: s.Expense.StringFixed(2),
			Recent:  toTransactionViews(s.Recent),
		})
	}
}

func handleTransactions(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		flow, ok := ledger.ParseFlow(q.Get("flow"))
		if !ok {
			security.WriteJSONErrorMessage(w, r, http.StatusBadRequest, "validation_error", "flow must be all, income or expense")
			return
		}

		txs, err := deps.Session.History(ledger.Filter{Flow: flow, Search: q.Get("q")})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"transactions": toTransactionViews(txs)})
	}
}

// handleExport streams the filtered history as an XLSX statement.
func handleExport(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		flow, ok := ledger.ParseFlow(q.Get("flow"))
		if !ok {
			security.WriteJSONErrorMessage(w, r, http.StatusBadRequest, "validation_error", "flow must be all, income or expense")
			return
		}

		holder, balance, txs, err := deps.Session.Statement(ledger.Filter{Flow: flow, Search: q.Get("q")})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}

		s := statement.Statement{
			Holder:      holder.Name,
			Account:     holder.AccountNumber,
			GeneratedAt: time.Now(),
			Balance:     balance,
			Rows:        txs,
		}
		w.Header().Set("Content-Type", statement.ContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+s.Filename()+`"`)
		if err := statement.WriteXLSX(w, s); err != nil {
			deps.Logger.Error("statement export failed", "cid", security.CorrelationIDFromContext(r.Context()), "error", err)
		}
	}
}

type entryRequest struct {
	Amount      amount `json:"amount"`
	Description string `json:"description"`
}

func handleDeposit(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if !decode(w, r, &req) {
			return
		}
		amt, err := ledger.ParseAmount(string(req.Amount))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		op, err := deps.Session.Deposit(amt, req.Description)
		writeOperation(deps, w, r, op, err)
	}
}

func handleWithdraw(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req entryRequest
		if !decode(w, r, &req) {
			return
		}
		amt, err := ledger.ParseAmount(string(req.Amount))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		op, err := deps.Session.Withdraw(amt, req.Description)
		writeOperation(deps, w, r, op, err)
	}
}

type transferRequest struct {
	Amount      amount `json:"amount"`
	Recipient   string `json:"recipient"`
	Account     string `json:"account"`
	Description string `json:"description"`
}

func handleTransfer(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferRequest
		if !decode(w, r, &req) {
			return
		}
		amt, err := ledger.ParseAmount(string(req.Amount))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		op, err := deps.Session.Transfer(amt, req.Recipient, req.Account, req.Description)
		writeOperation(deps, w, r, op, err)
	}
}

// writeOperation waits for op to settle within the request lifetime. A
// client that goes away leaves the operation running.
func writeOperation(deps Dependencies, w http.ResponseWriter, r *http.Request, op *ledger.Operation, err error) {
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	tx, err := op.Wait(r.Context())
	if err != nil {
		if errors.Is(err, r.Context().Err()) {
			deps.Logger.Warn("client left before commit", "cid", security.CorrelationIDFromContext(r.Context()))
			security.WriteJSONError(w, r, http.StatusServiceUnavailable, "request_cancelled")
			return
		}
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toTransactionView(tx))
}

func handleReviewTransfer(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req transferRequest
		if !decode(w, r, &req) {
			return
		}
		res, err := deps.Session.ReviewTransfer(transfer.Input{
			Amount:      string(req.Amount),
			Recipient:   req.Recipient,
			Account:     req.Account,
			Description: req.Description,
		})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		if !res.IsValid {
			security.WriteJSONErrorMessage(w, r, http.StatusUnprocessableEntity, string(res.Rule), res.Message)
			return
		}
		writeJSON(w, r, http.StatusOK, transferView{
			State:       transfer.StateConfirming,
			Description: transfer.StateDescription(transfer.StateConfirming),
			Draft:       toDraftView(res.Draft),
		})
	}
}

func handleConfirmTransfer(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		op, err := deps.Session.ConfirmTransfer()
		writeOperation(deps, w, r, op, err)
	}
}

func handleBackTransfer(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Session.BackTransfer(); err != nil {
			writeDomainError(w, r, err)
			return
		}
		snap := deps.Session.Snapshot()
		writeJSON(w, r, http.StatusOK, transferView{
			State:       snap.TransferState,
			Description: transfer.StateDescription(snap.TransferState),
			Draft:       toDraftView(snap.TransferDraft),
		})
	}
}

func handleGetProfile(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := deps.Session.Profile()
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{
			"profile":         u,
			"editable_fields": profile.EditableFields(),
		})
	}
}

func handleUpdateProfile(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields map[string]string
		if !decode(w, r, &fields) {
			return
		}
		applied, req, err := deps.Session.UpdateProfile(fields)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		u, err := deps.Session.Profile()
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{
			"profile": u,
			"applied": applied,
			"request": req,
		})
	}
}

func handleListRequests(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status requests.Status
		if v := r.URL.Query().Get("status"); v != "" {
			s, ok := requests.ParseStatus(v)
			if !ok {
				security.WriteJSONErrorMessage(w, r, http.StatusBadRequest, "validation_error", "status must be pending, approved or rejected")
				return
			}
			status = s
		}

		list, err := deps.Session.Requests(status)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"requests": toRequestViews(list)})
	}
}

func handleApproveRequest(deps Dependencies) http.HandlerFunc {
	return handleDecide(deps, deps.Session.ApproveRequest)
}

func handleRejectRequest(deps Dependencies) http.HandlerFunc {
	return handleDecide(deps, deps.Session.RejectRequest)
}

// handleDecide applies a decision and reports whether it moved the request.
// Deciding an already decided request is not an error.
func handleDecide(deps Dependencies, decide func(id string) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		changed, err := decide(id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		req, err := deps.Session.Request(id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"request": toRequestView(req), "changed": changed})
	}
}

func handleCards(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := deps.Session.Cards()
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]any{"cards": toCardViews(list)})
	}
}

type assistantRequest struct {
	Prompt string `json:"prompt"`
}

func handleAssistant(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assistantRequest
		if !decode(w, r, &req) {
			return
		}
		reply, err := deps.Session.Ask(r.Context(), req.Prompt)
		switch {
		case errors.Is(err, assistant.ErrAssistantUnavailable):
			security.WriteJSONErrorMessage(w, r, http.StatusServiceUnavailable, "assistant_unavailable", reply)
		case err != nil:
			writeDomainError(w, r, err)
		default:
			writeJSON(w, r, http.StatusOK, map[string]string{"reply": reply})
		}
	}
}
