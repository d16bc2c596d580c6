package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/example/safi-bank/internal/assistant"
	"github.com/example/safi-bank/internal/cards"
	"github.com/example/safi-bank/internal/ledger"
	"github.com/example/safi-bank/internal/profile"
	"github.com/example/safi-bank/internal/requests"
	"github.com/example/safi-bank/internal/security"
	"github.com/example/safi-bank/internal/session"
	"github.com/example/safi-bank/internal/transfer"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	cid := security.CorrelationIDFromContext(r.Context())
	if cid != "" {
		w.Header().Set(security.CorrelationIDHeader, cid)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// amount holds a JSON number or string verbatim.
type amount string

func (a *amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*a = amount(n.String())
	return nil
}

var errorMessages = map[string]string{
	"invalid_amount":      "Please enter a valid amount.",
	"insufficient_funds":  "Insufficient funds.",
	"invalid_recipient":   "Please enter a valid recipient and account number (min 8 digits).",
	"missing_description": "Please enter a description.",
}

// writeDomainError maps session and ledger errors to HTTP responses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var opErr *transfer.InvalidOperationError
	switch {
	case errors.Is(err, session.ErrNoSession):
		security.WriteJSONErrorMessage(w, r, http.StatusConflict, "no_session", "Please log in first.")
	case errors.As(err, &opErr):
		security.WriteJSONErrorMessage(w, r, http.StatusConflict, "invalid_state", opErr.Error())
	case errors.Is(err, requests.ErrNotFound):
		security.WriteJSONError(w, r, http.StatusNotFound, "request_not_found")
	default:
		code := ledger.ErrorCode(err)
		if code == "internal_error" {
			security.WriteJSONError(w, r, http.StatusInternalServerError, code)
			return
		}
		security.WriteJSONErrorMessage(w, r, http.StatusUnprocessableEntity, code, errorMessages[code])
	}
}

type transactionView struct {
	ID               string    `json:"id"`
	Type             string    `json:"type"`
	Amount           string    `json:"amount"`
	Date             time.Time `json:"date"`
	Description      string    `json:"description"`
	Recipient        string    `json:"recipient,omitempty"`
	RecipientAccount string    `json:"recipient_account,omitempty"`
	Status           string    `json:"status"`
}

func toTransactionView(tx ledger.Transaction) transactionView {
	return transactionView{
		ID:               tx.ID,
		Type:             string(tx.Kind),
		Amount:           tx.Amount.StringFixed(2),
		Date:             tx.Timestamp,
		Description:      tx.Description,
		Recipient:        tx.Recipient,
		RecipientAccount: tx.RecipientAccount,
		Status:           string(tx.Status),
	}
}

func toTransactionViews(txs []ledger.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionView(tx))
	}
	return out
}

type requestView struct {
	requests.Request
	StatusDescription string `json:"status_description"`
}

func toRequestView(r requests.Request) requestView {
	return requestView{Request: r, StatusDescription: requests.StatusDescription(r.Status)}
}

func toRequestViews(rs []requests.Request) []requestView {
	out := make([]requestView, 0, len(rs))
	for _, r := range rs {
		out = append(out, toRequestView(r))
	}
	return out
}

type cardView struct {
	ID      string `json:"id"`
	Number  string `json:"number"`
	Last4   string `json:"last4"`
	Holder  string `json:"holder"`
	Expiry  string `json:"expiry"`
	Type    string `json:"type"`
	Color   string `json:"color"`
	Balance string `json:"balance"`
}

func toCardViews(vs []cards.View) []cardView {
	out := make([]cardView, 0, len(vs))
	for _, v := range vs {
		out = append(out, cardView{
			ID:      v.ID,
			Number:  v.Number,
			Last4:   v.Last4,
			Holder:  v.Holder,
			Expiry:  v.Expiry,
			Type:    string(v.Network),
			Color:   string(v.Variant),
			Balance: v.Balance.StringFixed(2),
		})
	}
	return out
}

type draftView struct {
	Amount      string `json:"amount"`
	Recipient   string `json:"recipient"`
	Account     string `json:"account"`
	Description string `json:"description"`
}

func toDraftView(d *transfer.Draft) *draftView {
	if d == nil {
		return nil
	}
	return &draftView{
		Amount:      d.Amount.StringFixed(2),
		Recipient:   d.Recipient,
		Account:     d.Account,
		Description: d.Description,
	}
}

type transferView struct {
	State       transfer.State `json:"state"`
	Description string         `json:"state_description"`
	Draft       *draftView     `json:"draft,omitempty"`
}

type summaryView struct {
	Balance string            `json:"balance"`
	Income  string            `json:"income"`
	Expense string            `json:"expense"`
	Recent  []transactionView `json:"recent"`
}

type sessionView struct {
	Active          bool               `json:"active"`
	SessionID       string             `json:"session_id,omitempty"`
	Balance         string             `json:"balance,omitempty"`
	Transactions    []transactionView  `json:"transactions,omitempty"`
	PendingRequests []requestView      `json:"pending_requests,omitempty"`
	Profile         *profile.User      `json:"profile,omitempty"`
	Cards           []cardView         `json:"cards,omitempty"`
	Transfer        *transferView      `json:"transfer,omitempty"`
	Conversation    []assistant.Turn   `json:"conversation,omitempty"`
}

func toSessionView(s session.Snapshot) sessionView {
	if !s.Active {
		return sessionView{}
	}
	u := s.Profile
	return sessionView{
		Active:          true,
		SessionID:       s.SessionID,
		Balance:         s.Balance.StringFixed(2),
		Transactions:    toTransactionViews(s.Transactions),
		PendingRequests: toRequestViews(s.PendingRequests),
		Profile:         &u,
		Cards:           toCardViews(s.Cards),
		Transfer: &transferView{
			State:       s.TransferState,
			Description: transfer.StateDescription(s.TransferState),
			Draft:       toDraftView(s.TransferDraft),
		},
		Conversation: s.Conversation,
	}
}
