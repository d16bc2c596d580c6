package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrAssistantUnavailable reports that no answer could be produced.
var ErrAssistantUnavailable = errors.New("assistant unavailable")

// ErrMissingKey is the unavailability reported when no API key is set.
var ErrMissingKey = fmt.Errorf("%w: api key missing", ErrAssistantUnavailable)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// Fixed replies shown to the customer.
const (
	Apology           = "I apologize, but I am currently experiencing a temporary connection issue. Please try again later."
	MissingKeyMessage = "I'm sorry, but I can't connect to the secure banking server right now (API Key missing)."
)

// SystemInstruction frames every conversation.
const SystemInstruction = `You are Safi, the AI Financial Assistant for International Bank Safi.
Your role is to provide helpful, professional, and concise financial advice, explain banking terms, and assist users with understanding their (simulated) financial health.

You are polite, trustworthy, and knowledgeable about global finance.
You can help users find features in the app:
- Dashboard: Overview of finances.
- Statements: Search transaction history.
- Transfer: Send money to friends/family.
- Cards: Manage cards.
- My Profile: Update personal information like address, phone, or employment status.
- Employee Portal (Admin): A restricted area for bank staff to approve requests and manage client data.

If asked about specific account details, remind the user you are a demo assistant but can offer general advice.
Keep answers under 150 words unless asked for a detailed report.`

// Role identifies the speaker of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Completer produces the next model reply for prompt given the prior turns.
type Completer interface {
	Complete(ctx context.Context, prompt string, history []Turn) (string, error)
}

// Greeting is the opening model turn of a conversation.
func Greeting(balance decimal.Decimal) string {
	return fmt.Sprintf("Hello! I am Safi, your International Bank Safi AI assistant. "+
		"I can help you with financial advice, investment terms, or general banking questions. "+
		"Your current balance is $%s. How can I help you today?", formatMoney(balance))
}

// formatMoney renders an amount with thousands separators, e.g. 14,850.75.
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if s[0] == '-' {
		sign, s = "-", s[1:]
	}
	whole, frac := s[:len(s)-3], s[len(s)-3:]
	var out []byte
	for i := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, whole[i])
	}
	return sign + string(out) + frac
}

// Unavailable is a Completer that always fails. It stands in when no API key
// is configured.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, string, []Turn) (string, error) {
	return "", ErrMissingKey
}

// FailureReply is the text shown to the customer in place of an answer.
func FailureReply(err error) string {
	if errors.Is(err, ErrMissingKey) {
		return MissingKeyMessage
	}
	return Apology
}
