package profile

import (
	"sync"

	"github.com/example/safi-bank/internal/requests"
)

// KYCStatus is the identity verification state of a customer.
type KYCStatus string

const (
	KYCVerified   KYCStatus = "verified"
	KYCPending    KYCStatus = "pending"
	KYCUnverified KYCStatus = "unverified"
)

// Editable field names.
const (
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldAddress          = "address"
	FieldEmploymentStatus = "employmentStatus"
)

// UpdateDetails is the text of the request raised by every profile update.
const UpdateDetails = "Customer updated personal contact details."

// EditableFields lists the fields Update may change.
func EditableFields() []string {
	return []string{FieldEmail, FieldPhone, FieldAddress, FieldEmploymentStatus}
}

// User is the customer identity shown in the profile.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	AccountNumber    string    `json:"account_number"`
	Avatar           string    `json:"avatar"`
	Email            string    `json:"email"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	EmploymentStatus string    `json:"employment_status"`
	KYCStatus        KYCStatus `json:"kyc_status"`
}

// Enqueuer accepts the change request raised by an update.
type Enqueuer interface {
	Enqueue(r requests.Request) requests.Request
}

// Profile guards a User. Name, account number, avatar and KYC status are
// read-only.
type Profile struct {
	mu    sync.RWMutex
	user  User
	queue Enqueuer
}

// New wraps u, sending change requests to queue.
func New(u User, queue Enqueuer) *Profile {
	return &Profile{user: u, queue: queue}
}

// User returns a copy of the profile.
func (p *Profile) User() User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.user
}

// Update merges the editable fields present in fields and ignores the
// rest. Values are not format-checked. Exactly one kyc_update request is
// enqueued per call, even when nothing was applied.
func (p *Profile) Update(fields map[string]string) (map[string]string, requests.Request) {
	applied := make(map[string]string)

	p.mu.Lock()
	for name, value := range fields {
		switch name {
		case FieldEmail:
			p.user.Email = value
		case FieldPhone:
			p.user.Phone = value
		case FieldAddress:
			p.user.Address = value
		case FieldEmploymentStatus:
			p.user.EmploymentStatus = value
		default:
			continue
		}
		applied[name] = value
	}
	u := p.user
	p.mu.Unlock()

	r := p.queue.Enqueue(requests.Request{
		UserID:   u.ID,
		UserName: u.Name,
		Type:     requests.TypeKYCUpdate,
		Details:  UpdateDetails,
	})
	return applied, r
}
