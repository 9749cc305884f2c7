package authclient

import (
	"bytes"
	"encoding/json"
	"time"
)

// UserID is the server-assigned user identifier. The backend has emitted both
// string and numeric ids over time, so decoding accepts either and always
// serializes back as a string.
type UserID string

func (id UserID) String() string { return string(id) }

// UnmarshalJSON accepts `"1"`, `1`, and `null`.
func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

// User is the client's record of the authenticated user as last reported by
// the server. It is replaced wholesale on every successful fetch; Patch is the
// only sanctioned partial update.
type User struct {
	ID          UserID     `json:"id"`
	Username    string     `json:"username,omitempty"`
	Role        UserRole   `json:"role,omitempty"`
	IsApproved  bool       `json:"is_approved"`
	IsActive    bool       `json:"is_active"`
	FullName    string     `json:"full_name,omitempty"`
	Email       string     `json:"email,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
}

// Clone returns a copy so callers can hand the record to subscribers without
// sharing mutable state.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		cp.CreatedAt = &t
	}
	return &cp
}

// UserPatch carries the fields a profile edit may reconcile locally. Nil
// fields are left untouched.
type UserPatch struct {
	Username    *string
	FullName    *string
	Email       *string
	PhoneNumber *string
}

func (p UserPatch) apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
}

// PaymentStatus values reported for reminders.
type PaymentStatus = string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// Reminder is a payment reminder record owned by the backend. The client
// renders and forwards these; all business rules stay server-side.
type Reminder struct {
	ID             UserID        `json:"id"`
	CustomerName   string        `json:"customer_name"`
	CustomerPhone  string        `json:"customer_phone"`
	Amount         float64       `json:"amount"`
	DueDate        string        `json:"due_date"`
	Notes          string        `json:"notes,omitempty"`
	PaymentStatus  PaymentStatus `json:"payment_status,omitempty"`
	ReminderCount  int           `json:"reminder_count,omitempty"`
	LastRemindedAt *time.Time    `json:"last_reminded_at,omitempty"`
}
