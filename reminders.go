package authclient

import (
	"context"
	"net/http"
)

// ReminderInput is the creation payload for a payment reminder.
type ReminderInput struct {
	CustomerName  string  `json:"customer_name"`
	CustomerPhone string  `json:"customer_phone"`
	Amount        float64 `json:"amount"`
	DueDate       string  `json:"due_date"`
	Notes         string  `json:"notes,omitempty"`
}

type remindersResponse struct {
	Reminders []Reminder `json:"reminders"`
}

type reminderResponse struct {
	Reminder *Reminder `json:"reminder,omitempty"`
}

// ReminderService wraps the reminder CRUD surface. Scheduling, delivery, and
// every other business rule live in the backend; this is transport only.
type ReminderService struct {
	client *Client
}

// Reminders returns the reminder surface sharing this client's session.
func (c *Client) Reminders() *ReminderService {
	return &ReminderService{client: c}
}

// Create registers a new payment reminder for the signed-in user.
func (s *ReminderService) Create(ctx context.Context, input ReminderInput) (*Reminder, error) {
	out := &reminderResponse{}
	if err := s.client.execute(ctx, http.MethodPost, "/reminders", input, out); err != nil {
		return nil, err
	}
	return out.Reminder, nil
}

// List fetches the signed-in user's reminders.
func (s *ReminderService) List(ctx context.Context) ([]Reminder, error) {
	out := &remindersResponse{}
	if err := s.client.execute(ctx, http.MethodGet, "/reminders", nil, out); err != nil {
		return nil, err
	}
	return out.Reminders, nil
}

// UpdateStatus sets a reminder's payment status.
func (s *ReminderService) UpdateStatus(ctx context.Context, id UserID, status PaymentStatus) (*Reminder, error) {
	out := &reminderResponse{}
	body := map[string]string{"status": status}
	if err := s.client.execute(ctx, http.MethodPatch, "/reminders/"+id.String()+"/status", body, out); err != nil {
		return nil, err
	}
	return out.Reminder, nil
}

// MarkPaid marks a reminder settled.
func (s *ReminderService) MarkPaid(ctx context.Context, id UserID) (*Reminder, error) {
	return s.UpdateStatus(ctx, id, PaymentPaid)
}

// Send triggers a manual reminder delivery.
func (s *ReminderService) Send(ctx context.Context, id UserID) error {
	return s.client.execute(ctx, http.MethodPost, "/reminders/"+id.String()+"/send", nil, nil)
}
