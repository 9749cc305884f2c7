package authclient

import (
	"context"
	"net/http"
)

// ProfileUpdate carries the editable profile fields. Zero-valued fields are
// omitted from the request.
type ProfileUpdate struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// DashboardData is the user dashboard snapshot.
type DashboardData struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

type profileResponse struct {
	User *User `json:"user,omitempty"`
}

// AccountService wraps the signed-in user's own surface: dashboard, profile,
// and account deletion.
type AccountService struct {
	client  *Client
	manager *SessionManager
}

// Account returns the account surface sharing this client's session.
func (c *Client) Account() *AccountService {
	return &AccountService{client: c}
}

// WithManager lets UpdateProfile reconcile the manager's identity after the
// server confirms an edit.
func (s *AccountService) WithManager(manager *SessionManager) *AccountService {
	s.manager = manager
	return s
}

// Dashboard fetches the signed-in user's dashboard data.
func (s *AccountService) Dashboard(ctx context.Context) (*DashboardData, error) {
	out := &DashboardData{}
	if err := s.client.execute(ctx, http.MethodGet, "/user/dashboard", nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Profile fetches the signed-in user's profile record.
func (s *AccountService) Profile(ctx context.Context) (*User, error) {
	out := &profileResponse{}
	if err := s.client.execute(ctx, http.MethodGet, "/user/profile", nil, out); err != nil {
		return nil, err
	}
	return out.User, nil
}

// UpdateProfile submits profile edits. On success, when a manager is bound,
// the confirmed fields are merged into the current identity locally; the
// server is not consulted a second time.
func (s *AccountService) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	out := &profileResponse{}
	if err := s.client.execute(ctx, http.MethodPost, "/user/update-profile", update, out); err != nil {
		return nil, err
	}

	if s.manager != nil {
		patch := UserPatch{}
		if update.Username != "" {
			patch.Username = &update.Username
		}
		if update.FullName != "" {
			patch.FullName = &update.FullName
		}
		if update.Email != "" {
			patch.Email = &update.Email
		}
		if update.Phone != "" {
			patch.PhoneNumber = &update.Phone
		}
		s.manager.UpdateIdentity(ctx, patch)
	}

	return out.User, nil
}

// DeleteAccount removes the signed-in user's account. The caller is expected
// to follow up with SessionManager.Logout.
func (s *AccountService) DeleteAccount(ctx context.Context) error {
	return s.client.execute(ctx, http.MethodDelete, "/user/delete-account", nil, nil)
}
