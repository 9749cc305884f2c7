package authclient

import (
	"context"
	"net/http"
)

// UserDetails is the admin-only expanded record, including the stored
// password hash the backend exposes on the details endpoint.
type UserDetails struct {
	User
	Password string `json:"password,omitempty"`
}

type usersResponse struct {
	Users []User `json:"users"`
}

type userDetailsResponse struct {
	User *UserDetails `json:"user,omitempty"`
}

// AdminService wraps the admin review surface. The server enforces the admin
// role on every call; these are plain typed pass-throughs.
type AdminService struct {
	client *Client
}

// Admin returns the admin surface sharing this client's session.
func (c *Client) Admin() *AdminService {
	return &AdminService{client: c}
}

// Dashboard lists every user account for the overview screen.
func (s *AdminService) Dashboard(ctx context.Context) ([]User, error) {
	out := &usersResponse{}
	if err := s.client.execute(ctx, http.MethodGet, "/admin/dashboard", nil, out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// PendingUsers lists accounts awaiting review.
func (s *AdminService) PendingUsers(ctx context.Context) ([]User, error) {
	out := &usersResponse{}
	if err := s.client.execute(ctx, http.MethodGet, "/admin/pending-users", nil, out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ApprovedUsers lists accounts that cleared review.
func (s *AdminService) ApprovedUsers(ctx context.Context) ([]User, error) {
	out := &usersResponse{}
	if err := s.client.execute(ctx, http.MethodGet, "/admin/approved-users", nil, out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// ApproveUser grants a pending account access.
func (s *AdminService) ApproveUser(ctx context.Context, id UserID) error {
	return s.client.execute(ctx, http.MethodPost, "/admin/approve-user/"+id.String(), nil, nil)
}

// RejectUser declines a pending account.
func (s *AdminService) RejectUser(ctx context.Context, id UserID) error {
	return s.client.execute(ctx, http.MethodPost, "/admin/reject-user/"+id.String(), nil, nil)
}

// DeactivateUser suspends an approved account.
func (s *AdminService) DeactivateUser(ctx context.Context, id UserID) error {
	return s.client.execute(ctx, http.MethodPost, "/admin/deactivate-user/"+id.String(), nil, nil)
}

// ReactivateUser lifts a suspension.
func (s *AdminService) ReactivateUser(ctx context.Context, id UserID) error {
	return s.client.execute(ctx, http.MethodPost, "/admin/reactivate-user/"+id.String(), nil, nil)
}

// DeleteUser removes an account permanently.
func (s *AdminService) DeleteUser(ctx context.Context, id UserID) error {
	return s.client.execute(ctx, http.MethodDelete, "/admin/delete-user/"+id.String(), nil, nil)
}

// UserDetails fetches the expanded record for one account.
func (s *AdminService) UserDetails(ctx context.Context, id UserID) (*UserDetails, error) {
	out := &userDetailsResponse{}
	if err := s.client.execute(ctx, http.MethodGet, "/admin/user-details/"+id.String(), nil, out); err != nil {
		return nil, err
	}
	return out.User, nil
}
