package authclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

const (
	routeStatus         = "/auth/status"
	routeLogin          = "/auth/login"
	routeLogout         = "/auth/logout"
	routeRestoreSession = "/auth/restore-session"
	routeCheckEmail     = "/auth/check-email"
	routeCheckPhone     = "/auth/check-phone"
	routeSendOTP        = "/auth/send-otp"
	routeVerifyOTP      = "/auth/verify-otp"
	routeSignup         = "/auth/signup"
	routePending        = "/auth/pending"
)

// DefaultTimeout bounds every round trip; a timeout is handled identically to
// any other transport failure.
const DefaultTimeout = 10 * time.Second

// StatusResponse is the authentication status as reported by the server. Only
// this response is authoritative for the presence of a session.
type StatusResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// LoginResponse is the credential-submission outcome.
type LoginResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}

// PendingStatus describes an account waiting on admin review.
type PendingStatus struct {
	Status     string `json:"status,omitempty"`
	IsApproved bool   `json:"is_approved"`
	Message    string `json:"message,omitempty"`
}

// SignupPayload is the account-creation request. EmailVerified is always set
// by the gate before submission; the server re-checks it.
type SignupPayload struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	FullName      string `json:"full_name"`
	PhoneNumber   string `json:"phone_number"`
	EmailVerified bool   `json:"emailVerified"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

type messageResponse struct {
	Message string `json:"message,omitempty"`
}

type signupResponse struct {
	User *User `json:"user,omitempty"`
}

// Client wraps the consumed REST surface. Credentials travel in cookies held
// by the client's jar; bodies are JSON. On any 401 not already retried the
// client attempts one session restore followed by one replay of the original
// call; a second 401 propagates.
type Client struct {
	id     string
	rest   *resty.Client
	store  IdentityStore
	logger Logger
	debug  bool
}

// NewClient returns a Client bound to the API base URL, e.g.
// "https://backend.example.com/api".
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)

	rest := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetCookieJar(jar).
		SetTimeout(DefaultTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Cache-Control", "no-cache").
		SetHeader("Pragma", "no-cache")

	return &Client{
		id:     uuid.NewString()[:8],
		rest:   rest,
		store:  NewMemoryStore(),
		logger: defLogger{},
	}
}

func (c *Client) WithLogger(logger Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// WithStore sets the identity cache consulted when restoring a session.
func (c *Client) WithStore(store IdentityStore) *Client {
	if store != nil {
		c.store = store
	}
	return c
}

func (c *Client) WithTimeout(timeout time.Duration) *Client {
	if timeout > 0 {
		c.rest.SetTimeout(timeout)
	}
	return c
}

// WithDebug dumps request outcomes as pretty JSON.
func (c *Client) WithDebug(debug bool) *Client {
	c.debug = debug
	return c
}

// WithHTTPTransport replaces the underlying transport (used in tests).
func (c *Client) WithHTTPTransport(transport http.RoundTripper) *Client {
	if transport != nil {
		c.rest.SetTransport(transport)
	}
	return c
}

func (c *Client) attempt(ctx context.Context, method, path string, body, out any) (*resty.Response, *messageResponse, error) {
	apiErr := &messageResponse{}
	req := c.rest.R().
		SetContext(ctx).
		SetError(apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	return resp, apiErr, err
}

// execute performs one call with the global restore-and-replay policy.
func (c *Client) execute(ctx context.Context, method, path string, body, out any) error {
	resp, apiErr, err := c.attempt(ctx, method, path, body, out)
	if err != nil {
		return networkError(err, method+" "+path)
	}

	if resp.StatusCode() == http.StatusUnauthorized && path != routeRestoreSession {
		c.logger.Debug("client %s: 401 on %s, attempting session restore", c.id, path)
		if restoreErr := c.RestoreSession(ctx); restoreErr == nil {
			resp, apiErr, err = c.attempt(ctx, method, path, body, out)
			if err != nil {
				return networkError(err, method+" "+path)
			}
		}
	}

	return c.checkResponse(resp, apiErr, path)
}

func (c *Client) checkResponse(resp *resty.Response, apiErr *messageResponse, path string) error {
	code := resp.StatusCode()
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return ErrNotAuthenticated
	case code >= 500:
		// 5xx carries no definitive answer about the session
		return networkError(fmt.Errorf("server returned %d", code), path)
	default:
		message := apiErr.Message
		if message == "" {
			message = fmt.Sprintf("request to %s failed with status %d", path, code)
		}
		return remoteRejection(message)
	}
}

// Status fetches the authoritative authentication status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	out := &StatusResponse{}
	if err := c.execute(ctx, http.MethodGet, routeStatus, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login submits credentials. A 2xx with success:false is a business
// rejection, returned to the caller inside the response, not as an error.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	out := &LoginResponse{}
	body := map[string]string{"username": username, "password": password}
	if err := c.execute(ctx, http.MethodPost, routeLogin, body, out); err != nil {
		return nil, err
	}

	if c.debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(out))
		fmt.Println("=========================")
	}

	return out, nil
}

// Logout tears down the server-side session. Failures are reported but the
// caller is expected to clear local state regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.execute(ctx, http.MethodPost, routeLogout, nil, nil)
}

// RestoreSession re-submits the cached user id to the restore endpoint.
//
// The server trusts this client-supplied id with no accompanying secret, a
// known weakness of the backend contract. The manager never treats a restore
// success as authoritative; it always re-confirms with Status.
func (c *Client) RestoreSession(ctx context.Context) error {
	cached, err := c.store.Load(ctx)
	if err != nil || cached == nil {
		return ErrNotAuthenticated
	}
	body := map[string]string{"userId": cached.ID.String()}
	return c.execute(ctx, http.MethodPost, routeRestoreSession, body, nil)
}

// CheckEmailExists reports whether an account is already registered for the
// email address.
func (c *Client) CheckEmailExists(ctx context.Context, email string) (bool, error) {
	out := &existsResponse{}
	body := map[string]string{"email": normalizeEmail(email)}
	if err := c.execute(ctx, http.MethodPost, routeCheckEmail, body, out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// CheckPhoneExists reports whether an account is already registered for the
// phone number.
func (c *Client) CheckPhoneExists(ctx context.Context, phoneNumber string) (bool, error) {
	out := &existsResponse{}
	body := map[string]string{"phoneNumber": strings.TrimSpace(phoneNumber)}
	if err := c.execute(ctx, http.MethodPost, routeCheckPhone, body, out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// SendOTP asks the server to issue a one-time code to the email address.
func (c *Client) SendOTP(ctx context.Context, email string) error {
	body := map[string]string{"email": normalizeEmail(email)}
	return c.execute(ctx, http.MethodPost, routeSendOTP, body, nil)
}

// VerifyOTP submits a candidate code for the email it was issued against.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	body := map[string]string{
		"email": normalizeEmail(email),
		"otp":   strings.TrimSpace(otp),
	}
	return c.execute(ctx, http.MethodPost, routeVerifyOTP, body, nil)
}

// Signup creates the account. The gate guarantees payload.EmailVerified only
// after a successful VerifyOTP for the same email.
func (c *Client) Signup(ctx context.Context, payload SignupPayload) (*User, error) {
	out := &signupResponse{}
	if err := c.execute(ctx, http.MethodPost, routeSignup, payload, out); err != nil {
		return nil, err
	}

	if c.debug {
		fmt.Println("======= AUTH SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(out))
		fmt.Println("==========================")
	}

	return out.User, nil
}

// PendingStatus fetches the approval state for an account under review.
func (c *Client) PendingStatus(ctx context.Context) (*PendingStatus, error) {
	out := &PendingStatus{}
	if err := c.execute(ctx, http.MethodGet, routePending, nil, out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
