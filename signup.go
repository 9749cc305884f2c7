package authclient

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// VerificationState is the signup gate's position in the OTP machine.
type VerificationState string

const (
	// VerificationUnsent means no code has been issued for the current email
	VerificationUnsent VerificationState = "unsent"
	// VerificationSent means a code was issued and awaits submission
	VerificationSent VerificationState = "sent"
	// VerificationVerified means the current email proved control of a code
	VerificationVerified VerificationState = "verified"
	// VerificationFailed means the last step was rejected; request a new code
	VerificationFailed VerificationState = "failed"
)

const textCodeInvalidForm = "INVALID_SIGNUP_FORM"

var (
	otpPattern    = regexp.MustCompile(`^\d{6}$`)
	digitsPattern = regexp.MustCompile(`^\d*$`)
)

// DefaultAutoSubmitDelay is how long the gate waits after the sixth digit is
// typed before firing the verification call on its own.
const DefaultAutoSubmitDelay = 500 * time.Millisecond

// SignupForm carries the registration fields as entered by the user.
type SignupForm struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FullName        string `json:"full_name"`
	PhoneNumber     string `json:"phone_number"`
}

// Validate runs the local validation rules; nothing here touches the network.
func (f SignupForm) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Username, validation.Required, validation.Length(3, 100)),
		validation.Field(&f.Email, validation.Required, is.Email),
		validation.Field(&f.FullName, validation.Required, validation.Length(1, 200)),
		validation.Field(&f.PhoneNumber, validation.Required),
		validation.Field(&f.Password, validation.Required, validation.Length(6, 100)),
		validation.Field(
			&f.ConfirmPassword,
			validation.Required,
			validation.By(validateStringEquals(f.Password, "passwords do not match")),
		),
	)
}

func validateStringEquals(expected, message string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); s != expected {
			return errors.New(message)
		}
		return nil
	}
}

// SignupGate is the sequential machine that gates account creation behind a
// verified one-time code. A verification is valid only for the exact email it
// was issued against: editing the email drops the machine back to UNSENT
// immediately, whatever state it was in.
//
// Every network step fails soft. A rejected call records a user-facing reason
// and leaves the machine in the nearest sensible prior state; a transport
// failure leaves the state untouched entirely.
type SignupGate struct {
	client *Client
	logger Logger

	autoSubmitDelay time.Duration
	defaultRegion   string

	mu        sync.Mutex
	email     string
	state     VerificationState
	reason    string
	code      string
	sending   bool
	autoTimer *time.Timer
}

// NewSignupGate returns a gate in UNSENT with auto-submit enabled at the
// default delay.
func NewSignupGate(client *Client) *SignupGate {
	return &SignupGate{
		client:          client,
		logger:          defLogger{},
		autoSubmitDelay: DefaultAutoSubmitDelay,
		state:           VerificationUnsent,
	}
}

func (g *SignupGate) WithLogger(logger Logger) *SignupGate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// WithAutoSubmitDelay adjusts the debounce before the sixth typed digit
// triggers verification. Zero disables auto-submission; SubmitCode remains
// the correctness-bearing path either way.
func (g *SignupGate) WithAutoSubmitDelay(delay time.Duration) *SignupGate {
	g.autoSubmitDelay = delay
	return g
}

// WithDefaultRegion sets the region used to normalize nationally formatted
// phone numbers before the uniqueness check.
func (g *SignupGate) WithDefaultRegion(region string) *SignupGate {
	g.defaultRegion = region
	return g
}

// State returns the machine's current position.
func (g *SignupGate) State() VerificationState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// FailureReason returns the user-facing reason recorded by the last FAILED
// transition, if any.
func (g *SignupGate) FailureReason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// Email returns the normalized email the machine is currently bound to.
func (g *SignupGate) Email() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.email
}

// Code returns the candidate code as accumulated by SetCode.
func (g *SignupGate) Code() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.code
}

// SetEmail binds the machine to a new email value. Any prior sent or verified
// state is invalidated the moment the value differs: a verified code belongs
// to the exact email string it was issued for.
func (g *SignupGate) SetEmail(email string) {
	normalized := normalizeEmail(email)

	g.mu.Lock()
	defer g.mu.Unlock()

	if normalized == g.email {
		return
	}

	g.cancelAutoSubmitLocked()
	g.email = normalized
	g.state = VerificationUnsent
	g.reason = ""
	g.code = ""
}

// RequestCode checks the email is not already registered, then asks the
// server to issue a code. Valid only while no send is in flight. A duplicate
// email moves the machine to FAILED without issuing anything.
func (g *SignupGate) RequestCode(ctx context.Context) error {
	g.mu.Lock()
	if g.sending {
		g.mu.Unlock()
		return ErrInvalidTransition
	}
	email := g.email
	g.sending = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.sending = false
		g.mu.Unlock()
	}()

	if err := validation.Validate(email, validation.Required, is.Email); err != nil {
		return goerrors.New("please enter a valid email address", goerrors.CategoryValidation).
			WithTextCode(textCodeInvalidForm)
	}

	exists, err := g.client.CheckEmailExists(ctx, email)
	if err != nil {
		// no definitive answer, stay where we are
		return err
	}
	if exists {
		g.fail(ErrDuplicateEmail.Message)
		return ErrDuplicateEmail
	}

	if err := g.client.SendOTP(ctx, email); err != nil {
		if IsNetworkError(err) {
			return err
		}
		g.fail(FailureMessage(err))
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.email != email {
		// email edited mid-flight, the issued code is already invalid
		return nil
	}
	g.state = VerificationSent
	g.reason = ""
	g.code = ""
	return nil
}

// SubmitCode submits a candidate code. Valid only from SENT. A code that is
// not exactly six decimal digits is rejected locally with no network call and
// the machine stays in SENT. A server rejection moves to FAILED with the
// server's reason; the caller must request a new code.
func (g *SignupGate) SubmitCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)

	g.mu.Lock()
	if g.state != VerificationSent {
		g.mu.Unlock()
		return ErrInvalidTransition
	}
	email := g.email
	g.cancelAutoSubmitLocked()
	g.mu.Unlock()

	if !otpPattern.MatchString(code) {
		return ErrInvalidOTP
	}

	if err := g.client.VerifyOTP(ctx, email, code); err != nil {
		if IsNetworkError(err) {
			return err
		}
		g.fail(FailureMessage(err))
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.email != email || g.state != VerificationSent {
		return nil
	}
	g.state = VerificationVerified
	g.reason = ""
	return nil
}

// SetCode accumulates candidate digits as typed. Non-digit input and anything
// past six characters is ignored. Entering the sixth digit while in SENT arms
// the debounced auto-submission; further edits before it fires disarm it.
func (g *SignupGate) SetCode(value string) {
	if !digitsPattern.MatchString(value) || len(value) > 6 {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.cancelAutoSubmitLocked()
	g.code = value

	if len(value) == 6 && g.state == VerificationSent && g.autoSubmitDelay > 0 {
		code := value
		g.autoTimer = time.AfterFunc(g.autoSubmitDelay, func() {
			g.autoSubmit(code)
		})
	}
}

func (g *SignupGate) autoSubmit(code string) {
	g.mu.Lock()
	stale := g.state != VerificationSent || g.code != code
	g.mu.Unlock()
	if stale {
		return
	}
	if err := g.SubmitCode(context.Background(), code); err != nil {
		g.logger.Debug("auto verification failed: %v", err)
	}
}

func (g *SignupGate) cancelAutoSubmitLocked() {
	if g.autoTimer != nil {
		g.autoTimer.Stop()
		g.autoTimer = nil
	}
}

func (g *SignupGate) fail(reason string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cancelAutoSubmitLocked()
	g.state = VerificationFailed
	g.reason = reason
}

// Register submits the account-creation request. It is accepted only when
// the machine is VERIFIED for the email currently in the form; any other
// state is rejected locally with no network call. The phone number is
// normalized and checked for uniqueness before the account is created.
func (g *SignupGate) Register(ctx context.Context, form SignupForm) (*User, error) {
	g.mu.Lock()
	verified := g.state == VerificationVerified && g.email == normalizeEmail(form.Email)
	g.mu.Unlock()

	if !verified {
		return nil, ErrEmailNotVerified
	}

	if err := form.Validate(); err != nil {
		return nil, goerrors.New(err.Error(), goerrors.CategoryValidation).
			WithTextCode(textCodeInvalidForm)
	}

	phone := normalizePhone(form.PhoneNumber, g.defaultRegion)
	exists, err := g.client.CheckPhoneExists(ctx, phone)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicatePhone
	}

	user, err := g.client.Signup(ctx, SignupPayload{
		Username:      strings.TrimSpace(form.Username),
		Email:         normalizeEmail(form.Email),
		Password:      form.Password,
		FullName:      strings.TrimSpace(form.FullName),
		PhoneNumber:   phone,
		EmailVerified: true,
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// normalizePhone formats parseable numbers as E.164 so the uniqueness check
// is not defeated by formatting differences. Unparseable input is passed
// through trimmed and left for the server to judge.
func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}
