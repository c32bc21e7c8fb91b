package client

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/fitpro/backend/internal/logging"
)

var (
	// ErrBusy means a flow is already in flight; the submit is ignored.
	ErrBusy = errors.New("a request is already in progress")
	// ErrOffline means the device-level connectivity probe failed.
	ErrOffline = errors.New("no internet connection")
	// ErrUnreachable means the API host did not answer the bounded probe.
	ErrUnreachable = errors.New("server unreachable")
	// ErrValidation means a local field check failed; nothing left the device.
	ErrValidation = errors.New("validation failed")
	// ErrAuthFailed means the server rejected the request; the server message
	// was surfaced to the user verbatim.
	ErrAuthFailed = errors.New("authentication failed")
)

// AuthAPI is the slice of the API client the session controller needs.
type AuthAPI interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// Notifier receives user-facing messages (on a device, alerts).
type Notifier interface {
	Notify(title, message string)
}

type NotifierFunc func(title, message string)

func (f NotifierFunc) Notify(title, message string) { f(title, message) }

// SignupForm carries the signup draft fields.
type SignupForm struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
	TermsAccepted   bool
}

// SessionController drives the login/signup flow: local validation,
// connectivity and reachability probes, the API call, and persisting the
// resulting session. Each network call is a suspension point; after every
// one the liveness flag is checked before any user-facing effect, so a
// torn-down view never receives alerts. Only one flow runs at a time.
type SessionController struct {
	api          AuthAPI
	connectivity Connectivity
	reachability Reachability
	secrets      SecretStore
	notifier     Notifier
	log          logging.Logger

	mu      sync.Mutex
	loading bool
	alive   bool
}

func NewSessionController(api AuthAPI, connectivity Connectivity, reachability Reachability, secrets SecretStore, notifier Notifier, log logging.Logger) *SessionController {
	return &SessionController{
		api:          api,
		connectivity: connectivity,
		reachability: reachability,
		secrets:      secrets,
		notifier:     notifier,
		log:          log,
		alive:        true,
	}
}

// Teardown marks the initiating view as gone. In-flight calls are not
// cancelled; their completion effects become no-ops.
func (sc *SessionController) Teardown() {
	sc.mu.Lock()
	sc.alive = false
	sc.mu.Unlock()
}

func (sc *SessionController) Loading() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.loading
}

// Login runs the login flow. Validation failures and pre-flight failures
// never reach the orchestrator.
func (sc *SessionController) Login(ctx context.Context, email, password string) error {
	if email = strings.TrimSpace(email); email == "" {
		sc.alert("Validation Error", "Email is required.")
		return ErrValidation
	}
	if strings.TrimSpace(password) == "" {
		sc.alert("Validation Error", "Password is required.")
		return ErrValidation
	}

	if !sc.begin() {
		return ErrBusy
	}
	defer sc.finish()

	return sc.submit(ctx, "Login", func(ctx context.Context) (*AuthResult, error) {
		return sc.api.Login(ctx, email, password)
	})
}

// Signup runs the signup flow with the extra confirmation and terms checks.
func (sc *SessionController) Signup(ctx context.Context, form SignupForm) error {
	if !form.TermsAccepted {
		sc.alert("Terms and Conditions", "You must accept the Terms and Conditions to proceed.")
		return ErrValidation
	}
	if form.Password != form.ConfirmPassword {
		sc.alert("Password Mismatch", "Passwords do not match.")
		return ErrValidation
	}
	for _, field := range []struct{ value, message string }{
		{form.Email, "Email is required."},
		{form.Password, "Password is required."},
		{form.FirstName, "First name is required."},
		{form.LastName, "Last name is required."},
	} {
		if strings.TrimSpace(field.value) == "" {
			sc.alert("Validation Error", field.message)
			return ErrValidation
		}
	}

	if !sc.begin() {
		return ErrBusy
	}
	defer sc.finish()

	return sc.submit(ctx, "Signup", func(ctx context.Context) (*AuthResult, error) {
		return sc.api.Register(ctx, form.Email, form.Password, form.FirstName, form.LastName)
	})
}

// submit is the shared post-validation pipeline: probes, the API call, and
// persistence. Unexpected errors degrade to one generic message.
func (sc *SessionController) submit(ctx context.Context, flow string, call func(ctx context.Context) (*AuthResult, error)) error {
	if !sc.connectivity.Online(ctx) {
		sc.alert("No Internet", "Please check your internet connection and try again.")
		return ErrOffline
	}

	if !sc.reachability.Reachable(ctx) {
		sc.alert("Server Unreachable", "The server is currently unreachable. Please try again later.")
		return ErrUnreachable
	}

	result, err := call(ctx)
	if err != nil {
		sc.log.Error(ctx, "auth request failed", "flow", flow, "err", err.Error())
		sc.alert("Error", "An unexpected error occurred.")
		return err
	}

	if !result.OK() || result.Data == nil {
		sc.alert("Error", result.Message)
		return ErrAuthFailed
	}

	if err := sc.persist(ctx, result); err != nil {
		sc.log.Error(ctx, "session persistence failed", "flow", flow, "err", err.Error())
		sc.alert("Error", "An unexpected error occurred.")
		return err
	}

	sc.alert("Success", result.Message)
	return nil
}

func (sc *SessionController) persist(ctx context.Context, result *AuthResult) error {
	session := Session{
		UserID:       result.Data.UserID,
		AccessToken:  result.Data.AccessToken,
		RefreshToken: result.Data.RefreshToken,
	}
	blob, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return sc.secrets.Set(ctx, SessionKey, blob)
}

// begin claims the in-flight slot; a second submit while loading is ignored.
func (sc *SessionController) begin() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.loading {
		return false
	}
	sc.loading = true
	return true
}

func (sc *SessionController) finish() {
	sc.mu.Lock()
	sc.loading = false
	sc.mu.Unlock()
}

// alert forwards a user-facing message unless the view has been torn down.
func (sc *SessionController) alert(title, message string) {
	sc.mu.Lock()
	alive := sc.alive
	sc.mu.Unlock()
	if alive {
		sc.notifier.Notify(title, message)
	}
}
