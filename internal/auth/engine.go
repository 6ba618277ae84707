// Package auth holds the simulated session state: the logged-in user,
// the order history and the transitions between them.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/shophub/storefront/internal/catalog"
	"github.com/shophub/storefront/internal/orders"
	"github.com/shophub/storefront/internal/storage"
	"github.com/shophub/storefront/pkg/config"
	"github.com/shophub/storefront/pkg/enums"
	pkgerrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/logger"
	"github.com/shophub/storefront/pkg/metrics"
	"github.com/shophub/storefront/pkg/types"
)

const (
	loginFailedMessage    = "Login failed. Please try again."
	registerFailedMessage = "Registration failed. Please try again."
)

// The catalog's auth endpoint returns only a token, so the engine
// fills the rest of the display profile from these fixtures.
var simulatedProfile = Session{
	ID:    1,
	Name:  "John Doe",
	Phone: "(555) 123-4567",
	Address: types.Address{
		Street:  "123 Main St",
		City:    "Anytown",
		State:   "CA",
		ZipCode: "12345",
		Country: "USA",
	},
}

// Session is the logged-in user as held by the engine. ID and Token
// are fixed at login; the rest is mutable via UpdateProfile.
type Session struct {
	ID       int           `json:"id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Phone    string        `json:"phone"`
	Address  types.Address `json:"address"`
	Token    string        `json:"token"`
	JoinedAt time.Time     `json:"joinDate"`
}

// ProfileUpdate carries a partial profile change. Nil fields keep
// their current values.
type ProfileUpdate struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *types.Address
}

type catalogClient interface {
	AuthenticateUser(ctx context.Context, creds catalog.Credentials) (string, error)
	CreateUser(ctx context.Context, profile catalog.RegistrationProfile) (int, error)
}

// Engine owns the session and order history. Authentication runs
// against the external catalog; each attempt carries a generation
// number so a stale response can never clobber a newer one.
type Engine struct {
	mu        sync.Mutex
	state     enums.SessionState
	session   *Session
	orders    []orders.Order
	lastError string
	attempt   uint64

	client  catalogClient
	store   storage.Store
	jwtCfg  config.JWTConfig
	logg    *logger.Logger
	metrics *metrics.StorefrontMetrics
}

// NewEngine builds a session engine and loads any persisted session
// and order history. Corrupt saved state is discarded with a warning.
func NewEngine(ctx context.Context, client catalogClient, store storage.Store, jwtCfg config.JWTConfig, logg *logger.Logger, m *metrics.StorefrontMetrics) *Engine {
	engine := &Engine{
		state:   enums.SessionStateAnonymous,
		client:  client,
		store:   store,
		jwtCfg:  jwtCfg,
		logg:    logg,
		metrics: m,
	}
	engine.load(ctx)
	return engine
}

func (e *Engine) load(ctx context.Context) {
	if data, err := e.store.Get(ctx, storage.KeySession); err == nil {
		var session Session
		if err := json.Unmarshal(data, &session); err != nil {
			e.warn(ctx, "saved session is corrupt, staying anonymous", err)
			e.dropKey(ctx, storage.KeySession)
		} else {
			e.session = &session
			e.state = enums.SessionStateAuthenticated
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		e.warn(ctx, "failed to read saved session", err)
	}

	if data, err := e.store.Get(ctx, storage.KeyOrders); err == nil {
		var history []orders.Order
		if err := json.Unmarshal(data, &history); err != nil {
			e.warn(ctx, "saved order history is corrupt, starting empty", err)
			e.dropKey(ctx, storage.KeyOrders)
		} else {
			e.orders = history
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		e.warn(ctx, "failed to read saved order history", err)
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() enums.SessionState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Session returns a copy of the current session, or nil when anonymous.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	copied := *e.session
	return &copied
}

// LastError returns the retained failure message for display.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastError
}

// Login exchanges credentials with the catalog and, on success,
// installs a synthesized session. The failure path leaves the engine
// anonymous with nothing written to durable storage.
func (e *Engine) Login(ctx context.Context, creds catalog.Credentials) (*Session, error) {
	attempt := e.beginAttempt()

	token, err := e.client.AuthenticateUser(ctx, creds)

	e.mu.Lock()
	defer e.mu.Unlock()
	if attempt != e.attempt {
		return nil, pkgerrors.New(pkgerrors.CodeSuperseded, "login attempt superseded by a newer one")
	}
	if err != nil {
		e.metrics.IncAuthAttempt("login", "failure")
		return nil, e.failAttemptLocked(ctx, err, loginFailedMessage)
	}

	session := simulatedProfile
	session.Email = creds.Username
	session.Token = token
	session.JoinedAt = time.Now()

	e.metrics.IncAuthAttempt("login", "success")
	return e.installSessionLocked(ctx, session), nil
}

// Register creates a user record via the catalog and installs a
// session built from the submitted fields plus a locally minted token.
func (e *Engine) Register(ctx context.Context, profile catalog.RegistrationProfile) (*Session, error) {
	attempt := e.beginAttempt()

	userID, err := e.client.CreateUser(ctx, profile)

	e.mu.Lock()
	defer e.mu.Unlock()
	if attempt != e.attempt {
		return nil, pkgerrors.New(pkgerrors.CodeSuperseded, "register attempt superseded by a newer one")
	}
	if err != nil {
		e.metrics.IncAuthAttempt("register", "failure")
		return nil, e.failAttemptLocked(ctx, err, registerFailedMessage)
	}

	now := time.Now()
	token, err := MintSessionToken(e.jwtCfg, now, userID, profile.Email)
	if err != nil {
		e.metrics.IncAuthAttempt("register", "failure")
		return nil, e.failAttemptLocked(
			ctx,
			pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting session token"),
			registerFailedMessage,
		)
	}

	session := Session{
		ID:       userID,
		Name:     strings.TrimSpace(profile.FirstName + " " + profile.LastName),
		Email:    profile.Email,
		Phone:    profile.Phone,
		Address:  profile.Address,
		Token:    token,
		JoinedAt: now,
	}
	if session.Phone == "" {
		session.Phone = simulatedProfile.Phone
	}
	if session.Address.IsZero() {
		session.Address = simulatedProfile.Address
	}

	e.metrics.IncAuthAttempt("register", "success")
	return e.installSessionLocked(ctx, session), nil
}

// Logout unconditionally returns to anonymous and clears the session
// and order history from memory and durable storage.
func (e *Engine) Logout(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = enums.SessionStateAnonymous
	e.session = nil
	e.orders = nil
	e.lastError = ""
	e.dropKey(ctx, storage.KeySession)
	e.dropKey(ctx, storage.KeyOrders)
}

// AddOrder synthesizes a pending order from the draft and prepends it
// to the history (most recent first). It always succeeds; validating
// the draft is the caller's responsibility.
func (e *Engine) AddOrder(ctx context.Context, draft orders.Draft) orders.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	if draft.UserID == 0 && e.session != nil {
		draft.UserID = e.session.ID
	}
	order := orders.FromDraft(draft, time.Now())
	e.orders = append([]orders.Order{order}, e.orders...)
	e.metrics.IncOrderPlaced()
	e.persistOrders(ctx)
	return order
}

// Orders returns a copy of the order history, most recent first.
func (e *Engine) Orders() []orders.Order {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]orders.Order(nil), e.orders...)
}

// UpdateProfile merges the partial update into the current session.
// Absent fields are retained; ID and token never change. A no-op when
// anonymous.
func (e *Engine) UpdateProfile(ctx context.Context, update ProfileUpdate) *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	if update.Name != nil {
		e.session.Name = *update.Name
	}
	if update.Email != nil {
		e.session.Email = *update.Email
	}
	if update.Phone != nil {
		e.session.Phone = *update.Phone
	}
	if update.Address != nil {
		e.session.Address = *update.Address
	}
	e.persistSession(ctx)
	copied := *e.session
	return &copied
}

// beginAttempt moves the engine into authenticating and returns this
// attempt's generation number.
func (e *Engine) beginAttempt() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = enums.SessionStateAuthenticating
	e.lastError = ""
	e.attempt++
	return e.attempt
}

// failAttemptLocked records the failure and returns a coded error with
// a human-readable message. The persisted session is removed along
// with the in-memory one so a restart cannot resurrect it. Callers
// hold the engine lock.
func (e *Engine) failAttemptLocked(ctx context.Context, err error, fallback string) error {
	e.state = enums.SessionStateAnonymous
	e.session = nil
	e.dropKey(ctx, storage.KeySession)

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, fallback)
	}
	message := typed.Message()
	if message == "" {
		message = fallback
	}
	e.lastError = message
	return typed
}

func (e *Engine) installSessionLocked(ctx context.Context, session Session) *Session {
	e.session = &session
	e.state = enums.SessionStateAuthenticated
	e.lastError = ""
	e.persistSession(ctx)
	copied := session
	return &copied
}

func (e *Engine) persistSession(ctx context.Context) {
	data, err := json.Marshal(e.session)
	if err != nil {
		e.warn(ctx, "failed to encode session", err)
		return
	}
	if err := e.store.Set(ctx, storage.KeySession, data); err != nil {
		e.warn(ctx, "failed to persist session", err)
	}
}

// persistOrders writes the history; it only ever runs once the list is
// non-empty.
func (e *Engine) persistOrders(ctx context.Context) {
	data, err := json.Marshal(e.orders)
	if err != nil {
		e.warn(ctx, "failed to encode order history", err)
		return
	}
	if err := e.store.Set(ctx, storage.KeyOrders, data); err != nil {
		e.warn(ctx, "failed to persist order history", err)
	}
}

func (e *Engine) dropKey(ctx context.Context, key string) {
	if err := e.store.Delete(ctx, key); err != nil {
		e.warn(ctx, "failed to remove persisted state", err)
	}
}

func (e *Engine) warn(ctx context.Context, msg string, err error) {
	if e.logg == nil {
		return
	}
	e.logg.Warn(e.logg.WithField(ctx, "error", err.Error()), msg)
}
