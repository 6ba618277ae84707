package auth

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shophub/storefront/internal/cart"
	"github.com/shophub/storefront/internal/catalog"
	"github.com/shophub/storefront/internal/orders"
	"github.com/shophub/storefront/internal/storage"
	"github.com/shophub/storefront/pkg/config"
	"github.com/shophub/storefront/pkg/enums"
	pkgerrors "github.com/shophub/storefront/pkg/errors"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	authFn   func(ctx context.Context, creds catalog.Credentials) (string, error)
	createFn func(ctx context.Context, profile catalog.RegistrationProfile) (int, error)
}

func (s *stubCatalog) AuthenticateUser(ctx context.Context, creds catalog.Credentials) (string, error) {
	return s.authFn(ctx, creds)
}

func (s *stubCatalog) CreateUser(ctx context.Context, profile catalog.RegistrationProfile) (int, error) {
	return s.createFn(ctx, profile)
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Issuer: "shophub", ExpirationMinutes: 60}
}

func newTestEngine(t *testing.T, client catalogClient) (*Engine, storage.Store) {
	t.Helper()
	store := storage.NewMemoryStore()
	engine := NewEngine(context.Background(), client, store, testJWTConfig(), nil, nil)
	return engine, store
}

func TestLoginSuccessInstallsSimulatedProfile(t *testing.T) {
	ctx := context.Background()
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		return "catalog-token", nil
	}}
	engine, store := newTestEngine(t, client)

	session, err := engine.Login(ctx, catalog.Credentials{Username: "mor_2314", Password: "83r5^_"})
	require.NoError(t, err)
	require.Equal(t, enums.SessionStateAuthenticated, engine.State())
	require.Equal(t, "John Doe", session.Name)
	require.Equal(t, "mor_2314", session.Email)
	require.Equal(t, "catalog-token", session.Token)

	_, err = store.Get(ctx, storage.KeySession)
	require.NoError(t, err)
}

func TestLoginFailureStaysAnonymousWithNothingPersisted(t *testing.T) {
	ctx := context.Background()
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}}
	engine, store := newTestEngine(t, client)

	_, err := engine.Login(ctx, catalog.Credentials{Username: "mor_2314", Password: "wrong"})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeUnauthorized, typed.Code())

	require.Equal(t, enums.SessionStateAnonymous, engine.State())
	require.Nil(t, engine.Session())
	require.NotEmpty(t, engine.LastError())

	_, err = store.Get(ctx, storage.KeySession)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFailedReloginDropsPersistedSession(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		if creds.Password == "wrong" {
			return "", pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return "token", nil
	}}
	jwtCfg := testJWTConfig()

	engine := NewEngine(ctx, client, store, jwtCfg, nil, nil)
	_, err := engine.Login(ctx, catalog.Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)

	_, err = engine.Login(ctx, catalog.Credentials{Username: "u", Password: "wrong"})
	require.Error(t, err)
	require.Equal(t, enums.SessionStateAnonymous, engine.State())

	_, err = store.Get(ctx, storage.KeySession)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// a fresh engine over the same store must not resurrect the session
	rebuilt := NewEngine(ctx, client, store, jwtCfg, nil, nil)
	require.Equal(t, enums.SessionStateAnonymous, rebuilt.State())
	require.Nil(t, rebuilt.Session())
}

func TestStaleLoginResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	entered := make(chan struct{})
	gate := make(chan struct{})
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		if creds.Username == "slow" {
			close(entered)
			<-gate
			return "stale-token", nil
		}
		return "fresh-token", nil
	}}
	engine, _ := newTestEngine(t, client)

	staleErr := make(chan error, 1)
	go func() {
		_, err := engine.Login(ctx, catalog.Credentials{Username: "slow", Password: "p"})
		staleErr <- err
	}()
	<-entered

	session, err := engine.Login(ctx, catalog.Credentials{Username: "fresh", Password: "p"})
	require.NoError(t, err)
	require.Equal(t, "fresh-token", session.Token)

	close(gate)
	err = <-staleErr
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeSuperseded, typed.Code())

	// the stale response never clobbered the fresh session
	require.Equal(t, "fresh", engine.Session().Email)
	require.Equal(t, "fresh-token", engine.Session().Token)
}

func TestRegisterBuildsSessionFromProfile(t *testing.T) {
	ctx := context.Background()
	client := &stubCatalog{createFn: func(ctx context.Context, profile catalog.RegistrationProfile) (int, error) {
		return 11, nil
	}}
	engine, _ := newTestEngine(t, client)

	session, err := engine.Register(ctx, catalog.RegistrationProfile{
		Email:     "jane@example.com",
		Username:  "jane",
		Password:  "pw",
		FirstName: "Jane",
		LastName:  "Doe",
	})
	require.NoError(t, err)
	require.Equal(t, 11, session.ID)
	require.Equal(t, "Jane Doe", session.Name)
	require.Equal(t, "(555) 123-4567", session.Phone)
	require.Equal(t, "Anytown", session.Address.City)

	claims, err := ParseSessionToken(testJWTConfig(), session.Token)
	require.NoError(t, err)
	require.Equal(t, 11, claims.UserID)
	require.Equal(t, "jane@example.com", claims.Email)
}

func TestRegisterFailureRetainsMessage(t *testing.T) {
	ctx := context.Background()
	client := &stubCatalog{createFn: func(ctx context.Context, profile catalog.RegistrationProfile) (int, error) {
		return 0, pkgerrors.New(pkgerrors.CodeDependency, "catalog request failed with status 500")
	}}
	engine, _ := newTestEngine(t, client)

	_, err := engine.Register(ctx, catalog.RegistrationProfile{Email: "jane@example.com"})
	require.Error(t, err)
	require.Equal(t, enums.SessionStateAnonymous, engine.State())
	require.Equal(t, "catalog request failed with status 500", engine.LastError())
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		return "token", nil
	}}
	engine, store := newTestEngine(t, client)

	_, err := engine.Login(ctx, catalog.Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)
	engine.AddOrder(ctx, orders.Draft{Total: decimal.NewFromFloat(42.39)})

	engine.Logout(ctx)

	require.Equal(t, enums.SessionStateAnonymous, engine.State())
	require.Nil(t, engine.Session())
	require.Empty(t, engine.Orders())

	_, err = store.Get(ctx, storage.KeySession)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.Get(ctx, storage.KeyOrders)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddOrderPrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		return "token", nil
	}}
	engine, store := newTestEngine(t, client)

	// history only persists once non-empty
	_, err := store.Get(ctx, storage.KeyOrders)
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = engine.Login(ctx, catalog.Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)

	first := engine.AddOrder(ctx, orders.Draft{Total: decimal.NewFromFloat(10)})
	time.Sleep(2 * time.Millisecond)
	second := engine.AddOrder(ctx, orders.Draft{Total: decimal.NewFromFloat(20)})

	history := engine.Orders()
	require.Len(t, history, 2)
	require.Equal(t, second.ID, history[0].ID)
	require.Equal(t, first.ID, history[1].ID)
	require.Equal(t, 1, history[0].UserID)
	require.Equal(t, enums.OrderStatusPending, history[0].Status)

	_, err = store.Get(ctx, storage.KeyOrders)
	require.NoError(t, err)
}

func TestOrderSnapshotSurvivesCartClear(t *testing.T) {
	ctx := context.Background()
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		return "token", nil
	}}
	engine, _ := newTestEngine(t, client)

	cartStore := storage.NewMemoryStore()
	cartEngine := cart.NewEngine(ctx, cartStore, nil, nil)
	cartEngine.AddItem(ctx, catalog.Product{ID: 1, Title: "Monitor", Price: decimal.NewFromFloat(10)})

	order := engine.AddOrder(ctx, orders.Draft{
		Items: cartEngine.Lines(),
		Total: cartEngine.Summary().Total,
	})

	cartEngine.Clear(ctx)

	require.Len(t, order.Items, 1)
	require.Equal(t, "Monitor", order.Items[0].Title)
	require.Len(t, engine.Orders()[0].Items, 1)
}

func TestUpdateProfileMergesPartialFields(t *testing.T) {
	ctx := context.Background()
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		return "token", nil
	}}
	engine, _ := newTestEngine(t, client)

	_, err := engine.Login(ctx, catalog.Credentials{Username: "u@example.com", Password: "p"})
	require.NoError(t, err)

	name := "Jane Doe"
	updated := engine.UpdateProfile(ctx, ProfileUpdate{Name: &name})
	require.Equal(t, "Jane Doe", updated.Name)
	require.Equal(t, "u@example.com", updated.Email)
	require.Equal(t, "(555) 123-4567", updated.Phone)
	require.Equal(t, "token", updated.Token)
}

func TestUpdateProfileNoopWhenAnonymous(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, &stubCatalog{})

	name := "Nobody"
	require.Nil(t, engine.UpdateProfile(ctx, ProfileUpdate{Name: &name}))
}

func TestEngineReloadsPersistedSessionAndOrders(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	client := &stubCatalog{authFn: func(ctx context.Context, creds catalog.Credentials) (string, error) {
		return "token", nil
	}}

	first := NewEngine(ctx, client, store, testJWTConfig(), nil, nil)
	_, err := first.Login(ctx, catalog.Credentials{Username: "u", Password: "p"})
	require.NoError(t, err)
	first.AddOrder(ctx, orders.Draft{Total: decimal.NewFromFloat(42.39)})

	second := NewEngine(ctx, client, store, testJWTConfig(), nil, nil)
	require.Equal(t, enums.SessionStateAuthenticated, second.State())
	require.Equal(t, "u", second.Session().Email)
	require.Len(t, second.Orders(), 1)
}

func TestCorruptSavedSessionIsDiscarded(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(ctx, storage.KeySession, []byte(`{broken`)))
	require.NoError(t, store.Set(ctx, storage.KeyOrders, []byte(`[broken`)))

	engine := NewEngine(ctx, &stubCatalog{}, store, testJWTConfig(), nil, nil)

	require.Equal(t, enums.SessionStateAnonymous, engine.State())
	require.Nil(t, engine.Session())
	require.Empty(t, engine.Orders())

	_, err := store.Get(ctx, storage.KeySession)
	require.ErrorIs(t, err, storage.ErrNotFound)
}
