package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-ticketing-api/internal/config"
	"event-ticketing-api/internal/database"
	"event-ticketing-api/internal/models"
	"event-ticketing-api/internal/repositories"
	"event-ticketing-api/internal/response"
	"event-ticketing-api/internal/testutil"
	"event-ticketing-api/internal/utils"
)

type testApp struct {
	t   *testing.T
	db  *database.DB
	srv *Server
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:           "127.0.0.1",
			Port:           "0",
			Env:            "test",
			AllowedOrigins: []string{"*"},
		},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
			LoginRateWindow: time.Minute,
		},
		Tickets: config.TicketsConfig{MaxPerPurchase: 10},
	}
}

// newTestApp builds the full stack on a fresh SQLite database and starts the
// message router so audit events are recorded.
func newTestApp(t *testing.T, cfg *config.Config) *testApp {
	t.Helper()

	db := testutil.NewTestDB(t)

	srv, err := New(cfg, db, utils.NewPasswordHasher(utils.LightPasswordHashConfig()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = srv.msgRouter.Run(ctx)
	}()
	<-srv.msgRouter.Running()

	t.Cleanup(func() {
		cancel()
		<-done
		srv.close()
	})

	return &testApp{t: t, db: db, srv: srv}
}

func (a *testApp) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (a *testApp) register(email, password string) *models.User {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/register/", "", map[string]string{
		"username":   email,
		"first_name": "Test",
		"last_name":  "User",
		"email":      email,
		"password":   password,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*models.User](a.t, rec)
}

func (a *testApp) login(email, password string) string {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/login/", "", map[string]string{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[map[string]string](a.t, rec)["access"]
}

// userToken registers a regular user and returns it with an access token
func (a *testApp) userToken(email string) (*models.User, string) {
	a.t.Helper()
	user := a.register(email, "secret-password")
	return user, a.login(email, "secret-password")
}

// adminToken registers a user, promotes it in storage and logs it in
func (a *testApp) adminToken(email string) (*models.User, string) {
	a.t.Helper()
	user := a.register(email, "secret-password")
	require.NoError(a.t, repositories.NewUserRepository(a.db.DB).UpdateRole(context.Background(), user.ID, models.UserRoleAdmin))
	user.Role = models.UserRoleAdmin
	return user, a.login(email, "secret-password")
}

func (a *testApp) createEvent(token string, total int) *models.Event {
	a.t.Helper()

	rec := a.do(http.MethodPost, "/events/", token, map[string]interface{}{
		"name":          "Concert",
		"location":      "Nairobi",
		"date":          "2026-12-01T19:00:00Z",
		"total_tickets": total,
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*models.Event](a.t, rec)
}

func (a *testApp) getEvent(token string, id int) *models.Event {
	a.t.Helper()

	rec := a.do(http.MethodGet, fmt.Sprintf("/events/%d/", id), token, nil)
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[*models.Event](a.t, rec)
}

func (a *testApp) purchase(token string, eventID int, quantity interface{}) *httptest.ResponseRecorder {
	a.t.Helper()

	var body interface{}
	if quantity != nil {
		body = map[string]interface{}{"quantity": quantity}
	}
	return a.do(http.MethodPost, fmt.Sprintf("/tickets/%d/purchase/", eventID), token, body)
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestSwaggerDoc(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := app.do(http.MethodGet, "/swagger/doc.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	doc := decode[map[string]interface{}](t, rec)
	paths, ok := doc["paths"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, paths, "/tickets/{id}/purchase/")
	assert.Contains(t, paths, "/login/")
}

func TestUnknownRoute(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := app.do(http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.CodeNotFound, decode[response.ErrorBody](t, rec).Code)
}

func TestRegisterAndLogin(t *testing.T) {
	app := newTestApp(t, testConfig())

	rec := app.do(http.MethodPost, "/register/", "", map[string]string{
		"username":   "alice",
		"first_name": "Alice",
		"last_name":  "Doe",
		"email":      "Alice@Example.com",
		"password":   "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "alice@example.com", body["email"])
	assert.Equal(t, "User", body["role"])
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "password_hash")

	t.Run("valid credentials", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/login/", "", map[string]string{"email": "alice@example.com", "password": "correct-horse"})
		require.Equal(t, http.StatusOK, rec.Code)

		pair := decode[map[string]string](t, rec)
		assert.NotEmpty(t, pair["access"])
		assert.NotEmpty(t, pair["refresh"])
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/login/", "", map[string]string{"email": "alice@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, response.CodeInvalidCredentials, decode[response.ErrorBody](t, rec).Code)
	})

	t.Run("unknown email gets the same answer", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/login/", "", map[string]string{"email": "bob@example.com", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, response.CodeInvalidCredentials, decode[response.ErrorBody](t, rec).Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/login/", "", map[string]string{"email": "alice@example.com"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, response.CodeMissingCredentials, decode[response.ErrorBody](t, rec).Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		rec := app.do(http.MethodPost, "/register/", "", map[string]string{
			"first_name": "Alice",
			"last_name":  "Again",
			"email":      "alice@example.com",
			"password":   "another",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email", decode[response.ErrorBody](t, rec).Field)
	})
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t, testConfig())

	tests := []struct {
		name  string
		body  interface{}
		field string
	}{
		{
			name:  "admin role",
			body:  map[string]string{"first_name": "A", "last_name": "B", "email": "a@example.com", "password": "pw", "role": "Admin"},
			field: "role",
		},
		{
			name:  "unknown role",
			body:  map[string]string{"first_name": "A", "last_name": "B", "email": "a@example.com", "password": "pw", "role": "Owner"},
			field: "role",
		},
		{
			name:  "missing email",
			body:  map[string]string{"first_name": "A", "last_name": "B", "password": "pw"},
			field: "email",
		},
		{
			name:  "missing last name",
			body:  map[string]string{"first_name": "A", "email": "a@example.com", "password": "pw"},
			field: "last_name",
		},
		{
			name:  "wrong type",
			body:  map[string]interface{}{"first_name": 12, "last_name": "B", "email": "a@example.com", "password": "pw"},
			field: "first_name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(http.MethodPost, "/register/", "", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode[response.ErrorBody](t, rec)
			assert.Equal(t, response.CodeValidation, body.Code)
			assert.Equal(t, tt.field, body.Field)
		})
	}

	count, err := repositories.NewUserRepository(app.db.DB).Count(context.Background(), "")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRefreshToken(t *testing.T) {
	app := newTestApp(t, testConfig())
	app.register("carol@example.com", "pw-carol")

	rec := app.do(http.MethodPost, "/login/", "", map[string]string{"email": "carol@example.com", "password": "pw-carol"})
	require.Equal(t, http.StatusOK, rec.Code)
	pair := decode[map[string]string](t, rec)

	rec = app.do(http.MethodPost, "/token/refresh/", "", map[string]string{"refresh": pair["refresh"]})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access := decode[map[string]string](t, rec)["access"]
	require.NotEmpty(t, access)

	rec = app.do(http.MethodGet, "/tickets/", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(http.MethodPost, "/token/refresh/", "", map[string]string{"refresh": pair["access"]})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.do(http.MethodGet, "/tickets/", pair["refresh"], nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	app := newTestApp(t, testConfig())

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/user/"},
		{http.MethodPut, "/user/1/"},
		{http.MethodGet, "/events/"},
		{http.MethodPost, "/events/"},
		{http.MethodGet, "/events/1/"},
		{http.MethodGet, "/tickets/"},
		{http.MethodGet, "/tickets/1/"},
		{http.MethodPost, "/tickets/1/purchase/"},
		{http.MethodGet, "/audit/"},
	}

	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := app.do(p.method, p.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)

			rec = app.do(p.method, p.path, "not-a-token", nil)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, response.CodeAuthenticationFailed, decode[response.ErrorBody](t, rec).Code)
		})
	}
}

func TestEventCRUD(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")

	rec := app.do(http.MethodPost, "/events/", admin, map[string]interface{}{
		"name":          "Launch",
		"total_tickets": 50,
		"tickets_sold":  40,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	event := decode[*models.Event](t, rec)
	assert.Equal(t, 0, event.TicketsSold)
	assert.Equal(t, 50, event.TotalTickets)

	got := app.getEvent(admin, event.ID)
	assert.Equal(t, "Launch", got.Name)

	rec = app.do(http.MethodPut, fmt.Sprintf("/events/%d/", event.ID), admin, map[string]interface{}{
		"location":      "Mombasa",
		"total_tickets": 60,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[*models.Event](t, rec)
	assert.Equal(t, "Launch", updated.Name)
	assert.Equal(t, "Mombasa", updated.Location)
	assert.Equal(t, 60, updated.TotalTickets)

	rec = app.do(http.MethodGet, "/events", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*models.Event](t, rec), 1)

	rec = app.do(http.MethodDelete, fmt.Sprintf("/events/%d/", event.ID), admin, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(http.MethodGet, fmt.Sprintf("/events/%d/", event.ID), admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodGet, "/events/abc/", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodPost, "/events/", admin, map[string]interface{}{"name": "No capacity"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "total_tickets", decode[response.ErrorBody](t, rec).Field)
}

func TestEventsRequireAdmin(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	_, user := app.userToken("user@example.com")

	event := app.createEvent(admin, 100)
	eventPath := fmt.Sprintf("/events/%d/", event.ID)

	rec := app.do(http.MethodPost, "/events/", user, map[string]interface{}{"name": "Sneaky", "total_tickets": 5})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/events/", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, eventPath, user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodPut, eventPath, user, map[string]interface{}{"name": "Renamed"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodDelete, eventPath, user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Storage is unchanged.
	rec = app.do(http.MethodGet, "/events/", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]*models.Event](t, rec)
	require.Len(t, events, 1)
	assert.Equal(t, "Concert", events[0].Name)

	t.Run("role is checked before existence on read", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/events/9999/", user, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("existence is checked before role on write", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/events/9999/", user, map[string]interface{}{"name": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = app.do(http.MethodDelete, "/events/9999/", user, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPurchaseScenario(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	_, user := app.userToken("buyer@example.com")

	event := app.createEvent(admin, 10)

	rec := app.purchase(user, event.ID, 8)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, 8, app.getEvent(admin, event.ID).TicketsSold)

	rec = app.purchase(user, event.ID, 3)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[response.ErrorBody](t, rec)
	assert.Equal(t, response.CodeCapacityExceeded, body.Code)
	assert.Equal(t, "Not enough tickets available", body.Detail)
	assert.Equal(t, 8, app.getEvent(admin, event.ID).TicketsSold)

	rec = app.purchase(user, event.ID, "2")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ticket := decode[*models.Ticket](t, rec)
	assert.Equal(t, 2, ticket.Quantity)
	assert.Equal(t, event.ID, ticket.EventID)
	assert.Equal(t, 10, app.getEvent(admin, event.ID).TicketsSold)

	rec = app.do(http.MethodGet, fmt.Sprintf("/events/%d/", event.ID), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decode[map[string]interface{}](t, rec)["available_tickets"])

	rec = app.do(http.MethodGet, "/tickets/", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*models.Ticket](t, rec), 2)
}

func TestPurchaseValidation(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	_, user := app.userToken("buyer@example.com")

	event := app.createEvent(admin, 100)

	tests := []struct {
		name     string
		quantity interface{}
		detail   string
	}{
		{name: "zero", quantity: 0, detail: "Please select at least one ticket to proceed."},
		{name: "missing", quantity: nil, detail: "Please select at least one ticket to proceed."},
		{name: "negative", quantity: -2},
		{name: "over the per-purchase limit", quantity: 11},
		{name: "not a number", quantity: "three"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.purchase(user, event.ID, tt.quantity)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode[response.ErrorBody](t, rec)
			assert.Equal(t, response.CodeValidation, body.Code)
			assert.Equal(t, "quantity", body.Field)
			if tt.detail != "" {
				assert.Equal(t, tt.detail, body.Detail)
			}
		})
	}

	assert.Equal(t, 0, app.getEvent(admin, event.ID).TicketsSold)

	rec := app.do(http.MethodGet, "/tickets/", user, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]*models.Ticket](t, rec))
}

func TestPurchaseAuthorization(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	_, user := app.userToken("buyer@example.com")

	event := app.createEvent(admin, 10)

	rec := app.purchase(admin, event.ID, 1)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.purchase(admin, 9999, 0)
	assert.Equal(t, http.StatusForbidden, rec.Code, "role is checked first")

	rec = app.purchase(user, 9999, 1)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.purchase(user, 9999, 0)
	assert.Equal(t, http.StatusNotFound, rec.Code, "existence is checked before quantity")

	assert.Equal(t, 0, app.getEvent(admin, event.ID).TicketsSold)
}

func TestConcurrentPurchasesNeverOversell(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	_, user := app.userToken("buyer@example.com")

	event := app.createEvent(admin, 5)

	const buyers = 12
	path := fmt.Sprintf("/tickets/%d/purchase/", event.ID)
	statuses := make(chan int, buyers)

	for i := 0; i < buyers; i++ {
		go func() {
			req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"quantity": 1}`))
			req.Header.Set("Authorization", "Bearer "+user)
			rec := httptest.NewRecorder()
			app.srv.Handler().ServeHTTP(rec, req)
			statuses <- rec.Code
		}()
	}

	counts := map[int]int{}
	for i := 0; i < buyers; i++ {
		counts[<-statuses]++
	}

	assert.Equal(t, 5, counts[http.StatusCreated])
	assert.Equal(t, buyers-5, counts[http.StatusBadRequest])

	got := app.getEvent(admin, event.ID)
	assert.Equal(t, 5, got.TicketsSold)
	assert.LessOrEqual(t, got.TicketsSold, got.TotalTickets)
}

func TestTicketsAreOwnerScoped(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	_, alice := app.userToken("alice@example.com")
	_, bob := app.userToken("bob@example.com")

	event := app.createEvent(admin, 10)

	rec := app.purchase(alice, event.ID, 2)
	require.Equal(t, http.StatusCreated, rec.Code)
	ticket := decode[*models.Ticket](t, rec)

	rec = app.do(http.MethodGet, "/tickets/", bob, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]*models.Ticket](t, rec))

	rec = app.do(http.MethodGet, fmt.Sprintf("/tickets/%d/", ticket.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(http.MethodGet, fmt.Sprintf("/tickets/%d/", ticket.ID), alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ticket.ID, decode[*models.Ticket](t, rec).ID)

	rec = app.do(http.MethodGet, "/tickets/", alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	tickets := decode[[]*models.Ticket](t, rec)
	require.Len(t, tickets, 1)
	assert.Equal(t, ticket.UserID, tickets[0].UserID)
}

func TestUserManagement(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	alice, aliceToken := app.userToken("alice@example.com")
	bob, _ := app.userToken("bob@example.com")

	t.Run("list requires admin", func(t *testing.T) {
		rec := app.do(http.MethodGet, "/user/", aliceToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(http.MethodGet, "/user/", admin, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]*models.User](t, rec), 3)
	})

	t.Run("cannot update another user", func(t *testing.T) {
		rec := app.do(http.MethodPut, fmt.Sprintf("/user/%d/", bob.ID), aliceToken, map[string]string{"first_name": "Hacked"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		stored, err := repositories.NewUserRepository(app.db.DB).GetByID(context.Background(), bob.ID)
		require.NoError(t, err)
		assert.Equal(t, "Test", stored.FirstName)
	})

	t.Run("missing user", func(t *testing.T) {
		rec := app.do(http.MethodPut, "/user/9999/", aliceToken, map[string]string{"first_name": "X"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("own profile", func(t *testing.T) {
		rec := app.do(http.MethodPut, fmt.Sprintf("/user/%d/", alice.ID), aliceToken, map[string]string{
			"first_name": "Alicia",
			"password":   "new-password",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Alicia", decode[*models.User](t, rec).FirstName)

		stored, err := repositories.NewUserRepository(app.db.DB).GetByID(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "Alicia", stored.FirstName)

		app.login("alice@example.com", "new-password")
	})

	t.Run("role cannot be set through the profile", func(t *testing.T) {
		rec := app.do(http.MethodPut, fmt.Sprintf("/user/%d/", alice.ID), aliceToken, map[string]string{"role": "Admin"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "role", decode[response.ErrorBody](t, rec).Field)

		stored, err := repositories.NewUserRepository(app.db.DB).GetByID(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.Equal(t, models.UserRoleUser, stored.Role)
	})

	t.Run("email taken", func(t *testing.T) {
		rec := app.do(http.MethodPut, fmt.Sprintf("/user/%d/", alice.ID), aliceToken, map[string]string{"email": "bob@example.com"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "email", decode[response.ErrorBody](t, rec).Field)
	})
}

func TestRoleChangeTakesEffectImmediately(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	carol, carolToken := app.userToken("carol@example.com")

	rec := app.do(http.MethodPost, "/events/", carolToken, map[string]interface{}{"name": "Mine", "total_tickets": 1})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodPut, fmt.Sprintf("/user/%d/role/", carol.ID), carolToken, map[string]string{"role": "Admin"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodPut, fmt.Sprintf("/user/%d/role/", carol.ID), admin, map[string]string{"role": "Superuser"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(http.MethodPut, fmt.Sprintf("/user/%d/role/", carol.ID), admin, map[string]string{"role": "Admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.UserRoleAdmin, decode[*models.User](t, rec).Role)

	// The same token now carries admin rights because the user is re-read.
	rec = app.do(http.MethodPost, "/events/", carolToken, map[string]interface{}{"name": "Mine", "total_tickets": 1})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestDeleteEventWithTickets(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, admin := app.adminToken("admin@example.com")
	_, user := app.userToken("buyer@example.com")

	event := app.createEvent(admin, 10)
	require.Equal(t, http.StatusCreated, app.purchase(user, event.ID, 1).Code)

	rec := app.do(http.MethodDelete, fmt.Sprintf("/events/%d/", event.ID), admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.CodeEventHasTickets, decode[response.ErrorBody](t, rec).Code)

	rec = app.do(http.MethodPut, fmt.Sprintf("/events/%d/", event.ID), admin, map[string]interface{}{"total_tickets": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 10, app.getEvent(admin, event.ID).TotalTickets)
}

func TestAuditTrail(t *testing.T) {
	app := newTestApp(t, testConfig())
	adminUser, admin := app.adminToken("admin@example.com")
	_, user := app.userToken("buyer@example.com")

	event := app.createEvent(admin, 10)
	require.Equal(t, http.StatusCreated, app.purchase(user, event.ID, 3).Code)

	rec := app.do(http.MethodGet, "/audit/", user, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(http.MethodGet, "/audit/?limit=abc", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Eventually(t, func() bool {
		rec := app.do(http.MethodGet, "/audit/?limit=100", admin, nil)
		if rec.Code != http.StatusOK {
			return false
		}

		var entries []*models.AuditLog
		if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
			return false
		}

		actions := map[string]bool{}
		for _, entry := range entries {
			actions[entry.Action] = true
			if entry.Action == models.AuditActionEventCreate {
				if entry.ActorUserID == nil || *entry.ActorUserID != adminUser.ID {
					return false
				}
			}
		}
		return actions[models.AuditActionUserRegister] &&
			actions[models.AuditActionEventCreate] &&
			actions[models.AuditActionTicketPurchase]
	}, 5*time.Second, 50*time.Millisecond)
}

func TestLoginRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.LoginRateLimit = 2
	app := newTestApp(t, cfg)

	for i := 0; i < 2; i++ {
		rec := app.do(http.MethodPost, "/login/", "", map[string]string{"email": "x@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := app.do(http.MethodPost, "/login/", "", map[string]string{"email": "x@example.com", "password": "nope"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, response.CodeRateLimited, decode[response.ErrorBody](t, rec).Code)
}

func TestTrailingSlashIsOptional(t *testing.T) {
	app := newTestApp(t, testConfig())
	_, user := app.userToken("buyer@example.com")

	for _, path := range []string{"/tickets", "/tickets/"} {
		rec := app.do(http.MethodGet, path, user, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
