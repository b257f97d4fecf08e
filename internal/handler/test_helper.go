// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/inventory-go/internal/cache"
	"github.com/olegiv/inventory-go/internal/middleware"
	"github.com/olegiv/inventory-go/internal/model"
	"github.com/olegiv/inventory-go/internal/service"
	"github.com/olegiv/inventory-go/internal/session"
	"github.com/olegiv/inventory-go/internal/store"
	"github.com/olegiv/inventory-go/internal/testutil"
)

// testEnv bundles the services and handlers wired against a temp database.
type testEnv struct {
	db         *sql.DB
	queries    *store.Queries
	cache      cache.Cacher
	sm         *scs.SessionManager
	account    *service.AccountService
	categories *service.CategoryService
	products   *service.ProductService

	authHandler       *AuthHandler
	accountHandler    *AccountHandler
	categoriesHandler *CategoriesHandler
	productsHandler   *ProductsHandler
	eventsHandler     *EventsHandler
	healthHandler     *HealthHandler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.TestDB(t)
	c := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() {
		_ = c.Close()
	})

	events := service.NewEventService(db)
	account := service.NewAccountService(db, events)
	categories := service.NewCategoryService(db, c, events)
	products := service.NewProductService(db, c, events, service.DefaultLowStockThreshold)

	sm := session.New(db, true)
	lp := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	t.Cleanup(func() {
		_ = lp.Close()
	})

	return &testEnv{
		db:         db,
		queries:    store.New(db),
		cache:      c,
		sm:         sm,
		account:    account,
		categories: categories,
		products:   products,

		authHandler:       NewAuthHandler(account, events, sm, lp),
		accountHandler:    NewAccountHandler(account, sm),
		categoriesHandler: NewCategoriesHandler(categories),
		productsHandler:   NewProductsHandler(products, categories),
		eventsHandler:     NewEventsHandler(events),
		healthHandler:     NewHealthHandler(db, c),
	}
}

// router builds the same route tree the server uses, minus CSRF and
// rate limiting so tests can drive it without tokens.
func (env *testEnv) router() chi.Router {
	r := chi.NewRouter()
	r.Use(env.sm.LoadAndSave)

	r.Get("/health", env.healthHandler.Health)
	r.Get("/health/live", env.healthHandler.Liveness)
	r.Get("/health/ready", env.healthHandler.Readiness)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RedirectIfAuthenticated(env.sm))
		r.Get("/login", env.authHandler.LoginForm)
		r.Post("/login", env.authHandler.Login)
		r.Post("/register", env.authHandler.Register)
	})
	r.Post("/logout", env.authHandler.Logout)

	r.Route("/dashboard", func(r chi.Router) {
		r.Use(middleware.Auth(env.sm))
		r.Use(middleware.LoadUser(env.sm, env.db))

		r.Get("/", env.productsHandler.Summary)
		r.Get("/stats", env.productsHandler.Stats)
		r.With(middleware.RequireAdmin).Get("/events", env.eventsHandler.List)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", env.categoriesHandler.List)
			r.Post("/", env.categoriesHandler.Create)
			r.Get("/{id}", env.categoriesHandler.Get)
			r.Put("/{id}", env.categoriesHandler.Update)
			r.Delete("/{id}", env.categoriesHandler.Delete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", env.productsHandler.List)
			r.Post("/", env.productsHandler.Create)
			r.Get("/low-stock", env.productsHandler.LowStock)
			r.Get("/{id}", env.productsHandler.Get)
			r.Put("/{id}", env.productsHandler.Update)
			r.Delete("/{id}", env.productsHandler.Delete)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", env.accountHandler.Me)
			r.Put("/profile", env.accountHandler.UpdateProfile)
			r.Put("/password", env.accountHandler.ChangePassword)
		})
	})

	return r
}

// registerUser creates a user directly through the service layer.
func (env *testEnv) registerUser(t *testing.T, email, password, name string) model.User {
	t.Helper()
	user, err := env.account.Register(context.Background(), service.RegisterParams{
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
		Name:            name,
	})
	if err != nil {
		t.Fatalf("register user: %v", err)
	}
	return user
}

// loginClient registers a fixture user, logs it in through the router,
// and returns a client carrying the session cookie.
func (env *testEnv) loginClient(t *testing.T, srv *httptest.Server) *http.Client {
	t.Helper()
	env.registerUser(t, "admin@example.com", "password123", "Admin")
	client := newClientWithJar(t, srv.Client())
	resp := postJSON(t, client, srv.URL+"/login",
		`{"email":"admin@example.com","password":"password123"}`)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fixture login failed with status %d", resp.StatusCode)
	}
	return client
}

// promoteToAdmin upgrades a fixture user to the admin role.
func (env *testEnv) promoteToAdmin(t *testing.T, email string) {
	t.Helper()
	if _, err := env.db.Exec(`UPDATE users SET role = ? WHERE email = ?`, model.RoleAdmin, email); err != nil {
		t.Fatalf("promote user to admin: %v", err)
	}
}

// withUser places a user into the request context the way LoadUser does.
func withUser(r *http.Request, user model.User) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUser, user)
	return r.WithContext(ctx)
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// newJSONRequest creates an HTTP request with JSON body and optional URL params.
func newJSONRequest(t *testing.T, method, path, body string, params map[string]string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if len(params) > 0 {
		req = requestWithURLParams(req, params)
	}
	return req
}

// dataResponse is a generic wrapper for API responses with a "data" field.
type dataResponse[T any] struct {
	Data T     `json:"data"`
	Meta *Meta `json:"meta"`
}

// unmarshalData unmarshals a JSON response body into the specified type.
func unmarshalData[T any](t *testing.T, body []byte) (T, *Meta) {
	t.Helper()
	var resp dataResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp.Data, resp.Meta
}

// unmarshalError unmarshals a JSON error response body.
func unmarshalError(t *testing.T, body []byte) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v", err)
	}
	return resp.Error
}

// newClientWithJar clones the test server client and attaches a cookie jar
// so session cookies survive across requests.
func newClientWithJar(t *testing.T, base *http.Client) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	c := *base
	c.Jar = jar
	return &c
}

// postJSON sends a POST request with a JSON body.
func postJSON(t *testing.T, client *http.Client, url, body string) *http.Response {
	t.Helper()
	return doJSON(t, client, http.MethodPost, url, body)
}

// doJSON sends a request with a JSON body using the given method.
func doJSON(t *testing.T, client *http.Client, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("failed to build %s %s: %v", method, url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	return resp
}

// readBody reads and returns the full response body.
func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return b
}

// executeHandler executes a handler and returns the response recorder.
func executeHandler(handler func(http.ResponseWriter, *http.Request), req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}
