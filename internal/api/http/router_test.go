package http

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/optinhub/optin-manager/internal/api/http/handlers"
	"github.com/optinhub/optin-manager/internal/auth"
	"github.com/optinhub/optin-manager/internal/config"
	"github.com/optinhub/optin-manager/internal/domain"
	"github.com/optinhub/optin-manager/internal/events"
	"github.com/optinhub/optin-manager/internal/observability"
	"github.com/optinhub/optin-manager/internal/repository"
	"github.com/optinhub/optin-manager/internal/service"
)

type testEnv struct {
	app     *fiber.App
	tokens  *auth.TokenManager
	metrics *observability.Metrics
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("down") }

func newTestEnv(t *testing.T, deps map[string]handlers.Pinger) *testEnv {
	t.Helper()
	store := repository.NewMemoryStore()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	authService := service.NewAuthService(config.AuthConfig{JWTSecret: "router-secret", AccessTokenTTLMinutes: 5}, store.Users(), dispatcher)
	userService := service.NewUserService(store.Users(), dispatcher, 4)
	if _, err := userService.EnsureAdmin(context.Background(), "root@example.com", "rootpw"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	metrics := observability.NewMetrics()
	app := fiber.New()
	RegisterMiddlewares(app, logger, metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("optin-manager", "test", deps),
		Auth:           handlers.NewAuthHandler(authService),
		Session:        handlers.NewSessionHandler(),
		Phone:          handlers.NewPhoneHandler("US"),
		Users:          handlers.NewUsersHandler(userService),
		Campaigns:      handlers.NewCampaignsHandler(service.NewCampaignService(store.Campaigns(), dispatcher)),
		Providers:      handlers.NewProvidersHandler(service.NewProviderService(store.ProviderSettings(), store.ProviderStatus(), dispatcher)),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager()),
	})
	return &testEnv{app: app, tokens: authService.TokenManager(), metrics: metrics}
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]any
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return resp.StatusCode, out
}

func (e *testEnv) token(t *testing.T, role domain.Role) string {
	t.Helper()
	token, _, err := e.tokens.GenerateToken("caller-"+string(role), role)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("no data object in %v", body)
	}
	return d
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestSession(t *testing.T) {
	env := newTestEnv(t, nil)
	unsigned := "h." + base64.RawURLEncoding.EncodeToString([]byte(`{"scope":"admin","exp":9999999999}`)) + ".s"
	expired := "h." + base64.RawURLEncoding.EncodeToString([]byte(`{"scope":"admin","exp":1}`)) + ".s"

	tests := []struct {
		name          string
		token         string
		authenticated bool
		isAdmin       bool
		isSupport     bool
	}{
		{"no token", "", false, false, false},
		{"signed support", env.token(t, domain.RoleSupport), true, false, true},
		{"payload only admin", unsigned, true, true, false},
		{"expired admin", expired, false, true, false},
		{"garbage", "nope", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.do(t, nethttp.MethodGet, "/session", tt.token, "")
			if status != nethttp.StatusOK {
				t.Fatalf("status = %d", status)
			}
			d := data(t, body)
			if d["authenticated"] != tt.authenticated || d["is_admin"] != tt.isAdmin || d["is_support"] != tt.isSupport {
				t.Errorf("session = %v", d)
			}
		})
	}
}

func TestPhoneNormalize(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, nethttp.MethodPost, "/phone/normalize", "", `{"input":"(555) 123-4567"}`)
	if status != nethttp.StatusOK {
		t.Fatalf("status = %d", status)
	}
	d := data(t, body)
	if d["e164"] != "+15551234567" || d["valid"] != true {
		t.Errorf("normalize = %v", d)
	}

	_, body = env.do(t, nethttp.MethodPost, "/phone/normalize", "", `{"input":""}`)
	if d := data(t, body); d["e164"] != "" || d["valid"] != false {
		t.Errorf("empty normalize = %v", d)
	}

	status, body = env.do(t, nethttp.MethodPost, "/phone/normalize", "", `{`)
	if status != nethttp.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Errorf("bad payload = %d %v", status, body)
	}
}

func TestLoginAndUsers(t *testing.T) {
	env := newTestEnv(t, nil)

	status, body := env.do(t, nethttp.MethodPost, "/auth/login", "", `{"email":"root@example.com","password":"rootpw"}`)
	if status != nethttp.StatusOK {
		t.Fatalf("login status = %d %v", status, body)
	}
	authData, _ := data(t, body)["auth"].(map[string]any)
	adminToken, _ := authData["token"].(string)
	if !auth.IsAdmin(adminToken) {
		t.Fatal("login did not return an admin token")
	}

	status, body = env.do(t, nethttp.MethodPost, "/users", adminToken,
		`{"name":"Sam","email":"sam@example.com","phone":"+44 20 7946 0958","role":"support","password":"pw"}`)
	if status != nethttp.StatusCreated {
		t.Fatalf("create status = %d %v", status, body)
	}
	created := data(t, body)
	if created["phone"] != "+442079460958" {
		t.Errorf("phone = %v", created["phone"])
	}
	if _, leaked := created["password_hash"]; leaked {
		t.Error("password hash exposed")
	}

	status, body = env.do(t, nethttp.MethodPost, "/users", adminToken,
		`{"name":"Bad","email":"bad@example.com","phone":"123","role":"support","password":"pw"}`)
	if status != nethttp.StatusBadRequest || errorCode(body) != "VALIDATION_FAILED" {
		t.Errorf("short phone = %d %v", status, body)
	}

	support := env.token(t, domain.RoleSupport)
	status, _ = env.do(t, nethttp.MethodGet, "/users", support, "")
	if status != nethttp.StatusOK {
		t.Errorf("support list status = %d", status)
	}
	status, body = env.do(t, nethttp.MethodPost, "/users", support, `{"name":"x"}`)
	if status != nethttp.StatusForbidden || errorCode(body) != "FORBIDDEN" {
		t.Errorf("support create = %d %v", status, body)
	}

	id, _ := created["id"].(string)
	status, _ = env.do(t, nethttp.MethodDelete, "/users/"+id, adminToken, "")
	if status != nethttp.StatusNoContent {
		t.Errorf("delete status = %d", status)
	}
	status, body = env.do(t, nethttp.MethodDelete, "/users/"+id, adminToken, "")
	if status != nethttp.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Errorf("second delete = %d %v", status, body)
	}
	status, body = env.do(t, nethttp.MethodDelete, "/users/not-a-uuid", adminToken, "")
	if status != nethttp.StatusNotFound || errorCode(body) != "NOT_FOUND" {
		t.Errorf("malformed id delete = %d %v", status, body)
	}

	status, _ = env.do(t, nethttp.MethodPost, "/auth/login", "", `{"email":"root@example.com","password":"nope"}`)
	if status != nethttp.StatusUnauthorized {
		t.Errorf("bad login status = %d", status)
	}
}

func TestProtectedRoutes_RequireVerifiedToken(t *testing.T) {
	env := newTestEnv(t, nil)
	unsigned := "h." + base64.RawURLEncoding.EncodeToString([]byte(`{"scope":"admin"}`)) + ".s"

	for _, token := range []string{"", unsigned} {
		status, body := env.do(t, nethttp.MethodGet, "/campaigns", token, "")
		if status != nethttp.StatusUnauthorized || errorCode(body) != "UNAUTHORIZED" {
			t.Errorf("token %q: %d %v", token, status, body)
		}
	}
}

func TestCampaignsAndProviders(t *testing.T) {
	env := newTestEnv(t, nil)
	adminToken := env.token(t, domain.RoleAdmin)
	support := env.token(t, domain.RoleSupport)

	status, body := env.do(t, nethttp.MethodPost, "/campaigns", adminToken, `{"name":"Spring","keyword":"join"}`)
	if status != nethttp.StatusCreated || data(t, body)["keyword"] != "JOIN" {
		t.Fatalf("create campaign = %d %v", status, body)
	}
	status, body = env.do(t, nethttp.MethodPost, "/campaigns", adminToken, `{"name":"Again","keyword":"JOIN"}`)
	if status != nethttp.StatusConflict || errorCode(body) != "CONFLICT" {
		t.Errorf("duplicate keyword = %d %v", status, body)
	}
	status, body = env.do(t, nethttp.MethodGet, "/campaigns", support, "")
	if status != nethttp.StatusOK {
		t.Fatalf("list campaigns = %d", status)
	}
	if list, _ := body["data"].([]any); len(list) != 1 {
		t.Errorf("campaigns = %v", body["data"])
	}

	status, _ = env.do(t, nethttp.MethodGet, "/providers/smtp", support, "")
	if status != nethttp.StatusForbidden {
		t.Errorf("support provider status = %d", status)
	}

	status, body = env.do(t, nethttp.MethodPost, "/providers/smtp/test", adminToken, "")
	if status != nethttp.StatusConflict {
		t.Errorf("test before configure = %d %v", status, body)
	}
	status, body = env.do(t, nethttp.MethodPut, "/providers/SMTP/credentials", adminToken, `{"values":{"host":"smtp.example.com"}}`)
	if status != nethttp.StatusOK || data(t, body)["configured"] != true {
		t.Errorf("save credentials = %d %v", status, body)
	}
	status, body = env.do(t, nethttp.MethodPost, "/providers/smtp/test", adminToken, "")
	if status != nethttp.StatusOK || data(t, body)["tested"] != true {
		t.Errorf("test = %d %v", status, body)
	}
	status, _ = env.do(t, nethttp.MethodGet, "/providers/fax", adminToken, "")
	if status != nethttp.StatusNotFound {
		t.Errorf("unknown provider = %d", status)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, map[string]handlers.Pinger{"redis": failingPinger{}})

	status, _ := env.do(t, nethttp.MethodGet, "/health/live", "", "")
	if status != nethttp.StatusOK {
		t.Errorf("live = %d", status)
	}
	status, body := env.do(t, nethttp.MethodGet, "/health/ready", "", "")
	if status != nethttp.StatusServiceUnavailable || errorCode(body) != "DEPENDENCY_UNAVAILABLE" {
		t.Errorf("ready = %d %v", status, body)
	}

	if len(env.metrics.Snapshot().Requests) == 0 {
		t.Error("requests not recorded in metrics")
	}
}
