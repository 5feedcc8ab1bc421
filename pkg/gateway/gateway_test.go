package gateway

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/wenhsiu/aiot-in-go/pkg/discovery"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/token"
)

var gatewaySecret = []byte("gateway-test-secret")

type echo struct {
	Path      string `json:"path"`
	Query     string `json:"query"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	UserRoles string `json:"user_roles"`
}

// newEchoUpstream returns an httptest server that reports what it received
func newEchoUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(echo{
			Path:      r.URL.Path,
			Query:     r.URL.RawQuery,
			UserID:    r.Header.Get(HeaderUserID),
			UserName:  r.Header.Get(HeaderUserName),
			UserRoles: r.Header.Get(HeaderUserRoles),
		})
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func newTestGateway(t *testing.T, routes *RouteTable) (*Gateway, *discovery.Resolver) {
	t.Helper()
	resolver := discovery.NewResolver(nil, time.Minute)
	return New(routes, resolver, gatewaySecret), resolver
}

func bearer(t *testing.T, userID uint, username string, roles ...string) string {
	t.Helper()
	signed, err := token.Issue(gatewaySecret, &model.User{ID: userID, Username: username}, roles, "test", time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return "Bearer " + signed
}

func TestProxyInjectsIdentity(t *testing.T) {
	upstream := newEchoUpstream(t)

	gw, resolver := newTestGateway(t, DefaultRoutes())
	resolver.SetInstances("drone-service", []string{strings.TrimPrefix(upstream.URL, "http://")})

	req := httptest.NewRequest("GET", "/api/drones?limit=10", nil)
	req.Header.Set("Authorization", bearer(t, 42, "operator", "operator", "pilot"))
	// A forged identity header must not reach the upstream
	req.Header.Set(HeaderUserID, "1")

	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var got echo
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode upstream echo: %v", err)
	}
	if got.Path != "/api/drones" {
		t.Errorf("path = %q, want /api/drones", got.Path)
	}
	if got.Query != "limit=10" {
		t.Errorf("query = %q, want limit=10", got.Query)
	}
	if got.UserID != "42" {
		t.Errorf("user id = %q, want 42", got.UserID)
	}
	if got.UserName != "operator" {
		t.Errorf("user name = %q, want operator", got.UserName)
	}
	if got.UserRoles != "operator,pilot" {
		t.Errorf("user roles = %q, want operator,pilot", got.UserRoles)
	}
}

func TestProxyRequiresToken(t *testing.T) {
	upstream := newEchoUpstream(t)

	gw, resolver := newTestGateway(t, DefaultRoutes())
	resolver.SetInstances("drone-service", []string{strings.TrimPrefix(upstream.URL, "http://")})

	testCases := []struct {
		name   string
		header string
	}{
		{"missing", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage", "Bearer not-a-token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/drones", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rr := httptest.NewRecorder()
			gw.Handler().ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rr.Code)
			}
		})
	}
}

func TestProxyPublicRoute(t *testing.T) {
	upstream := newEchoUpstream(t)

	gw, resolver := newTestGateway(t, DefaultRoutes())
	resolver.SetInstances("rbac-service", []string{strings.TrimPrefix(upstream.URL, "http://")})

	req := httptest.NewRequest("POST", "/api/auth/login", strings.NewReader(`{"username":"u","password":"p"}`))
	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 without a token on a public route, got %d", rr.Code)
	}
}

func TestProxyNoInstances(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultRoutes())

	req := httptest.NewRequest("GET", "/api/drones", nil)
	req.Header.Set("Authorization", bearer(t, 1, "operator"))

	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rr.Code)
	}
}

func TestProxyUnknownRoute(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultRoutes())

	req := httptest.NewRequest("GET", "/api/nothing-here", nil)
	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestProxyRetriesAnotherInstance(t *testing.T) {
	upstream := newEchoUpstream(t)

	// Grab a port that nothing listens on
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	deadAddr := listener.Addr().String()
	_ = listener.Close()

	gw, resolver := newTestGateway(t, DefaultRoutes())
	resolver.SetInstances("drone-service", []string{deadAddr, strings.TrimPrefix(upstream.URL, "http://")})

	req := httptest.NewRequest("GET", "/api/drones", nil)
	req.Header.Set("Authorization", bearer(t, 1, "operator"))

	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected the retry to reach the live instance, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestProxyStripPrefix(t *testing.T) {
	upstream := newEchoUpstream(t)

	table := &RouteTable{}
	table.replace([]Route{
		{Prefix: "/legacy/v1", Service: "general-service", StripPrefix: true, Public: true},
	})

	gw, resolver := newTestGateway(t, table)
	resolver.SetInstances("general-service", []string{strings.TrimPrefix(upstream.URL, "http://")})

	req := httptest.NewRequest("GET", "/legacy/v1/preferences", nil)
	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var got echo
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Path != "/preferences" {
		t.Errorf("path = %q, want /preferences", got.Path)
	}
}

func TestGatewayHealth(t *testing.T) {
	gw, resolver := newTestGateway(t, DefaultRoutes())
	resolver.SetInstances("drone-service", []string{"10.0.0.1:3052"})

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "drone-service") {
		t.Errorf("health body should list upstreams: %s", rr.Body.String())
	}
}

func TestDocsPage(t *testing.T) {
	gw, _ := newTestGateway(t, DefaultRoutes())

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	gw.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q, want text/html", ct)
	}
	if !strings.Contains(rr.Body.String(), "<h1") {
		t.Error("docs page should contain rendered markdown")
	}
}
