package gateway

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRouteTableMatch(t *testing.T) {
	table := &RouteTable{}
	table.replace([]Route{
		{Prefix: "/api/drones", Service: "drone-service"},
		{Prefix: "/api/users", Service: "rbac-service"},
		{Prefix: "/api", Service: "general-service"},
	})

	testCases := []struct {
		path    string
		service string
	}{
		{"/api/drones", "drone-service"},
		{"/api/drones/3/commands", "drone-service"},
		{"/api/users/1", "rbac-service"},
		{"/api/preferences", "general-service"},
		{"/api", "general-service"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			route := table.Match(tc.path)
			if route == nil {
				t.Fatalf("no route matched %s", tc.path)
			}
			if route.Service != tc.service {
				t.Errorf("matched %s, want %s", route.Service, tc.service)
			}
		})
	}

	t.Run("no match", func(t *testing.T) {
		if route := table.Match("/metrics"); route != nil {
			t.Errorf("expected no route, matched %s", route.Service)
		}
	})

	t.Run("prefix boundary", func(t *testing.T) {
		// /api/droneshed must not match the /api/drones route
		route := table.Match("/api/droneshed")
		if route == nil {
			t.Fatal("expected the /api fallback route")
		}
		if route.Service != "general-service" {
			t.Errorf("matched %s, want general-service", route.Service)
		}
	})
}

func TestLoadRoutes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yml")

	content := `routes:
  - prefix: /api/auth
    service: rbac-service
    public: true
  - prefix: /api/drones
    service: drone-service
  - prefix: /legacy/v1
    service: general-service
    strip_prefix: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadRoutes(path)
	if err != nil {
		t.Fatalf("failed to load routes: %v", err)
	}

	route := table.Match("/api/auth/login")
	if route == nil || !route.Public {
		t.Errorf("expected /api/auth to be public, got %+v", route)
	}

	route = table.Match("/legacy/v1/things")
	if route == nil || !route.StripPrefix {
		t.Errorf("expected /legacy/v1 to strip its prefix, got %+v", route)
	}
}

func TestLoadRoutesRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	testCases := []struct {
		name    string
		content string
	}{
		{"relative prefix", "routes:\n  - prefix: api/auth\n    service: rbac-service\n"},
		{"missing service", "routes:\n  - prefix: /api/auth\n"},
		{"malformed yaml", "routes: ["},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, "routes.yml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRoutes(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestReloadFailureKeepsRoutes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.yml")

	good := "routes:\n  - prefix: /api/drones\n    service: drone-service\n"
	if err := os.WriteFile(path, []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadRoutes(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("routes: ["), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := table.LoadFile(path); err == nil {
		t.Fatal("expected reload to fail")
	}

	if route := table.Match("/api/drones"); route == nil {
		t.Error("previous routes should survive a failed reload")
	}
}

func TestDefaultRoutes(t *testing.T) {
	table := DefaultRoutes()

	if route := table.Match("/api/auth/login"); route == nil || !route.Public {
		t.Errorf("login should route publicly, got %+v", route)
	}
	if route := table.Match("/api/drones/1/positions"); route == nil || route.Service != "drone-service" {
		t.Errorf("positions should route to drone-service, got %+v", route)
	}

	services := table.Services()
	if len(services) != 3 {
		t.Errorf("services = %v, want 3 distinct upstreams", services)
	}
}
