package gateway

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/wenhsiu/aiot-in-go/pkg/log"
)

// Route maps a path prefix to an upstream service
type Route struct {
	// Prefix is the request path prefix to match
	Prefix string `yaml:"prefix"`

	// Service is the upstream service name registered in Consul
	Service string `yaml:"service"`

	// StripPrefix removes the matched prefix before forwarding
	StripPrefix bool `yaml:"strip_prefix"`

	// Public routes skip bearer token verification at the gateway
	Public bool `yaml:"public"`
}

type routeFile struct {
	Routes []Route `yaml:"routes"`
}

// RouteTable holds the active routes. Lookups take a read lock so the
// table can be swapped by the file watcher while serving.
type RouteTable struct {
	mu     sync.RWMutex
	routes []Route
}

// DefaultRoutes returns the built-in route table for the standard
// three-service deployment
func DefaultRoutes() *RouteTable {
	table := &RouteTable{}
	table.replace([]Route{
		{Prefix: "/api/auth", Service: "rbac-service", Public: true},
		{Prefix: "/api/users", Service: "rbac-service"},
		{Prefix: "/api/roles", Service: "rbac-service"},
		{Prefix: "/api/permissions", Service: "rbac-service"},
		{Prefix: "/api/drones", Service: "drone-service"},
		{Prefix: "/api/preferences", Service: "general-service"},
	})
	return table
}

// LoadRoutes reads a route table from a yaml file
func LoadRoutes(path string) (*RouteTable, error) {
	table := &RouteTable{}
	if err := table.LoadFile(path); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadFile replaces the table contents with routes parsed from path
func (t *RouteTable) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read route table %s: %w", path, err)
	}

	var file routeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse route table %s: %w", path, err)
	}

	for i, route := range file.Routes {
		if !strings.HasPrefix(route.Prefix, "/") {
			return fmt.Errorf("route %d: prefix %q must start with /", i, route.Prefix)
		}
		if route.Service == "" {
			return fmt.Errorf("route %d: service is required", i)
		}
	}

	t.replace(file.Routes)
	return nil
}

func (t *RouteTable) replace(routes []Route) {
	// Longest prefix first so Match can return the first hit
	sorted := append([]Route(nil), routes...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Prefix) > len(sorted[j].Prefix)
	})

	t.mu.Lock()
	t.routes = sorted
	t.mu.Unlock()
}

// Routes returns a copy of the active routes
func (t *RouteTable) Routes() []Route {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Route(nil), t.routes...)
}

// Match returns the route with the longest prefix matching path, or nil
func (t *RouteTable) Match(path string) *Route {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.routes {
		prefix := t.routes[i].Prefix
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			route := t.routes[i]
			return &route
		}
	}
	return nil
}

// Services returns the distinct upstream service names in the table
func (t *RouteTable) Services() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	seen := map[string]bool{}
	var services []string
	for _, route := range t.routes {
		if !seen[route.Service] {
			seen[route.Service] = true
			services = append(services, route.Service)
		}
	}
	return services
}

// Watch reloads the table when the file changes, until ctx is cancelled.
// A reload failure keeps the previous table.
func (t *RouteTable) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch route table %s: %w", path, err)
	}

	logger := log.WithComponent("gateway")

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
					if err := t.LoadFile(path); err != nil {
						logger.Error().Err(err).Msg("route table reload failed, keeping previous routes")
						continue
					}
					logger.Info().Str("path", path).Msg("route table reloaded")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("route table watcher error")
			}
		}
	}()

	return nil
}
