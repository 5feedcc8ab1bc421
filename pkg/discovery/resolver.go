package discovery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wenhsiu/aiot-in-go/pkg/log"
	"github.com/wenhsiu/aiot-in-go/pkg/metrics"
)

// ErrNoInstances is returned by Pick when no healthy instance is known
var ErrNoInstances = fmt.Errorf("no healthy instances available")

// Resolver maintains a cache of healthy instances per service, refreshed by
// polling the Consul health API, and hands them out round-robin.
type Resolver struct {
	client   *Client
	interval time.Duration

	mu        sync.RWMutex
	instances map[string][]string
	next      map[string]int
}

// NewResolver creates a resolver polling every interval
func NewResolver(client *Client, interval time.Duration) *Resolver {
	return &Resolver{
		client:    client,
		interval:  interval,
		instances: map[string][]string{},
		next:      map[string]int{},
	}
}

// Watch starts the poll loop for the named services until ctx is cancelled.
// The first refresh happens before Watch returns so callers start with a
// populated cache.
func (r *Resolver) Watch(ctx context.Context, services ...string) {
	r.refresh(services)

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.refresh(services)
			}
		}
	}()
}

func (r *Resolver) refresh(services []string) {
	if r.client == nil {
		return
	}

	logger := log.WithComponent("discovery")
	for _, service := range services {
		entries, _, err := r.client.health.Service(service, "", true, nil)
		if err != nil {
			// Keep the last known instances on poll failure
			logger.Warn().Err(err).Str("service", service).Msg("health poll failed")
			continue
		}

		addrs := make([]string, 0, len(entries))
		for _, entry := range entries {
			addr := entry.Service.Address
			if addr == "" {
				addr = entry.Node.Address
			}
			addrs = append(addrs, fmt.Sprintf("%s:%d", addr, entry.Service.Port))
		}

		r.mu.Lock()
		r.instances[service] = addrs
		r.mu.Unlock()

		metrics.UpstreamInstances.WithLabelValues(service).Set(float64(len(addrs)))
	}
}

// SetInstances replaces the cached instances for a service. Used by tests
// and static (discovery-disabled) deployments.
func (r *Resolver) SetInstances(service string, addrs []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[service] = addrs
}

// Instances returns a copy of the healthy addresses known for a service
func (r *Resolver) Instances(service string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.instances[service]...)
}

// Pick returns the next healthy "host:port" for a service, round-robin
func (r *Resolver) Pick(service string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrs := r.instances[service]
	if len(addrs) == 0 {
		return "", ErrNoInstances
	}

	addr := addrs[r.next[service]%len(addrs)]
	r.next[service]++
	return addr, nil
}
