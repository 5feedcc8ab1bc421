package discovery

import (
	"fmt"
	"os"

	consul "github.com/hashicorp/consul/api"

	"github.com/wenhsiu/aiot-in-go/pkg/log"
)

// Registration describes one service instance registered with Consul
type Registration struct {
	Name    string
	ID      string
	Address string
	Port    int
	Tags    []string
}

// Client wraps the Consul agent API
type Client struct {
	agent  *consul.Agent
	health *consul.Health
}

// Connect creates a Consul client from the standard CONSUL_HTTP_ADDR
// environment. Returns nil (discovery disabled) when the variable is unset.
func Connect() (*Client, error) {
	if os.Getenv("CONSUL_HTTP_ADDR") == "" {
		return nil, nil
	}

	client, err := consul.NewClient(consul.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create consul client: %w", err)
	}

	return &Client{agent: client.Agent(), health: client.Health()}, nil
}

// NewWithClient wraps an existing Consul client. Used by tests.
func NewWithClient(client *consul.Client) *Client {
	return &Client{agent: client.Agent(), health: client.Health()}
}

// Register registers a service instance with an HTTP health check against
// /api/status. Registration failure is logged but never blocks startup.
func (c *Client) Register(reg Registration) {
	if c == nil {
		return
	}

	if reg.ID == "" {
		reg.ID = fmt.Sprintf("%s-%s-%d", reg.Name, reg.Address, reg.Port)
	}

	err := c.agent.ServiceRegister(&consul.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Tags:    reg.Tags,
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/api/status", reg.Address, reg.Port),
			Interval:                       "10s",
			Timeout:                        "5s",
			DeregisterCriticalServiceAfter: "30s",
		},
	})
	if err != nil {
		logger := log.WithComponent("discovery")
		logger.Warn().Err(err).
			Str("service", reg.Name).
			Msg("service registration failed, continuing without discovery")
		return
	}

	logger := log.WithComponent("discovery")
	logger.Info().
		Str("service", reg.Name).
		Str("id", reg.ID).
		Msg("registered with consul")
}

// Deregister removes a service instance. Called on shutdown.
func (c *Client) Deregister(id string) {
	if c == nil {
		return
	}
	if err := c.agent.ServiceDeregister(id); err != nil {
		logger := log.WithComponent("discovery")
		logger.Warn().Err(err).Str("id", id).Msg("service deregistration failed")
	}
}
