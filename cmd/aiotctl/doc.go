// Package main provides aiotctl, the CLI for the aiot drone fleet backend.
//
// The backend is organized into several packages:
//
//   - pkg/server: HTTP server and routing
//   - pkg/server/endpoints: REST API endpoint handlers
//   - pkg/server/store: storage interfaces and their GORM implementations
//   - pkg/gateway: API gateway (routing, identity injection, proxying)
//   - pkg/discovery: Consul registration and instance resolution
//   - pkg/mq: RabbitMQ topology, publishing and consuming
//   - pkg/cache: Redis position and permission caches
//   - pkg/archiver: telemetry archive worker
//   - pkg/token: JWT issuing and verification
//   - pkg/model: database models
//   - pkg/audit: audit logging
//   - pkg/config: configuration management
//
// # Quick Start
//
//	export DATABASE_URL=postgres://...
//	export AIOT_TOKEN_SECRET=$(openssl rand -hex 32)
//
//	# Create the schema
//	aiotctl db migrate
//
//	# Bootstrap an admin account
//	aiotctl user create admin --password changeme --role admin
//
//	# Start the services
//	aiotctl server rbac &
//	aiotctl server drone &
//	aiotctl server general &
//	aiotctl gateway
//
// # Environment Variables
//
//   - DATABASE_URL: PostgreSQL connection string (required)
//   - AIOT_TOKEN_SECRET: HMAC secret for access tokens (required)
//   - AUDIT_DATABASE_URL: separate Postgres sink for audit messages
//   - REDIS_URL: Redis connection string (caching disabled when unset)
//   - AMQP_URL: RabbitMQ connection string (messaging disabled when unset)
//   - CONSUL_HTTP_ADDR: Consul agent address (discovery disabled when unset)
//   - AIOT_LOG_LEVEL: log level (debug, info, warn, error)
//   - AIOT_CONFIG_PATH: directory holding aiot.yml (default /etc/aiot/config)
package main
