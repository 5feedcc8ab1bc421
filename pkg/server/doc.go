// Package server provides the HTTP server shared by the RBAC, drone and
// general services.
//
// This package implements the core HTTP server that handles REST API
// requests. It uses gorilla/mux for routing and provides middleware for
// authentication and permission checks.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, db, cache, mqClient, secret, host, port)
//	endpoints.RegisterRBACEndpoints(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Router: HTTP request router
//   - DB: Database connection
//   - Cache: optional Redis cache
//   - MQ: optional RabbitMQ client
//   - JWTMiddleware: access token validation
//   - the store interfaces backing each endpoint group
//
// Each service registers its own endpoint subset via the endpoints
// subpackage; all three share this server skeleton.
package server
