// Package discovery handles Consul service registration and resolution.
//
// Each service registers itself on startup with an HTTP health check and the
// gateway resolves upstream instances through a polling Resolver. A nil
// *Client disables discovery entirely, which keeps single-node deployments
// working without a Consul agent.
package discovery
