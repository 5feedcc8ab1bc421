/*
Package gateway implements the API gateway.

The gateway matches request paths against a yaml route table, verifies
the bearer token locally, and forwards the request to a healthy upstream
instance chosen round-robin from the discovery resolver. The caller's
identity travels to the services as X-User-* headers, which the gateway
strips from inbound requests so clients cannot forge them.

The route table can be hot reloaded: Watch re-reads the file whenever it
changes and swaps the table without dropping in-flight requests.
*/
package gateway
