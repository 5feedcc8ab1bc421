package gateway

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/wenhsiu/aiot-in-go/pkg/discovery"
	"github.com/wenhsiu/aiot-in-go/pkg/log"
	"github.com/wenhsiu/aiot-in-go/pkg/metrics"
	"github.com/wenhsiu/aiot-in-go/pkg/token"
)

// Identity headers injected for upstream services. Whatever the client
// sent under these names is dropped before forwarding.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserName  = "X-User-Name"
	HeaderUserRoles = "X-User-Roles"
)

// Gateway proxies API requests to healthy upstream instances
type Gateway struct {
	routes   *RouteTable
	resolver *discovery.Resolver
	secret   []byte
	client   *http.Client
	srv      *http.Server
}

// New creates a gateway over the given route table and resolver
func New(routes *RouteTable, resolver *discovery.Resolver, secret []byte) *Gateway {
	return &Gateway{
		routes:   routes,
		resolver: resolver,
		secret:   secret,
		client: &http.Client{
			Timeout: 30 * time.Second,
			// Redirects are passed through to the client untouched
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Handler returns the gateway's HTTP handler
func (g *Gateway) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/", handleDocs()).Methods("GET")
	router.HandleFunc("/health", g.handleHealth).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.PathPrefix("/").HandlerFunc(g.handleProxy)
	return handlers.LoggingHandler(os.Stdout, router)
}

// Start runs the gateway server until Shutdown is called
func (g *Gateway) Start(host, port string) error {
	g.srv = &http.Server{
		Handler:      g.Handler(),
		Addr:         fmt.Sprintf("%s:%s", host, port),
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return g.srv.ListenAndServe()
}

// Shutdown stops the gateway server
func (g *Gateway) Shutdown() error {
	if g.srv == nil {
		return nil
	}
	return g.srv.Close()
}

type upstreamHealth struct {
	Service   string   `json:"service"`
	Instances []string `json:"instances"`
}

func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	upstreams := make([]upstreamHealth, 0)
	for _, service := range g.routes.Services() {
		upstreams = append(upstreams, upstreamHealth{
			Service:   service,
			Instances: g.resolver.Instances(service),
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"service":   "gateway",
		"upstreams": upstreams,
	})
}

func (g *Gateway) handleProxy(w http.ResponseWriter, r *http.Request) {
	route := g.routes.Match(r.URL.Path)
	if route == nil {
		respondWithError(w, http.StatusNotFound, "no route for path")
		return
	}

	// Client-supplied identity headers are never trusted
	r.Header.Del(HeaderUserID)
	r.Header.Del(HeaderUserName)
	r.Header.Del(HeaderUserRoles)

	if !route.Public {
		authHeader := r.Header.Get("Authorization")
		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" {
			respondWithError(w, http.StatusUnauthorized, "Authorization missing")
			return
		}

		claims, err := token.Parse(g.secret, tokenStr)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication failed")
			return
		}

		r.Header.Set(HeaderUserID, strconv.FormatUint(uint64(claims.UserID), 10))
		r.Header.Set(HeaderUserName, claims.Username)
		r.Header.Set(HeaderUserRoles, strings.Join(claims.Roles, ","))
	}

	g.forward(w, r, route)
}

// forward sends the request to a healthy instance of the route's service.
// On a transport error it retries once against a different instance.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request, route *Route) {
	logger := log.WithComponent("gateway")

	path := r.URL.Path
	if route.StripPrefix {
		path = strings.TrimPrefix(path, route.Prefix)
		if path == "" {
			path = "/"
		}
	}

	// Buffer the body so a retry can resend it
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(r.Body)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
	}

	var lastErr error
	tried := map[string]bool{}
	for attempt := 0; attempt < 2; attempt++ {
		addr, err := g.resolver.Pick(route.Service)
		if err != nil {
			metrics.ProxyRequestsTotal.WithLabelValues(route.Service, "no_instance").Inc()
			respondWithError(w, http.StatusBadGateway, "no healthy upstream instance")
			return
		}
		if tried[addr] {
			break
		}
		tried[addr] = true

		resp, err := g.send(r, addr, path, body)
		if err != nil {
			lastErr = err
			logger.Warn().Err(err).
				Str("upstream", route.Service).
				Str("instance", addr).
				Msg("upstream request failed")
			continue
		}

		defer func() { _ = resp.Body.Close() }()
		for key, values := range resp.Header {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.WriteHeader(resp.StatusCode)
		_, _ = io.Copy(w, resp.Body)

		metrics.ProxyRequestsTotal.WithLabelValues(route.Service, "ok").Inc()
		return
	}

	logger.Error().Err(lastErr).Str("upstream", route.Service).Msg("all upstream attempts failed")
	metrics.ProxyRequestsTotal.WithLabelValues(route.Service, "upstream_error").Inc()
	respondWithError(w, http.StatusBadGateway, "upstream request failed")
}

func (g *Gateway) send(r *http.Request, addr, path string, body []byte) (*http.Response, error) {
	url := fmt.Sprintf("http://%s%s", addr, path)
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	outbound, err := http.NewRequestWithContext(r.Context(), r.Method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	outbound.Header = r.Header.Clone()
	outbound.Header.Del("Connection")
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		outbound.Header.Set("X-Forwarded-For", host)
	}

	return g.client.Do(outbound)
}
