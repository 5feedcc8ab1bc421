package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wenhsiu/aiot-in-go/pkg/config"
	"github.com/wenhsiu/aiot-in-go/pkg/discovery"
	"github.com/wenhsiu/aiot-in-go/pkg/gateway"
	"github.com/wenhsiu/aiot-in-go/pkg/log"
	"github.com/wenhsiu/aiot-in-go/pkg/token"
)

// gatewayCmd represents the gateway command
var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the API gateway",
	Long: `Run the API gateway.

The gateway verifies bearer tokens, resolves healthy service instances
from Consul and proxies API requests with the caller's identity attached
as headers. Without CONSUL_HTTP_ADDR it falls back to the default local
service addresses.

The route table can come from a yaml file via --routes; the file is hot
reloaded when it changes.

Example:
  aiotctl gateway
  aiotctl gateway --routes /etc/aiot/routes.yml --port 8000`,
	Run: func(cmd *cobra.Command, args []string) {
		runGateway(cmd)
	},
}

func init() {
	rootCmd.AddCommand(gatewayCmd)
	gatewayCmd.Flags().StringP("port", "p", strconv.Itoa(config.DefaultGatewayPort), "gateway listen port")
	gatewayCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "gateway bind address")
	gatewayCmd.Flags().StringP("routes", "r", "", "path to a yaml route table (default: built-in routes)")
	gatewayCmd.Flags().Duration("poll-interval", 10*time.Second, "discovery poll interval")
}

func runGateway(cmd *cobra.Command) {
	logger := log.WithService("gateway")

	secret, err := token.Secret()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	routesPath, _ := cmd.Flags().GetString("routes")
	routes := gateway.DefaultRoutes()
	if routesPath != "" {
		routes, err = gateway.LoadRoutes(routesPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load routes: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if routesPath != "" {
		if err := routes.Watch(ctx, routesPath); err != nil {
			logger.Warn().Err(err).Msg("route table hot reload unavailable")
		}
	}

	consulClient, err := discovery.Connect()
	if err != nil {
		logger.Warn().Err(err).Msg("consul unavailable, using static upstream addresses")
		consulClient = nil
	}

	pollInterval, _ := cmd.Flags().GetDuration("poll-interval")
	resolver := discovery.NewResolver(consulClient, pollInterval)
	if consulClient != nil {
		resolver.Watch(ctx, routes.Services()...)
	} else {
		// Without discovery, assume the default single-instance layout
		resolver.SetInstances("rbac-service", []string{fmt.Sprintf("127.0.0.1:%d", config.DefaultRBACPort)})
		resolver.SetInstances("drone-service", []string{fmt.Sprintf("127.0.0.1:%d", config.DefaultDronePort)})
		resolver.SetInstances("general-service", []string{fmt.Sprintf("127.0.0.1:%d", config.DefaultGeneralPort)})
	}

	gw := gateway.New(routes, resolver, secret)

	host, _ := cmd.Flags().GetString("bind-address")
	port, _ := cmd.Flags().GetString("port")

	go func() {
		logger.Info().Str("addr", host+":"+port).Msg("gateway listening")
		if err := gw.Start(host, port); err != nil {
			logger.Error().Err(err).Msg("gateway stopped")
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	_ = gw.Shutdown()
}
