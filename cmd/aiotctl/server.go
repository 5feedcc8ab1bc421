package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wenhsiu/aiot-in-go/pkg/cache"
	"github.com/wenhsiu/aiot-in-go/pkg/config"
	"github.com/wenhsiu/aiot-in-go/pkg/db"
	"github.com/wenhsiu/aiot-in-go/pkg/discovery"
	"github.com/wenhsiu/aiot-in-go/pkg/log"
	"github.com/wenhsiu/aiot-in-go/pkg/metrics"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/mq"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	"github.com/wenhsiu/aiot-in-go/pkg/server/endpoints"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
	"github.com/wenhsiu/aiot-in-go/pkg/token"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run an aiot API service",
	Long: `Run one of the aiot API services.

Each service runs as its own process:

  aiotctl server rbac      # users, roles, permissions, authentication
  aiotctl server drone     # drone fleet, telemetry, commands
  aiotctl server general   # user preferences

Requires the environment variables DATABASE_URL and AIOT_TOKEN_SECRET.
By default, database migrations are run on startup. Use --no-migrate to skip.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'server' requires a subcommand (rbac, drone, general)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var serverRBACCmd = &cobra.Command{
	Use:   "rbac",
	Short: "Run the RBAC service",
	Run: func(cmd *cobra.Command, args []string) {
		runService(cmd, endpoints.ServiceRBAC, func(s *server.Server, secret []byte) {
			endpoints.RegisterRBACEndpoints(s, secret)
		})
	},
}

var serverDroneCmd = &cobra.Command{
	Use:   "drone",
	Short: "Run the drone service",
	Run: func(cmd *cobra.Command, args []string) {
		runService(cmd, endpoints.ServiceDrone, func(s *server.Server, secret []byte) {
			endpoints.RegisterDroneEndpoints(s)
		})
	},
}

var serverGeneralCmd = &cobra.Command{
	Use:   "general",
	Short: "Run the general service",
	Run: func(cmd *cobra.Command, args []string) {
		runService(cmd, endpoints.ServiceGeneral, func(s *server.Server, secret []byte) {
			endpoints.RegisterGeneralEndpoints(s)
		})
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
	serverCmd.AddCommand(serverRBACCmd)
	serverCmd.AddCommand(serverDroneCmd)
	serverCmd.AddCommand(serverGeneralCmd)

	defaults := map[string]int{
		serverRBACCmd.Name():    config.DefaultRBACPort,
		serverDroneCmd.Name():   config.DefaultDronePort,
		serverGeneralCmd.Name(): config.DefaultGeneralPort,
	}
	for _, sub := range []*cobra.Command{serverRBACCmd, serverDroneCmd, serverGeneralCmd} {
		sub.Flags().StringP("port", "p", strconv.Itoa(defaults[sub.Name()]), "server listen port")
		sub.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
		sub.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	}
}

func runService(cmd *cobra.Command, service string, register func(*server.Server, []byte)) {
	logger := log.WithService(service)

	secret, err := token.Secret()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if os.Getenv("DATABASE_URL") == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	cfg := config.Get()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		logger.Info().Msg("running database migrations")
		if err := runMigrations(); err != nil {
			fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
			os.Exit(1)
		}
	}

	database, err := db.Connect(db.Config{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to DB: %v\n", err)
		os.Exit(1)
	}

	cch, err := cache.Connect()
	if err != nil {
		logger.Warn().Err(err).Msg("cache unavailable, continuing without it")
		metrics.RegisterComponent("cache", false, err.Error())
		cch = nil
	} else {
		metrics.RegisterComponent("cache", true, "")
	}

	mqClient, err := mq.Connect()
	if err != nil {
		logger.Warn().Err(err).Msg("message broker unavailable, continuing without it")
		metrics.RegisterComponent("broker", false, err.Error())
		mqClient = nil
	} else {
		metrics.RegisterComponent("broker", true, "")
	}
	if err := mqClient.DeclareTopology(); err != nil {
		logger.Warn().Err(err).Msg("failed to declare broker topology")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	host, _ := cmd.Flags().GetString("bind-address")
	port, _ := cmd.Flags().GetString("port")
	s := server.NewServer(cfg, database, cch, mqClient, secret, host, port)

	register(s, secret)

	// The drone service settles commands from the ack queue
	if service == endpoints.ServiceDrone && mqClient != nil {
		if err := mqClient.Consume(ctx, mq.QueueCommandAck, commandAckHandler(s.CommandsStore)); err != nil {
			logger.Warn().Err(err).Msg("failed to start command ack consumer")
		}
	}

	var consulClient *discovery.Client
	registrationID := ""
	if cfg.ConsulEnabled {
		consulClient, err = discovery.Connect()
		if err != nil {
			logger.Warn().Err(err).Msg("consul unavailable, continuing without discovery")
			metrics.RegisterComponent("consul", false, err.Error())
		} else {
			metrics.RegisterComponent("consul", true, "")
		}

		portNum, _ := strconv.Atoi(port)
		address := cfg.ServiceAddress
		if address == "" {
			address = "127.0.0.1"
		}
		registrationID = fmt.Sprintf("%s-%s-%d", service, address, portNum)
		consulClient.Register(discovery.Registration{
			Name:    service,
			ID:      registrationID,
			Address: address,
			Port:    portNum,
			Tags:    []string{"aiot", service},
		})
	}

	go func() {
		logger.Info().Str("addr", host+":"+port).Msg("server listening")
		if err := s.Start(); err != nil {
			logger.Error().Err(err).Msg("server stopped")
		}
		cancel()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
wait:
	for {
		select {
		case sig := <-sigChan:
			// SIGHUP re-reads configuration from the environment
			if sig == syscall.SIGHUP {
				if err := config.Reload(); err != nil {
					logger.Warn().Err(err).Msg("configuration reload failed")
					continue
				}
				logger.Info().Msg("configuration reloaded")
				continue
			}
			break wait
		case <-ctx.Done():
			break wait
		}
	}

	logger.Info().Msg("shutting down")
	consulClient.Deregister(registrationID)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = s.Shutdown(shutdownCtx)
	_ = mqClient.Close()
	_ = cch.Close()
}

// commandAckHandler settles commands when drones acknowledge execution
func commandAckHandler(commandsStore store.CommandsStore) mq.Handler {
	return func(ctx context.Context, env mq.Envelope) error {
		var ack mq.CommandAck
		if err := json.Unmarshal(env.Payload, &ack); err != nil {
			return fmt.Errorf("malformed command ack: %w", err)
		}

		status := model.StatusCompleted
		if !ack.Success {
			status = model.StatusFailed
		}
		now := time.Now().UTC()

		if err := commandsStore.UpdateCommandStatus(ack.CommandID, status, &now); err != nil {
			return fmt.Errorf("failed to settle command %s: %w", ack.CommandID, err)
		}

		logger := log.WithDroneID(strconv.FormatUint(uint64(env.DroneID), 10))
		logger.Info().
			Str("command_id", ack.CommandID).
			Str("status", status.String()).
			Msg("command settled from ack")
		return nil
	}
}
