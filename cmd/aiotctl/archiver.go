package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wenhsiu/aiot-in-go/pkg/archiver"
	"github.com/wenhsiu/aiot-in-go/pkg/config"
	"github.com/wenhsiu/aiot-in-go/pkg/db"
	"github.com/wenhsiu/aiot-in-go/pkg/log"
)

// archiverCmd represents the archiver command
var archiverCmd = &cobra.Command{
	Use:   "archiver",
	Short: "Run the telemetry archive worker",
	Long: `Run the telemetry archive worker.

The worker periodically moves statuses, positions and settled commands
older than the configured retention into the archive tables. Interval,
retention and batch size come from the configuration.

Example:
  aiotctl archiver
  aiotctl archiver --once`,
	Run: func(cmd *cobra.Command, args []string) {
		if os.Getenv("DATABASE_URL") == "" {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		cfg := config.Get()
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}

		database, err := db.Connect(db.Config{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to connect to DB: %v\n", err)
			os.Exit(1)
		}

		worker := archiver.New(database, cfg)

		once, _ := cmd.Flags().GetBool("once")
		if once {
			worker.RunOnce()
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() {
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan
			logger := log.WithService("archiver")
			logger.Info().Msg("shutting down")
			cancel()
		}()

		logger := log.WithService("archiver")
		logger.Info().
			Dur("interval", cfg.ArchiveRunInterval()).
			Int("retention_days", cfg.ArchiveRetentionDays).
			Msg("archive worker started")
		worker.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(archiverCmd)
	archiverCmd.Flags().Bool("once", false, "run a single archive pass and exit")
}
