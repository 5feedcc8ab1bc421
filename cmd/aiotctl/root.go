package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/wenhsiu/aiot-in-go/pkg/log"
)

var rootCmd = &cobra.Command{
	Use:   "aiotctl",
	Short: "Drone fleet backend services",
	Long: `aiotctl runs and manages the aiot drone fleet backend.

The backend is split into three API services (rbac, drone, general), an
API gateway and a telemetry archiver, all started from this binary.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitFromEnv()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
