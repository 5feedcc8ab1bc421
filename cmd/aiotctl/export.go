package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/wenhsiu/aiot-in-go/pkg/db"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export entities as JSON for offline analysis",
	Long: `Export entities as JSON for offline analysis.

Writes one JSON file per entity (users, roles, permissions, drones,
commands, preferences) into a timestamped directory. Password hashes are
not included.

Example:
  aiotctl export
  aiotctl export --out-dir /backup`,
	Run: func(cmd *cobra.Command, args []string) {
		outDir, _ := cmd.Flags().GetString("out-dir")
		label, _ := cmd.Flags().GetString("label")

		if label == "" {
			label = time.Now().Format("2006-01-02T15-04-05Z")
		}

		if err := runExport(outDir, label); err != nil {
			fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("out-dir", "o", ".", "Output directory")
	exportCmd.Flags().StringP("label", "l", "", "Label for export directory (default: timestamp)")
}

type exportUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

func runExport(outDir, label string) error {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}

	exportDir := filepath.Join(outDir, "aiot-export-"+label)
	if err := os.MkdirAll(exportDir, 0o770); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	fmt.Printf("Exporting to '%s'...\n", exportDir)

	var users []exportUser
	if err := database.Model(&model.User{}).Find(&users).Error; err != nil {
		return fmt.Errorf("failed to read users: %w", err)
	}
	if err := writeJSON(exportDir, "users.json", users); err != nil {
		return err
	}

	entities := []struct {
		file  string
		value interface{}
	}{
		{"roles.json", &[]model.Role{}},
		{"permissions.json", &[]model.Permission{}},
		{"drones.json", &[]model.Drone{}},
		{"commands.json", &[]model.DroneCommand{}},
		{"preferences.json", &[]model.UserPreference{}},
	}
	for _, entity := range entities {
		if err := database.Find(entity.value).Error; err != nil {
			return fmt.Errorf("failed to read %s: %w", entity.file, err)
		}
		if err := writeJSON(exportDir, entity.file, entity.value); err != nil {
			return err
		}
	}

	fmt.Printf("Export placed in %s\n", exportDir)
	return nil
}

func writeJSON(dir, name string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	fmt.Printf("  %s\n", name)
	return nil
}
