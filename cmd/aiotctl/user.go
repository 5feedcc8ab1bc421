package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/db"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	gormstore "github.com/wenhsiu/aiot-in-go/pkg/server/store/gorm"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long:  `Manage user accounts directly against the database.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'user' requires a subcommand (create, reset-password)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user account",
	Long: `Create a user account.

Used to bootstrap the first admin account before the API is reachable.
Roles named with --role must already exist (the migrations seed an
"admin" role with every permission).

Example:
  aiotctl user create admin --password changeme --role admin
  aiotctl user create operator --password s3cret --email op@example.com`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]
		password, _ := cmd.Flags().GetString("password")
		email, _ := cmd.Flags().GetString("email")
		roles, _ := cmd.Flags().GetStringSlice("role")

		if password == "" {
			fmt.Fprintln(os.Stderr, "--password is required")
			os.Exit(1)
		}

		if err := createUser(username, password, email, roles); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user %s: %v\n", username, err)
			os.Exit(1)
		}
		fmt.Printf("Created user %s\n", username)
	},
}

var userResetPasswordCmd = &cobra.Command{
	Use:   "reset-password <username>",
	Short: "Reset a user's password",
	Long: `Reset the password for an existing user.

Example:
  aiotctl user reset-password admin --password newpass`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]
		password, _ := cmd.Flags().GetString("password")

		if password == "" {
			fmt.Fprintln(os.Stderr, "--password is required")
			os.Exit(1)
		}

		if err := resetPassword(username, password); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to reset password for %s: %v\n", username, err)
			os.Exit(1)
		}
		fmt.Printf("Password updated for %s\n", username)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userResetPasswordCmd)

	userCreateCmd.Flags().StringP("password", "p", "", "password for the new account")
	userCreateCmd.Flags().StringP("email", "e", "", "email address")
	userCreateCmd.Flags().StringSlice("role", nil, "role names to assign (repeatable)")
	userResetPasswordCmd.Flags().StringP("password", "p", "", "new password")
}

func createUser(username, password, email string, roleNames []string) error {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Resolve role names before touching the users table
	var roles []model.Role
	for _, name := range roleNames {
		var role model.Role
		if err := database.Where("name = ?", name).First(&role).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("role not found: %s", name)
			}
			return fmt.Errorf("failed to look up role %s: %w", name, err)
		}
		roles = append(roles, role)
	}

	usersStore := gormstore.NewUsersStore(database)
	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := usersStore.CreateUser(user); err != nil {
		return err
	}

	for _, role := range roles {
		if err := usersStore.AssignRole(user.ID, role.ID); err != nil {
			return fmt.Errorf("failed to assign role %s: %w", role.Name, err)
		}
	}

	return nil
}

func resetPassword(username, password string) error {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return err
	}

	var user model.User
	if err := database.Where("username = ?", username).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("user not found: %s", username)
		}
		return err
	}

	return gormstore.NewAuthenticateStore(database).UpdatePassword(user.ID, password)
}
