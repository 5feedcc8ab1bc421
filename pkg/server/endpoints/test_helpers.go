package endpoints

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wenhsiu/aiot-in-go/pkg/config"
	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
	gormstore "github.com/wenhsiu/aiot-in-go/pkg/server/store/gorm"
)

// NewTestServer creates a server instance for testing.
// It requires a running PostgreSQL database.
func NewTestServer(dbURL string, secret []byte) (*server.Server, error) {
	db, err := gorm.Open(
		postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	s := server.NewServer(cfg, db, nil, nil, secret, "127.0.0.1", "0")

	return s, nil
}

// SeedTestUser creates an active user with the given password and assigns the
// named roles, which must already exist
func SeedTestUser(db *gorm.DB, username, password string, roles ...string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	usersStore := gormstore.NewUsersStore(db)
	if err := usersStore.CreateUser(user); err != nil {
		return nil, err
	}

	for _, name := range roles {
		var role model.Role
		if err := db.Where("name = ?", name).First(&role).Error; err != nil {
			return nil, err
		}
		if err := usersStore.AssignRole(user.ID, role.ID); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// CleanupTestUser removes a user and everything keyed on it
func CleanupTestUser(db *gorm.DB, username string) error {
	db.Exec(`DELETE FROM user_roles WHERE user_id IN (SELECT id FROM users WHERE username = ?)`, username)
	db.Exec(`DELETE FROM user_preferences WHERE user_id IN (SELECT id FROM users WHERE username = ?)`, username)
	db.Exec(`DELETE FROM users WHERE username = ?`, username)
	return nil
}
