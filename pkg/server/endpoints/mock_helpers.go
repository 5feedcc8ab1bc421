package endpoints

import (
	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/wenhsiu/aiot-in-go/pkg/config"
	"github.com/wenhsiu/aiot-in-go/pkg/server"
)

// NewMockTestServer creates a server instance with a mocked database for
// unit testing. Tests usually replace the store fields with testify mocks
// and only fall back to the sqlmock-backed GORM stores when exercising SQL.
func NewMockTestServer(secret []byte) (*server.Server, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return nil, nil, err
	}

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	if err != nil {
		_ = mockDB.Close()
		return nil, nil, err
	}

	cfg := config.Default()
	s := server.NewServer(cfg, gormDB, nil, nil, secret, "127.0.0.1", "0")

	return s, mock, nil
}
