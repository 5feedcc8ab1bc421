package archiver

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/wenhsiu/aiot-in-go/pkg/audit"
	"github.com/wenhsiu/aiot-in-go/pkg/config"
)

func newMockArchiver(t *testing.T) (*Archiver, sqlmock.Sqlmock) {
	t.Helper()

	audit.SetEnabled(false)
	t.Cleanup(func() { audit.SetEnabled(true) })

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB}), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open gorm: %v", err)
	}

	return New(db, config.Default()), mock
}

func TestRunOnceMovesAllTables(t *testing.T) {
	archiver, mock := newMockArchiver(t)

	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, 12))
	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, 840))
	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, 3))

	archiver.RunOnce()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunOnceDrainsInBatches(t *testing.T) {
	archiver, mock := newMockArchiver(t)

	// drone_statuses needs two batches: a full one, then the remainder
	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, int64(archiver.batchSize)))
	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, 0))

	archiver.RunOnce()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunOnceContinuesPastFailure(t *testing.T) {
	archiver, mock := newMockArchiver(t)

	// A failure on the first table must not stop the remaining tables
	mock.ExpectExec("WITH moved AS").WillReturnError(errors.New("deadlock detected"))
	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("WITH moved AS").WillReturnResult(sqlmock.NewResult(0, 0))

	archiver.RunOnce()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestArchiveBatchQueryShape(t *testing.T) {
	pairs := map[string]string{
		"drone_statuses":  "drone_statuses_archive",
		"drone_positions": "drone_positions_archive",
		"drone_commands":  "drone_commands_archive",
	}

	if len(tables) != len(pairs) {
		t.Fatalf("tables = %d pairs, want %d", len(tables), len(pairs))
	}
	for _, pair := range tables {
		if pairs[pair.live] != pair.archive {
			t.Errorf("%s archives to %s, want %s", pair.live, pair.archive, pairs[pair.live])
		}
		if pair.ageColumn == "" {
			t.Errorf("%s has no age column", pair.live)
		}
	}
}
