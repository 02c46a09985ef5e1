// File: internal/services/user_services/testhelpers_test.go
package user_services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quailbyte/go-accountsvc/internal/domain"
	lockrepo "github.com/quailbyte/go-accountsvc/internal/repository/lock"
	requestrepo "github.com/quailbyte/go-accountsvc/internal/repository/request"
	userrepo "github.com/quailbyte/go-accountsvc/internal/repository/user"
)

// openTestDB opens an isolated in-memory database. The pool is pinned to one
// connection because each sqlite :memory: connection is its own database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access underlying database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&domain.User{}, &domain.SecretLock{}, &domain.ProtectedActionRequest{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}

type testStack struct {
	db          *gorm.DB
	userRepo    userrepo.UserRepository
	lockRepo    lockrepo.LockRepository
	requestRepo requestrepo.RequestRepository
	locks       *LockService
	requests    *RequestService
}

func newTestStack(t *testing.T, lockCfg LockConfig) *testStack {
	t.Helper()

	db := openTestDB(t)
	lockRepo := lockrepo.NewGormLockRepository(db)
	requestRepo := requestrepo.NewGormRequestRepository(db)

	locks := NewLockService(lockRepo, lockCfg, noopLogger{})
	requests := NewRequestService(requestRepo, locks, CreateOptions{}, noopLogger{})

	return &testStack{
		db:          db,
		userRepo:    userrepo.NewGormUserRepository(db),
		lockRepo:    lockRepo,
		requestRepo: requestRepo,
		locks:       locks,
		requests:    requests,
	}
}

// chanNotifier captures delivered codes so tests can observe the detached
// delivery goroutine.
type chanNotifier struct {
	verification chan string
	reset        chan string
}

func newChanNotifier() *chanNotifier {
	return &chanNotifier{
		verification: make(chan string, 4),
		reset:        make(chan string, 4),
	}
}

func (n *chanNotifier) SendVerificationCode(_ context.Context, _, _, code string) error {
	n.verification <- code
	return nil
}

func (n *chanNotifier) SendPasswordResetCode(_ context.Context, _, _, code string) error {
	n.reset <- code
	return nil
}

func waitForCode(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case code := <-ch:
		return code
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivered code")
		return ""
	}
}
