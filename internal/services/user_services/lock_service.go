// File: internal/services/user_services/lock_service.go
package user_services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/quailbyte/go-accountsvc/internal/domain"
	"github.com/quailbyte/go-accountsvc/internal/repository/lock"
)

// LockConfig carries the attempt thresholds shared by every lock this
// service manages. They are service-level policy, not per-lock state.
type LockConfig struct {
	// MaxFailures is the hard ceiling: once a lock accumulates this many
	// failed attempts, every further unlock fails without comparing secrets.
	MaxFailures int
	// FailureCooldownCount is a soft alerting sub-threshold. Crossing a
	// multiple of it changes nothing for the caller; it only raises the log
	// severity so operators can spot an attack in progress.
	FailureCooldownCount int
	// BcryptCost tunes the password hasher; zero means the library default.
	BcryptCost int
}

// DefaultLockConfig returns the thresholds used when none are configured.
func DefaultLockConfig() LockConfig {
	return LockConfig{
		MaxFailures:          9,
		FailureCooldownCount: 3,
	}
}

// LockOptions selects the hashing strategy and lifecycle of a new lock.
type LockOptions struct {
	Kind domain.LockKind
	// DiscardAfterUnlock makes the lock one-shot: the first successful unlock
	// deletes it, so no later call can ever succeed against it.
	DiscardAfterUnlock bool
}

// LockService owns SecretLock records: creation, bounded-attempt unlocking,
// and secret replacement. All failure-count mutations are persisted before an
// error is surfaced; losing one would reopen the brute-force window.
type LockService struct {
	lockRepo       lock.LockRepository
	config         LockConfig
	passwordHasher SecretHasher
	codeHasher     SecretHasher
	logger         Logger
}

// NewLockService creates a new lock service.
func NewLockService(lockRepo lock.LockRepository, config LockConfig, logger Logger) *LockService {
	if config.MaxFailures <= 0 {
		config.MaxFailures = DefaultLockConfig().MaxFailures
	}
	if config.FailureCooldownCount <= 0 {
		config.FailureCooldownCount = DefaultLockConfig().FailureCooldownCount
	}
	return &LockService{
		lockRepo:       lockRepo,
		config:         config,
		passwordHasher: NewBcryptHasher(config.BcryptCost),
		codeHasher:     NewCodeHasher(),
		logger:         logger,
	}
}

// Create hashes the secret and persists a fresh lock, returning its id.
func (s *LockService) Create(ctx context.Context, secret string, opts LockOptions) (string, error) {
	if secret == "" {
		return "", NewOptionError("secret", OptionRequired)
	}
	if opts.Kind == "" {
		opts.Kind = domain.LockKindCode
	}

	hash, err := s.hasherFor(opts.Kind).Hash(secret)
	if err != nil {
		s.logger.Error("failed to hash lock secret", "error", err, "kind", opts.Kind)
		return "", err
	}

	newLock := &domain.SecretLock{
		ID:                 uuid.NewString(),
		SecretHash:         hash,
		Kind:               opts.Kind,
		DiscardAfterUnlock: opts.DiscardAfterUnlock,
	}
	if err := s.lockRepo.Create(ctx, newLock); err != nil {
		s.logger.Error("failed to persist lock", "error", err, "kind", opts.Kind)
		return "", err
	}

	s.logger.Debug("lock created",
		"lock_id", newLock.ID,
		"kind", opts.Kind,
		"one_shot", opts.DiscardAfterUnlock)
	return newLock.ID, nil
}

// Unlock compares a candidate secret against the lock. On mismatch the
// failure counter is durably incremented before ErrInvalidSecret is returned.
// At or past the ceiling the call fails ErrLockedOut without comparing.
func (s *LockService) Unlock(ctx context.Context, lockID, candidate, attempterID string) error {
	if lockID == "" {
		return NewOptionError("lockId", OptionRequired)
	}
	if candidate == "" {
		return NewOptionError("secret", OptionRequired)
	}

	l, err := s.lockRepo.FindByID(ctx, lockID)
	if err != nil {
		return err
	}

	if l.IsLockedOut(s.config.MaxFailures) {
		s.logger.Warn("unlock rejected - lock has reached failure ceiling",
			"lock_id", lockID,
			"failure_count", l.FailureCount,
			"max_failures", s.config.MaxFailures,
			"attempter", attempterID)
		return ErrLockedOut
	}

	match, err := s.hasherFor(l.Kind).Compare(candidate, l.SecretHash)
	if err != nil {
		s.logger.Error("secret comparison failed", "error", err, "lock_id", lockID)
		return err
	}

	if !match {
		return s.recordFailure(ctx, l, attempterID)
	}

	if l.DiscardAfterUnlock {
		// One-shot lock: a successful unlock invalidates it for good.
		if err := s.lockRepo.Delete(ctx, lockID); err != nil {
			s.logger.Error("failed to discard one-shot lock", "error", err, "lock_id", lockID)
			return err
		}
		s.logger.Debug("one-shot lock discarded after unlock", "lock_id", lockID)
		return nil
	}

	if err := s.lockRepo.ResetFailures(ctx, lockID); err != nil {
		s.logger.Error("failed to reset lock failures", "error", err, "lock_id", lockID)
		return err
	}
	return nil
}

// Reset replaces the protected secret and zeroes the failure counter while
// preserving the lock's identity, so records referencing the lock id stay
// valid across password changes.
func (s *LockService) Reset(ctx context.Context, lockID, newSecret string) error {
	if lockID == "" {
		return NewOptionError("lockId", OptionRequired)
	}
	if newSecret == "" {
		return NewOptionError("newSecret", OptionRequired)
	}

	l, err := s.lockRepo.FindByID(ctx, lockID)
	if err != nil {
		return err
	}

	hash, err := s.hasherFor(l.Kind).Hash(newSecret)
	if err != nil {
		s.logger.Error("failed to hash replacement secret", "error", err, "lock_id", lockID)
		return err
	}
	if err := s.lockRepo.ReplaceSecret(ctx, lockID, hash); err != nil {
		s.logger.Error("failed to replace lock secret", "error", err, "lock_id", lockID)
		return err
	}

	s.logger.Info("lock secret replaced", "lock_id", lockID, "kind", l.Kind)
	return nil
}

func (s *LockService) recordFailure(ctx context.Context, l *domain.SecretLock, attempterID string) error {
	applied, err := s.lockRepo.IncrementFailure(ctx, l.ID, attempterID, s.config.MaxFailures)
	if err != nil {
		// The increment must be durable before the caller sees the failure.
		s.logger.Error("failed to persist lock failure", "error", err, "lock_id", l.ID)
		return fmt.Errorf("failed to record unlock failure: %w", err)
	}

	newCount := l.FailureCount + 1
	if !applied {
		// A concurrent attempt filled the last slot first.
		newCount = s.config.MaxFailures
	}

	if newCount >= s.config.MaxFailures {
		s.logger.Warn("lock reached failure ceiling",
			"lock_id", l.ID,
			"failure_count", newCount,
			"attempter", attempterID)
	} else if newCount%s.config.FailureCooldownCount == 0 {
		// Soft alerting threshold only; the caller-visible failure kind
		// does not change.
		s.logger.Warn("lock crossed failure cooldown threshold",
			"lock_id", l.ID,
			"failure_count", newCount,
			"cooldown_count", s.config.FailureCooldownCount,
			"attempter", attempterID)
	} else {
		s.logger.Info("unlock attempt failed",
			"lock_id", l.ID,
			"failure_count", newCount,
			"attempter", attempterID)
	}

	return ErrInvalidSecret
}

func (s *LockService) hasherFor(kind domain.LockKind) SecretHasher {
	if kind == domain.LockKindPassword {
		return s.passwordHasher
	}
	return s.codeHasher
}
