package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	keyPrefix = "otp:"

	// TTL is the lifetime of an OTP record. Resets to the full duration on
	// every rewrite, including wrong-attempt increments.
	TTL = 10 * time.Minute

	// MaxWrongAttempts invalidates the record once reached; verification
	// afterwards fails even with the correct code.
	MaxWrongAttempts = 5
)

var (
	ErrNotFound     = errors.New("otp: no record for identity")
	ErrMaxAttempts  = errors.New("otp: maximum attempts exceeded")
	ErrCodeMismatch = errors.New("otp: code mismatch")
)

// KV is the TTL key-value store the verifier runs on. The production
// implementation is Redis; tests use an in-memory map.
type KV interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Get returns ErrNotFound when the key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) (bool, error)
}

// Record is the ephemeral OTP state stored per identity.
type Record struct {
	Code          string    `json:"code"`
	WrongAttempts int       `json:"wrong_attempts"`
	CreatedAt     time.Time `json:"created_at"`
}

type Store struct {
	kv  KV
	log *zap.Logger
}

func NewStore(kv KV, log *zap.Logger) *Store {
	return &Store{kv: kv, log: log}
}

// Issue stores a fresh record for identity, overwriting any prior one.
func (s *Store) Issue(ctx context.Context, identity, code string) error {
	rec := Record{Code: code, CreatedAt: time.Now().UTC()}
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	if err := s.kv.Set(ctx, keyPrefix+identity, b, TTL); err != nil {
		return fmt.Errorf("store otp record: %w", err)
	}
	return nil
}

// Verify compares the submitted code against the stored record. Codes are
// compared as strings so leading zeros are significant. A mismatch records a
// wrong attempt before returning; reaching the attempt cap deletes the
// record and fails even for a correct code.
func (s *Store) Verify(ctx context.Context, identity, submitted string) error {
	rec, err := s.load(ctx, identity)
	if err != nil {
		return err
	}

	if rec.WrongAttempts >= MaxWrongAttempts {
		if _, derr := s.kv.Del(ctx, keyPrefix+identity); derr != nil {
			s.log.Warn("failed to delete locked otp record", zap.String("identity", identity), zap.Error(derr))
		}
		return ErrMaxAttempts
	}

	if rec.Code != submitted {
		if _, rerr := s.RecordWrongAttempt(ctx, identity); rerr != nil {
			s.log.Warn("failed to record wrong otp attempt", zap.String("identity", identity), zap.Error(rerr))
		}
		return ErrCodeMismatch
	}

	return nil
}

// RecordWrongAttempt increments the wrong-attempt counter, rewriting the
// record with the TTL reset to the full duration. Returns false when no
// record exists.
func (s *Store) RecordWrongAttempt(ctx context.Context, identity string) (bool, error) {
	rec, err := s.load(ctx, identity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	rec.WrongAttempts++
	b, err := json.Marshal(rec)
	if err != nil {
		return false, fmt.Errorf("marshal otp record: %w", err)
	}
	if err := s.kv.Set(ctx, keyPrefix+identity, b, TTL); err != nil {
		return false, fmt.Errorf("store otp record: %w", err)
	}
	return true, nil
}

// Remove deletes the record, e.g. after a successful verification.
func (s *Store) Remove(ctx context.Context, identity string) error {
	_, err := s.kv.Del(ctx, keyPrefix+identity)
	return err
}

func (s *Store) load(ctx context.Context, identity string) (*Record, error) {
	b, err := s.kv.Get(ctx, keyPrefix+identity)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load otp record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(b, &rec); err != nil {
		// Corrupt payloads are unrecoverable; drop them and ask for a resend.
		if _, derr := s.kv.Del(ctx, keyPrefix+identity); derr != nil {
			s.log.Warn("failed to delete corrupt otp record", zap.String("identity", identity), zap.Error(derr))
		}
		return nil, ErrNotFound
	}
	return &rec, nil
}
