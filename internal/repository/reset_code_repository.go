package repository

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCodeMismatch is returned when the presented code does not match the
// stored one, or no code is outstanding. Callers treat both cases alike so a
// guesser learns nothing about whether a code exists.
var ErrCodeMismatch = errors.New("reset code mismatch or expired")

// ResetCodeRepository stores outstanding one-time codes. A code lives under
// a single key per purpose and subject, so requesting a new code replaces
// the previous one, and consuming is strictly single-use.
type ResetCodeRepository interface {
	StorePasswordResetCode(ctx context.Context, userID int64, code string) error
	ConsumePasswordResetCode(ctx context.Context, userID int64, code string) error
	StoreEmailVerificationCode(ctx context.Context, email, code string) error
	ConsumeEmailVerificationCode(ctx context.Context, email, code string) error
}

type resetCodeRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResetCodeRepository returns a Redis-backed implementation. Expiry is
// delegated to Redis key TTLs.
func NewResetCodeRepository(client *redis.Client, ttl time.Duration) ResetCodeRepository {
	return &resetCodeRepository{client: client, ttl: ttl}
}

func (r *resetCodeRepository) StorePasswordResetCode(ctx context.Context, userID int64, code string) error {
	return r.client.Set(ctx, passwordResetKey(userID), code, r.ttl).Err()
}

func (r *resetCodeRepository) ConsumePasswordResetCode(ctx context.Context, userID int64, code string) error {
	return r.consume(ctx, passwordResetKey(userID), code)
}

func (r *resetCodeRepository) StoreEmailVerificationCode(ctx context.Context, email, code string) error {
	return r.client.Set(ctx, emailVerificationKey(email), code, r.ttl).Err()
}

func (r *resetCodeRepository) ConsumeEmailVerificationCode(ctx context.Context, email, code string) error {
	return r.consume(ctx, emailVerificationKey(email), code)
}

// consume removes the stored code before comparing so a second attempt with
// the same code always fails, even when the first comparison did not match.
func (r *resetCodeRepository) consume(ctx context.Context, key, code string) error {
	stored, err := r.client.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return ErrCodeMismatch
	}
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrCodeMismatch
	}
	return nil
}

func passwordResetKey(userID int64) string {
	return fmt.Sprintf("reset_code:%d", userID)
}

func emailVerificationKey(email string) string {
	return fmt.Sprintf("email_code:%s", email)
}
