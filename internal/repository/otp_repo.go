package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPNotFound        = errors.New("otp expired or not issued")
	ErrOTPMismatch        = errors.New("otp does not match")
	ErrOTPAttemptsReached = errors.New("too many otp attempts")
)

type OTPRepository interface {
	Save(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string, maxAttempts int) error
	Delete(ctx context.Context, email string) error
}

type otpRepo struct {
	rdb *redis.Client
}

func NewOTPRepo(rdb *redis.Client) OTPRepository {
	return &otpRepo{rdb}
}

func otpKey(email string) string {
	return fmt.Sprintf("otp:%s", strings.ToLower(strings.TrimSpace(email)))
}

// Save replaces any pending code for email and resets its attempt counter.
func (r *otpRepo) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	key := otpKey(email)
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "code", code, "attempts", 0)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// verifyScript checks and counts an attempt in one step so a concurrent
// Verify cannot recreate the hash without its TTL.
// Returns -1 when no code is pending, 0 on a match, -2 once the attempts are
// used up, otherwise the attempt count.
var verifyScript = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'code')
if not stored then
	return -1
end
if stored == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 0
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
local max = tonumber(ARGV[2])
if max > 0 and attempts >= max then
	redis.call('DEL', KEYS[1])
	return -2
end
return attempts
`)

// Verify consumes the code on success. Every failed attempt counts; once
// maxAttempts is reached the code is discarded.
func (r *otpRepo) Verify(ctx context.Context, email, code string, maxAttempts int) error {
	res, err := verifyScript.Run(ctx, r.rdb, []string{otpKey(email)}, code, maxAttempts).Int64()
	if err != nil {
		return err
	}
	switch res {
	case -1:
		return ErrOTPNotFound
	case 0:
		return nil
	case -2:
		return ErrOTPAttemptsReached
	default:
		return ErrOTPMismatch
	}
}

func (r *otpRepo) Delete(ctx context.Context, email string) error {
	return r.rdb.Del(ctx, otpKey(email)).Err()
}
