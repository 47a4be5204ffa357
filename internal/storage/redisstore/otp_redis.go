package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Indieguru/indieguru-website-sub000/internal/app_errors"
	"github.com/go-redis/redis/v8"
)

// OTPRedis keeps bcrypt-hashed one-time codes with a TTL and a verification
// attempt counter per destination.
type OTPRedis struct {
	client *redis.Client
}

func NewOTPRedis(address, password string, db int) (*OTPRedis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &OTPRedis{client: client}, nil
}

func (r *OTPRedis) Close() error {
	return r.client.Close()
}

func codeKey(purpose, destination string) string {
	return "otp:" + purpose + ":" + destination
}

func attemptsKey(purpose, destination string) string {
	return "otp_attempts:" + purpose + ":" + destination
}

func (r *OTPRedis) Store(ctx context.Context, purpose, destination, hashedCode string, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, codeKey(purpose, destination), hashedCode, ttl)
	pipe.Set(ctx, attemptsKey(purpose, destination), 0, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r *OTPRedis) Get(ctx context.Context, purpose, destination string) (string, error) {
	hash, err := r.client.Get(ctx, codeKey(purpose, destination)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", app_errors.ErrOTPNotFound
		}
		return "", err
	}
	return hash, nil
}

func (r *OTPRedis) IncrAttempts(ctx context.Context, purpose, destination string) (int, error) {
	count, err := r.client.Incr(ctx, attemptsKey(purpose, destination)).Result()
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *OTPRedis) Delete(ctx context.Context, purpose, destination string) error {
	return r.client.Del(ctx, codeKey(purpose, destination), attemptsKey(purpose, destination)).Err()
}
