package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Hash field names of a stored upload.
const (
	fieldID         = "id"
	fieldName       = "name"
	fieldData       = "data"
	fieldUploadedAt = "uploaded_at"
)

// Redis stores each upload as a hash under prefix+sessionID with a TTL
// that is refreshed on every read.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to the Redis server at url and verifies the connection.
func NewRedis(ctx context.Context, url, prefix string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Redis{client: client, prefix: prefix, ttl: ttl}, nil
}

func (r *Redis) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *Redis) Put(ctx context.Context, sessionID string, u *Upload) error {
	key := r.key(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encodeUpload(u))
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store upload: %w", err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, sessionID string) (*Upload, error) {
	key := r.key(sessionID)

	var get *redis.MapStringStringCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGetAll(ctx, key)
		pipe.Expire(ctx, key, r.ttl)
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load upload: %w", err)
	}

	fields, err := get.Result()
	if err != nil {
		return nil, fmt.Errorf("load upload: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	return decodeUpload(fields)
}

func (r *Redis) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func encodeUpload(u *Upload) map[string]any {
	return map[string]any{
		fieldID:         u.ID.String(),
		fieldName:       u.Name,
		fieldData:       u.Data,
		fieldUploadedAt: strconv.FormatInt(u.UploadedAt.UnixNano(), 10),
	}
}

func decodeUpload(fields map[string]string) (*Upload, error) {
	id, err := uuid.Parse(fields[fieldID])
	if err != nil {
		return nil, fmt.Errorf("decode upload id: %w", err)
	}
	nanos, err := strconv.ParseInt(fields[fieldUploadedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode upload time: %w", err)
	}

	return &Upload{
		ID:         id,
		Name:       fields[fieldName],
		Data:       []byte(fields[fieldData]),
		UploadedAt: time.Unix(0, nanos),
	}, nil
}
