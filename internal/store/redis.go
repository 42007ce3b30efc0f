package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/angeloszaimis/healthwatch/internal/apperror"
	"github.com/angeloszaimis/healthwatch/internal/instance"
)

var _ Store = (*Redis)(nil)

const scanBatch = 100

// Redis stores each instance as a JSON value under "<prefix>:<id>".
type Redis struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisUniversalClient creates a client from a redis:// URL.
func NewRedisUniversalClient(addr string) (redis.UniversalClient, error) {
	opts, err := redis.ParseURL(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid redis address %q: %w", addr, err)
	}

	return redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{opts.Addr},
		Username: opts.Username,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) GetByID(ctx context.Context, id string) (*instance.Instance, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewEntityNotFoundError("instance not found", nil)
	}
	if err != nil {
		return nil, apperror.NewInternalServerError("Redis get key error", fmt.Errorf("can't read instance (key='%s'), err: %w", id, err))
	}

	return decode(data)
}

// GetAll scans the prefix and reads every value. Keys that vanish or hold
// undecodable values between scan and read are skipped.
func (r *Redis) GetAll(ctx context.Context) ([]*instance.Instance, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+":*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, apperror.NewInternalServerError("Redis scan keys error", fmt.Errorf("redis scan error, err: %w", err))
	}

	all := make([]*instance.Instance, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, r.prefix+":") {
			continue
		}

		data, err := r.client.Get(ctx, key).Bytes()
		if err != nil {
			continue
		}
		inst, err := decode(data)
		if err != nil {
			continue
		}
		all = append(all, inst)
	}

	return all, nil
}

func (r *Redis) Save(ctx context.Context, inst *instance.Instance) (*instance.Instance, error) {
	if inst == nil || inst.ID() == "" {
		return nil, apperror.NewBadParameterError("instance id is required", nil)
	}

	data, err := json.Marshal(inst)
	if err != nil {
		return nil, apperror.NewInternalServerError("Redis marshal instance error", fmt.Errorf("can't marshal instance %s, err: %w", inst.ID(), err))
	}

	if err := r.client.Set(ctx, r.key(inst.ID()), data, 0).Err(); err != nil {
		return nil, apperror.NewInternalServerError("Redis write key error", fmt.Errorf("can't write instance (key='%s'), err: %w", inst.ID(), err))
	}

	return inst.Clone(), nil
}

func (r *Redis) key(id string) string {
	return r.prefix + ":" + id
}

func decode(data []byte) (*instance.Instance, error) {
	var record instance.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, apperror.NewInternalServerError("Redis unmarshal instance error", err)
	}
	return instance.FromRecord(record), nil
}
