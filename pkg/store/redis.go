package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-trading/tradestation-go/pkg/core"
	"github.com/redis/rueidis"
)

// Key prefix for Redis storage. Tokens are namespaced by client id so two
// sessions with different API keys do not clobber each other.
const tokenPrefix = "ts:token:"

// RedisStore implements the core.TokenStore interface using Redis via
// rueidis. Unlike the default memory backend it lets a token outlive the
// process, which spares the user a browser round trip on restart as long
// as the refresh token is still honored by the provider.
type RedisStore struct {
	client   rueidis.Client
	clientID string
}

// RedisOptions contains configuration for Redis connection.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore creates a new instance of RedisStore with the provided
// rueidis client. clientID scopes the storage key.
func NewRedisStore(client rueidis.Client, clientID string) *RedisStore {
	return &RedisStore{
		client:   client,
		clientID: clientID,
	}
}

// NewRedisStoreFromOptions creates a new RedisStore with simplified options.
func NewRedisStoreFromOptions(opts RedisOptions, clientID string) (*RedisStore, error) {
	clientOpts := rueidis.ClientOption{
		InitAddress: []string{opts.Addr},
		Password:    opts.Password,
		SelectDB:    opts.DB,
	}
	client, err := rueidis.NewClient(clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return NewRedisStore(client, clientID), nil
}

// Close closes the Redis client connection.
func (r *RedisStore) Close() {
	r.client.Close()
}

func (r *RedisStore) key() string {
	return tokenPrefix + r.clientID
}

// Save stores the token in Redis as JSON. The key carries no TTL: the
// access token expiry is tracked in the token itself and the refresh token
// has no stated lifetime.
func (r *RedisStore) Save(ctx context.Context, token *core.Token) error {
	if token == nil {
		return ErrNilToken
	}

	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	cmd := r.client.B().Set().Key(r.key()).Value(string(data)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save token to redis: %w", err)
	}

	return nil
}

// Load retrieves the token from Redis.
// It returns core.ErrTokenNotFound if no token has been saved.
// Uses client-side caching with 1 second TTL; the token changes at most
// once per refresh interval.
func (r *RedisStore) Load(ctx context.Context) (*core.Token, error) {
	cmd := r.client.B().Get().Key(r.key()).Cache()
	result, err := r.client.DoCache(ctx, cmd, time.Second).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, core.ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token from redis: %w", err)
	}

	var token core.Token
	if err := json.Unmarshal([]byte(result), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}

	return &token, nil
}
