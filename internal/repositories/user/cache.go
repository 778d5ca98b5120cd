package user

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Getter is the read surface of the user repository
type Getter interface {
	Get(ctx context.Context, uid string) (*models.User, error)
	GetMany(ctx context.Context, uids []string) ([]models.User, error)
}

// CachedRepository is a Redis read-through cache in front of a user repository.
// Cache failures fall back to the underlying repository.
type CachedRepository struct {
	inner  Getter
	cache  *redis.Client
	ttl    time.Duration
	logger ectologger.Logger
}

// NewCachedRepository wraps a user repository with a Redis cache
func NewCachedRepository(inner Getter, cache *redis.Client, ttl time.Duration, logger ectologger.Logger) *CachedRepository {
	return &CachedRepository{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(uid string) string {
	return fmt.Sprintf("clover:user:%s", uid)
}

// Get retrieves a user by uid, consulting the cache first. Returns nil when
// the user does not exist.
func (r *CachedRepository) Get(ctx context.Context, uid string) (*models.User, error) {
	ctx, span := tracing.StartSpan(ctx, "user.CachedRepository.Get")
	defer span.End()

	key := cacheKey(uid)
	cached, err := r.cache.Get(ctx, key)
	if err == nil {
		var user models.User
		if err := json.Unmarshal([]byte(cached), &user); err == nil {
			return &user, nil
		}
		r.logger.WithContext(ctx).WithFields(map[string]any{"uid": uid}).Warn("Discarding malformed cached user")
		_ = r.cache.Del(ctx, key)
	} else if !redis.IsNil(err) {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"uid": uid}).Warn("User cache read failed")
	}

	user, err := r.inner.Get(ctx, uid)
	if err != nil || user == nil {
		return user, err
	}

	if data, err := json.Marshal(user); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"uid": uid}).Warn("User cache write failed")
		}
	}

	return user, nil
}

// GetMany retrieves users by uid. Bulk reads bypass the cache.
func (r *CachedRepository) GetMany(ctx context.Context, uids []string) ([]models.User, error) {
	return r.inner.GetMany(ctx, uids)
}

// Invalidate drops a user from the cache
func (r *CachedRepository) Invalidate(ctx context.Context, uid string) error {
	return r.cache.Del(ctx, cacheKey(uid))
}
