package policycache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/workpulse/attendance-backend-go/internal/domain/policy"
)

const keyPrefix = "attendance:policy:"

// CachedRepository is a read-through Redis cache in front of a policy
// repository. Policy reads happen on every clock action, so a short TTL
// keeps the companies table out of the hot path. Cache failures degrade to
// the inner repository.
type CachedRepository struct {
	inner  policy.PolicyRepository
	client *redis.Client
	ttl    time.Duration
}

func New(inner policy.PolicyRepository, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{inner: inner, client: client, ttl: ttl}
}

// GetByCompanyID implements policy.PolicyRepository.
func (c *CachedRepository) GetByCompanyID(ctx context.Context, companyID string) (policy.AttendancePolicy, error) {
	key := keyPrefix + companyID

	if raw, err := c.client.Get(ctx, key).Result(); err == nil {
		var pol policy.AttendancePolicy
		if err := json.Unmarshal([]byte(raw), &pol); err == nil {
			return pol, nil
		}
		// Corrupt entry; fall through to the source and rewrite it.
	} else if err != redis.Nil {
		slog.Warn("policy cache read failed", "company_id", companyID, "error", err)
	}

	pol, err := c.inner.GetByCompanyID(ctx, companyID)
	if err != nil {
		return policy.AttendancePolicy{}, err
	}

	if raw, err := json.Marshal(pol); err == nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			slog.Warn("policy cache write failed", "company_id", companyID, "error", err)
		}
	}

	return pol, nil
}

// Invalidate drops a company's cached policy. Nothing in this service
// mutates company settings; the CRUD that does lives elsewhere and calls
// this (or lets the TTL expire) after a write.
func (c *CachedRepository) Invalidate(ctx context.Context, companyID string) error {
	return c.client.Del(ctx, keyPrefix+companyID).Err()
}

// NewRedisClient connects to redis with short timeouts.
func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}
