package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-service/internal/domain"
)

const issueListKeyPrefix = "issues:org:"

// IssueListCache keeps per-organization issue listings in Redis. The cache
// is best-effort: any Redis failure is logged and treated as a miss, reads
// fall back to Postgres, and every mutation invalidates the organization's
// entry.
type IssueListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewIssueListCache builds the cache. A nil client disables it.
func NewIssueListCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *IssueListCache {
	return &IssueListCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached listing for an organization, reporting whether a
// usable entry was found.
func (c *IssueListCache) Get(ctx context.Context, organizationID string) ([]domain.Issue, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, issueListKey(organizationID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("issue cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var issues []domain.Issue
	if err := json.Unmarshal(raw, &issues); err != nil {
		c.logger.Warn("issue cache entry corrupt, dropping", zap.String("organization_id", organizationID), zap.Error(err))
		_ = c.client.Del(ctx, issueListKey(organizationID)).Err()
		return nil, false
	}
	return issues, true
}

// Set stores the listing for an organization.
func (c *IssueListCache) Set(ctx context.Context, organizationID string, issues []domain.Issue) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(issues)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, issueListKey(organizationID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("issue cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached listing for an organization.
func (c *IssueListCache) Invalidate(ctx context.Context, organizationID string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, issueListKey(organizationID)).Err(); err != nil {
		c.logger.Debug("issue cache invalidate failed", zap.Error(err))
	}
}

func issueListKey(organizationID string) string {
	return issueListKeyPrefix + organizationID
}
