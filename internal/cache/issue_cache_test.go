package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/spec-kit/issue-service/internal/domain"
)

func TestDisabledCacheIsSafe(t *testing.T) {
	ctx := context.Background()

	// nil cache pointer, as wired when CACHE_ENABLED=false
	var c *IssueListCache
	_, ok := c.Get(ctx, "org-a")
	assert.False(t, ok)
	c.Set(ctx, "org-a", []domain.Issue{{ID: "i1"}})
	c.Invalidate(ctx, "org-a")

	// constructed without a client, as wired when redis is unreachable
	c = NewIssueListCache(nil, time.Minute, zap.NewNop())
	_, ok = c.Get(ctx, "org-a")
	assert.False(t, ok)
	c.Set(ctx, "org-a", nil)
	c.Invalidate(ctx, "org-a")
}
