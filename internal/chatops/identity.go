package chatops

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/slack-go/slack"
	"golang.org/x/sync/singleflight"
)

// BotIdentity is the bot's own user as reported by auth.test.
type BotIdentity struct {
	ID     string
	Name   string
	BotID  string
	TeamID string
}

func (b BotIdentity) IsZero() bool {
	return b.ID == ""
}

// identityCache owns the resolved bot identity. Concurrent resolutions share
// one auth.test call. Once set, the identity is only ever replaced by another
// non-empty identity.
type identityCache struct {
	group singleflight.Group

	mu       sync.RWMutex
	identity BotIdentity
	stale    bool
}

func (c *identityCache) get() (BotIdentity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.identity, !c.identity.IsZero() && !c.stale
}

func (c *identityCache) set(id BotIdentity) {
	if id.IsZero() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.identity = id
	c.stale = false
}

func (c *identityCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

// ResolveIdentity returns the cached bot identity, calling auth.test when it
// has not been resolved yet or was invalidated. The shared call does not
// inherit any caller's cancellation; each caller stops waiting on its own ctx.
func (e *Engine) ResolveIdentity(ctx context.Context) (BotIdentity, error) {
	if id, ok := e.identity.get(); ok {
		return id, nil
	}

	ch := e.identity.group.DoChan("auth.test", func() (any, error) {
		ctx := context.WithoutCancel(ctx)

		var resp *slack.AuthTestResponse
		err := e.call(ctx, "auth.test", func(ctx context.Context) error {
			var err error
			resp, err = e.api.AuthTestContext(ctx)
			return err
		})
		if err != nil {
			return BotIdentity{}, err
		}

		id := BotIdentity{ID: resp.UserID, Name: resp.User, BotID: resp.BotID, TeamID: resp.TeamID}
		if id.IsZero() {
			return BotIdentity{}, fmt.Errorf("auth.test returned no user id: %w", ErrRemoteUnavailable)
		}
		e.identity.set(id)
		slog.InfoContext(ctx, "resolved bot identity", "user_id", id.ID, "name", id.Name, "team_id", id.TeamID)
		return id, nil
	})

	select {
	case <-ctx.Done():
		return BotIdentity{}, fmt.Errorf("resolving bot identity: %w", ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			slog.WarnContext(ctx, "failed to resolve bot identity", "error", r.Err, "shared", r.Shared)
			return BotIdentity{}, r.Err
		}
		return r.Val.(BotIdentity), nil
	}
}

// BotUserID returns the last successfully resolved bot user id, or "".
func (e *Engine) BotUserID() string {
	e.identity.mu.RLock()
	defer e.identity.mu.RUnlock()
	return e.identity.identity.ID
}

// InvalidateIdentity makes the next ResolveIdentity call hit Slack again. The
// previous identity stays readable through BotUserID until then.
func (e *Engine) InvalidateIdentity() {
	e.identity.invalidate()
}
