package channel_sync_worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/dynoinc/respond/internal/background"
	"github.com/dynoinc/respond/internal/chatops"
	"github.com/dynoinc/respond/internal/incident"
)

type incidentLister interface {
	List(ctx context.Context, filter incident.ListFilter) ([]incident.Incident, error)
}

type membership interface {
	ResolveIdentity(ctx context.Context) (chatops.BotIdentity, error)
	EnsureMember(ctx context.Context, userID, channelID string) error
}

// Worker puts the bot back into open incident channels it was removed from.
type Worker struct {
	river.WorkerDefaults[background.ChannelSyncArgs]

	incidents incidentLister
	members   membership
}

func New(incidents incidentLister, members membership) *Worker {
	return &Worker{
		incidents: incidents,
		members:   members,
	}
}

func (w *Worker) Work(ctx context.Context, job *river.Job[background.ChannelSyncArgs]) error {
	bot, err := w.members.ResolveIdentity(ctx)
	if err != nil {
		return fmt.Errorf("resolving bot identity: %w", err)
	}
	if bot.IsZero() {
		return nil
	}

	open, err := w.incidents.List(ctx, incident.ListFilter{Scope: incident.ScopeOpen})
	if err != nil {
		return fmt.Errorf("listing open incidents: %w", err)
	}

	var errs []error
	synced := 0
	for _, inc := range open {
		if inc.ChannelID == "" {
			continue
		}
		if err := w.members.EnsureMember(ctx, bot.ID, inc.ChannelID); err != nil {
			errs = append(errs, fmt.Errorf("incident %s: %w", inc.ID, err))
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "synced incident channels", "synced", synced, "failed", len(errs))
	return errors.Join(errs...)
}
