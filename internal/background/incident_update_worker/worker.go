package incident_update_worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/riverqueue/river"

	"github.com/dynoinc/respond/internal/background"
	"github.com/dynoinc/respond/internal/incident"
)

type incidentGetter interface {
	Get(ctx context.Context, id string) (*incident.Incident, error)
}

type updatePoster interface {
	PostIncidentUpdate(ctx context.Context, inc *incident.Incident, entry incident.TimelineEntry) error
}

type Worker struct {
	river.WorkerDefaults[background.NotifyIncidentUpdateArgs]

	incidents incidentGetter
	poster    updatePoster
}

func New(incidents incidentGetter, poster updatePoster) *Worker {
	return &Worker{
		incidents: incidents,
		poster:    poster,
	}
}

func (w *Worker) Work(ctx context.Context, job *river.Job[background.NotifyIncidentUpdateArgs]) error {
	inc, err := w.incidents.Get(ctx, job.Args.IncidentID)
	if errors.Is(err, incident.ErrNotFound) {
		return river.JobCancel(err)
	}
	if err != nil {
		return fmt.Errorf("loading incident %s: %w", job.Args.IncidentID, err)
	}

	for _, entry := range inc.Timeline {
		if entry.ID != job.Args.EntryID {
			continue
		}

		if err := w.poster.PostIncidentUpdate(ctx, inc, entry); err != nil {
			return fmt.Errorf("posting update for incident %s: %w", inc.ID, err)
		}
		return nil
	}

	slog.WarnContext(ctx, "timeline entry not found", "incident_id", inc.ID, "entry_id", job.Args.EntryID)
	return nil
}
