package background

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"

	"github.com/dynoinc/respond/internal/incident"
)

type inserter interface {
	Insert(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (*rivertype.JobInsertResult, error)
}

// Notifier turns committed incident changes into notification jobs, so a slow
// or failing chat API never holds up a mutation.
type Notifier struct {
	client inserter
}

var _ incident.Notifier = (*Notifier)(nil)

func NewNotifier(client *river.Client[pgx.Tx]) *Notifier {
	return &Notifier{client: client}
}

func (n *Notifier) NotifyIncidentUpdate(ctx context.Context, inc *incident.Incident, entry incident.TimelineEntry) error {
	_, err := n.client.Insert(ctx, NotifyIncidentUpdateArgs{
		IncidentID: inc.ID,
		EntryID:    entry.ID,
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueueing notification for %s: %w", inc.ID, err)
	}
	return nil
}
