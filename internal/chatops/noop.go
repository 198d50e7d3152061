package chatops

import (
	"context"
	"log/slog"

	"github.com/dynoinc/respond/internal/incident"
)

// IncidentReader is what the no-op variant needs to answer submissions with
// the current state of an incident.
type IncidentReader interface {
	Get(ctx context.Context, id string) (*incident.Incident, error)
}

type noop struct {
	incidents IncidentReader
}

// NewNoOp returns the Service used when the Slack integration is turned off.
// It never calls Slack and never fails: queries come back empty and mutations
// report Disabled. incidents may be nil.
func NewNoOp(incidents IncidentReader) Service {
	return noop{incidents: incidents}
}

func (noop) log(ctx context.Context, op string) {
	slog.DebugContext(ctx, "Slack integration is disabled", "op", op)
}

func (n noop) ResolveIdentity(ctx context.Context) (BotIdentity, error) {
	n.log(ctx, "ResolveIdentity")
	return BotIdentity{}, nil
}

func (noop) BotUserID() string { return "" }

func (noop) InvalidateIdentity() {}

func (n noop) IsMember(ctx context.Context, _, _ string) (bool, error) {
	n.log(ctx, "IsMember")
	return false, nil
}

func (n noop) EnsureMember(ctx context.Context, _, _ string) error {
	n.log(ctx, "EnsureMember")
	return nil
}

func (n noop) ListMembers(ctx context.Context, _ string) ([]string, error) {
	n.log(ctx, "ListMembers")
	return []string{}, nil
}

func (n noop) ListChannels(ctx context.Context) ([]Channel, error) {
	n.log(ctx, "ListChannels")
	return []Channel{}, nil
}

func (n noop) HandleShortcut(ctx context.Context, ev ShortcutEvent) (Rendering, error) {
	n.log(ctx, "HandleShortcut")
	if ev.ActionID == ActionListIncidents {
		return Rendering{Kind: RenderIncidentList, Incidents: []incident.Incident{}}, nil
	}
	return Rendering{Kind: RenderNone}, nil
}

func (n noop) HandleBlockAction(ctx context.Context, _ BlockActionEvent) (Rendering, error) {
	n.log(ctx, "HandleBlockAction")
	return Rendering{Kind: RenderNone}, nil
}

// HandleViewSubmission returns the incident unchanged when it can be read.
func (n noop) HandleViewSubmission(ctx context.Context, ev ViewSubmissionEvent) (Result, error) {
	n.log(ctx, "HandleViewSubmission")

	res := Result{Disabled: true}
	if n.incidents == nil || ev.TargetIncidentID == "" {
		return res, nil
	}
	if inc, err := n.incidents.Get(ctx, ev.TargetIncidentID); err == nil {
		res.Incident = inc
	}
	return res, nil
}

func (n noop) HandleAppHomeOpened(ctx context.Context, _ string) (Rendering, error) {
	n.log(ctx, "HandleAppHomeOpened")
	return Rendering{Kind: RenderNone}, nil
}

func (n noop) PostIncidentUpdate(ctx context.Context, _ *incident.Incident, _ incident.TimelineEntry) error {
	n.log(ctx, "PostIncidentUpdate")
	return nil
}
