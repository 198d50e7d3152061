package chatops

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/trace"

	"github.com/dynoinc/respond/internal/incident"
	"github.com/dynoinc/respond/internal/otel/semconv"
)

const listErrorMessage = "Incidents could not be loaded right now. Try again in a moment."

// HandleShortcut answers a global shortcut. Declaring an incident only opens
// the dialog; the incident is created when the dialog is submitted.
func (e *Engine) HandleShortcut(ctx context.Context, ev ShortcutEvent) (Rendering, error) {
	ctx, span := tracer.Start(ctx, "chatops.HandleShortcut", trace.WithAttributes(
		semconv.SlackActionIDKey.String(ev.ActionID),
		semconv.SlackUserKey.String(ev.UserID),
	))
	defer span.End()

	switch ev.ActionID {
	case ActionCreateIncident:
		view := createIncidentView()
		if err := e.openView(ctx, ev.TriggerID, view); err != nil {
			return Rendering{}, err
		}
		return Rendering{Kind: RenderModal, View: view}, nil

	case ActionListIncidents:
		return e.listIncidents(ctx, ev)
	}

	return Rendering{}, fmt.Errorf("shortcut %q: %w", ev.ActionID, ErrUnsupportedSubmission)
}

// listIncidents never fails because the store did: the error is shown in the
// list instead.
func (e *Engine) listIncidents(ctx context.Context, ev ShortcutEvent) (Rendering, error) {
	r := Rendering{Kind: RenderIncidentList}

	incidents, err := e.incidents.List(ctx, incident.ListFilter{Scope: ev.Filter, Limit: listIncidentsMax})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list incidents", "scope", ev.Filter, "error", err)
		r.Error = listErrorMessage
	} else {
		r.Incidents = incidents
	}

	r.View = incidentListView(ev.Filter, r.Incidents, r.Error)
	if err := e.openView(ctx, ev.TriggerID, r.View); err != nil {
		return r, err
	}
	return r, nil
}

// HandleBlockAction opens the dialog behind one of the buttons on an incident
// card or on the App Home tab.
func (e *Engine) HandleBlockAction(ctx context.Context, ev BlockActionEvent) (Rendering, error) {
	if ev.ActionID == ActionCreateIncident {
		return e.HandleShortcut(ctx, ShortcutEvent{ActionID: ev.ActionID, UserID: ev.UserID, TriggerID: ev.TriggerID})
	}

	ctx, span := tracer.Start(ctx, "chatops.HandleBlockAction", trace.WithAttributes(
		semconv.SlackActionIDKey.String(ev.ActionID),
		semconv.IncidentIDKey.String(ev.IncidentID),
	))
	defer span.End()

	var build func(*incident.Incident) *slack.ModalViewRequest
	switch ev.ActionID {
	case ActionUpdateSummary:
		build = summaryView
	case ActionAddComment:
		build = commentView
	case ActionUpdateStatus:
		build = statusView
	case ActionUpdateSeverity:
		build = severityView
	case ActionUpdateRoles:
		build = rolesView
	default:
		return Rendering{}, fmt.Errorf("block action %q: %w", ev.ActionID, ErrUnsupportedSubmission)
	}

	inc, err := e.incidents.Get(ctx, ev.IncidentID)
	if err != nil {
		return Rendering{}, err
	}

	view := build(inc)
	if err := e.openView(ctx, ev.TriggerID, view); err != nil {
		return Rendering{}, err
	}
	return Rendering{Kind: RenderModal, View: view}, nil
}

// HandleAppHomeOpened publishes the App Home tab listing open incidents.
func (e *Engine) HandleAppHomeOpened(ctx context.Context, userID string) (Rendering, error) {
	r := Rendering{Kind: RenderHome}

	incidents, err := e.incidents.List(ctx, incident.ListFilter{Scope: incident.ScopeOpen, Limit: listIncidentsMax})
	if err != nil {
		slog.ErrorContext(ctx, "failed to list incidents for app home", "user_id", userID, "error", err)
		r.Error = listErrorMessage
	} else {
		r.Incidents = incidents
	}

	err = e.call(ctx, "views.publish", func(ctx context.Context) error {
		_, err := e.api.PublishViewContext(ctx, slack.PublishViewContextRequest{
			UserID: userID,
			View:   homeView(r.Incidents, r.Error),
		})
		return err
	})
	if err != nil {
		return r, fmt.Errorf("publishing app home for %s: %w", userID, err)
	}
	return r, nil
}

func (e *Engine) openView(ctx context.Context, triggerID string, view *slack.ModalViewRequest) error {
	err := e.call(ctx, "views.open", func(ctx context.Context) error {
		_, err := e.api.OpenViewContext(ctx, triggerID, *view)
		return err
	})
	if err != nil {
		return fmt.Errorf("opening %s dialog: %w", view.CallbackID, err)
	}
	return nil
}
