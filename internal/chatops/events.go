package chatops

import (
	"github.com/slack-go/slack"

	"github.com/dynoinc/respond/internal/incident"
)

// Shortcut action ids, as configured on the Slack app.
const (
	ActionCreateIncident = "create_incident"
	ActionListIncidents  = "list_incidents"
)

// Block action ids of the buttons on an incident card.
const (
	ActionUpdateSummary  = "update_summary"
	ActionAddComment     = "add_comment"
	ActionUpdateStatus   = "update_status"
	ActionUpdateSeverity = "update_severity"
	ActionUpdateRoles    = "update_roles"
)

// View callback ids. Each modal the engine opens carries one of these and
// the dispatcher maps it back to a mutation.
const (
	CallbackSummary        = "summary"
	CallbackComment        = "comment"
	CallbackRoles          = "roles"
	CallbackStatus         = "status"
	CallbackSeverity       = "severity"
	CallbackIncidentCreate = "incident_create"
	CallbackIncidentList   = "incident_list"
)

type ShortcutEvent struct {
	ActionID  string
	UserID    string
	ChannelID string
	TriggerID string
	Filter    incident.Scope
}

type BlockActionEvent struct {
	ActionID   string
	IncidentID string
	UserID     string
	TriggerID  string
}

type ViewSubmissionEvent struct {
	CallbackID       string
	Fields           map[string]string
	UserID           string
	UserName         string
	TargetIncidentID string
}

type RenderKind int

const (
	RenderNone RenderKind = iota
	RenderModal
	RenderIncidentList
	RenderHome
)

// Rendering describes what a handler showed the user. View is set when a
// modal was opened.
type Rendering struct {
	Kind      RenderKind
	Incidents []incident.Incident
	Error     string
	View      *slack.ModalViewRequest
}

// Result is what a view submission produced. Disabled is set by the no-op
// variant only.
type Result struct {
	Incident *incident.Incident
	Disabled bool
}
