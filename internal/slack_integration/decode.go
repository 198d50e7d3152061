package slack_integration

import (
	"github.com/slack-go/slack"

	"github.com/dynoinc/respond/internal/chatops"
	"github.com/dynoinc/respond/internal/incident"
)

// Global shortcut callback ids configured on the Slack app. The list shortcuts
// differ only in the incidents they show.
const (
	shortcutListAllIncidents    = "list_all_incidents"
	shortcutListClosedIncidents = "list_closed_incidents"
)

func decodeShortcut(cb slack.InteractionCallback) (chatops.ShortcutEvent, bool) {
	ev := chatops.ShortcutEvent{
		ActionID:  cb.CallbackID,
		UserID:    cb.User.ID,
		ChannelID: cb.Channel.ID,
		TriggerID: cb.TriggerID,
	}

	switch cb.CallbackID {
	case chatops.ActionCreateIncident:
	case chatops.ActionListIncidents:
		ev.Filter = incident.ScopeOpen
	case shortcutListAllIncidents:
		ev.ActionID, ev.Filter = chatops.ActionListIncidents, incident.ScopeAll
	case shortcutListClosedIncidents:
		ev.ActionID, ev.Filter = chatops.ActionListIncidents, incident.ScopeClosed
	default:
		return chatops.ShortcutEvent{}, false
	}

	return ev, true
}

// decodeBlockAction takes the first action of the payload. Incident card
// buttons carry the incident id as their value.
func decodeBlockAction(cb slack.InteractionCallback) (chatops.BlockActionEvent, bool) {
	if len(cb.ActionCallback.BlockActions) == 0 {
		return chatops.BlockActionEvent{}, false
	}

	action := cb.ActionCallback.BlockActions[0]
	return chatops.BlockActionEvent{
		ActionID:   action.ActionID,
		IncidentID: action.Value,
		UserID:     cb.User.ID,
		TriggerID:  cb.TriggerID,
	}, true
}

// decodeViewSubmission flattens the view state into block id -> value. Every
// input block the engine renders holds a single element.
func decodeViewSubmission(cb slack.InteractionCallback) chatops.ViewSubmissionEvent {
	fields := make(map[string]string)
	if cb.View.State != nil {
		for blockID, actions := range cb.View.State.Values {
			for _, action := range actions {
				fields[blockID] = actionValue(action)
			}
		}
	}

	return chatops.ViewSubmissionEvent{
		CallbackID:       cb.View.CallbackID,
		Fields:           fields,
		UserID:           cb.User.ID,
		UserName:         cb.User.Name,
		TargetIncidentID: cb.View.PrivateMetadata,
	}
}

func actionValue(action slack.BlockAction) string {
	switch {
	case action.SelectedUser != "":
		return action.SelectedUser
	case action.SelectedOption.Value != "":
		return action.SelectedOption.Value
	}
	return action.Value
}

// primaryFields is where errors that belong to no single input are shown.
var primaryFields = map[string]string{
	chatops.CallbackSummary:        chatops.FieldSummary,
	chatops.CallbackComment:        chatops.FieldComment,
	chatops.CallbackStatus:         chatops.FieldStatus,
	chatops.CallbackSeverity:       chatops.FieldSeverity,
	chatops.CallbackRoles:          string(incident.RoleIncidentCommander),
	chatops.CallbackIncidentCreate: chatops.FieldName,
}

// fieldErrors keeps errors on inputs the dialog has and moves the rest to the
// dialog's primary input, since Slack rejects errors for unknown blocks.
func fieldErrors(ev chatops.ViewSubmissionEvent, errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for field, msg := range errs {
		if _, ok := ev.Fields[field]; ok {
			out[field] = msg
			continue
		}
		if primary, ok := primaryFields[ev.CallbackID]; ok {
			out[primary] = msg
		}
	}
	return out
}
