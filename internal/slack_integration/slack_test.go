package slack_integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynoinc/respond/internal/chatops"
	"github.com/dynoinc/respond/internal/incident"
	"github.com/dynoinc/respond/internal/incident/incidenttest"
)

func TestNewDisabled(t *testing.T) {
	store := incidenttest.NewMemoryStore()
	store.Seed("Checkout errors", incident.StatusInvestigating, incident.SeverityOne)

	integration, err := New(t.Context(), Config{Enabled: false}, incident.NewService(store))
	require.NoError(t, err)
	assert.False(t, integration.Enabled())

	svc := integration.Service()
	r, err := svc.HandleShortcut(t.Context(), chatops.ShortcutEvent{ActionID: chatops.ActionListIncidents})
	require.NoError(t, err)
	assert.Equal(t, chatops.RenderIncidentList, r.Kind)
	assert.Empty(t, r.Incidents)

	res, err := svc.HandleViewSubmission(t.Context(), chatops.ViewSubmissionEvent{
		CallbackID:       chatops.CallbackStatus,
		Fields:           map[string]string{chatops.FieldStatus: "Resolved"},
		TargetIncidentID: "INC-1",
	})
	require.NoError(t, err)
	assert.True(t, res.Disabled)
	assert.Equal(t, incident.StatusInvestigating, res.Incident.Status)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- integration.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestNewEnabledRequiresTokens(t *testing.T) {
	_, err := New(t.Context(), Config{Enabled: true, BotToken: "xoxb-test"}, incident.NewService(incidenttest.NewMemoryStore()))
	require.Error(t, err)
}

func TestDecodeShortcut(t *testing.T) {
	tests := []struct {
		callbackID string
		wantAction string
		wantScope  incident.Scope
		wantOK     bool
	}{
		{chatops.ActionCreateIncident, chatops.ActionCreateIncident, incident.ScopeAll, true},
		{chatops.ActionListIncidents, chatops.ActionListIncidents, incident.ScopeOpen, true},
		{shortcutListAllIncidents, chatops.ActionListIncidents, incident.ScopeAll, true},
		{shortcutListClosedIncidents, chatops.ActionListIncidents, incident.ScopeClosed, true},
		{"make_coffee", "", incident.ScopeAll, false},
	}

	for _, tt := range tests {
		t.Run(tt.callbackID, func(t *testing.T) {
			cb := slack.InteractionCallback{Type: slack.InteractionTypeShortcut, CallbackID: tt.callbackID, TriggerID: "trigger"}
			cb.User.ID = "U1"

			ev, ok := decodeShortcut(cb)
			require.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantAction, ev.ActionID)
			assert.Equal(t, tt.wantScope, ev.Filter)
			if ok {
				assert.Equal(t, "U1", ev.UserID)
				assert.Equal(t, "trigger", ev.TriggerID)
			}
		})
	}
}

func TestDecodeBlockAction(t *testing.T) {
	cb := slack.InteractionCallback{Type: slack.InteractionTypeBlockActions, TriggerID: "trigger"}
	cb.User.ID = "U1"

	_, ok := decodeBlockAction(cb)
	assert.False(t, ok)

	cb.ActionCallback.BlockActions = []*slack.BlockAction{{ActionID: chatops.ActionUpdateStatus, Value: "INC-3"}}
	ev, ok := decodeBlockAction(cb)
	require.True(t, ok)
	assert.Equal(t, chatops.BlockActionEvent{
		ActionID:   chatops.ActionUpdateStatus,
		IncidentID: "INC-3",
		UserID:     "U1",
		TriggerID:  "trigger",
	}, ev)
}

func TestDecodeViewSubmission(t *testing.T) {
	cb := slack.InteractionCallback{Type: slack.InteractionTypeViewSubmission}
	cb.User.ID = "U1"
	cb.User.Name = "alice"
	cb.View.CallbackID = chatops.CallbackRoles
	cb.View.PrivateMetadata = "INC-7"
	cb.View.State = &slack.ViewState{Values: map[string]map[string]slack.BlockAction{
		string(incident.RoleIncidentCommander):  {string(incident.RoleIncidentCommander): {SelectedUser: "UIC"}},
		string(incident.RoleCommunicationsLead): {string(incident.RoleCommunicationsLead): {}},
		chatops.FieldSeverity:                   {chatops.FieldSeverity: {SelectedOption: slack.OptionBlockObject{Value: "SEV1"}}},
		chatops.FieldSummary:                    {chatops.FieldSummary: {Value: "hello"}},
	}}

	ev := decodeViewSubmission(cb)
	assert.Equal(t, chatops.ViewSubmissionEvent{
		CallbackID: chatops.CallbackRoles,
		Fields: map[string]string{
			string(incident.RoleIncidentCommander):  "UIC",
			string(incident.RoleCommunicationsLead): "",
			chatops.FieldSeverity:                   "SEV1",
			chatops.FieldSummary:                    "hello",
		},
		UserID:           "U1",
		UserName:         "alice",
		TargetIncidentID: "INC-7",
	}, ev)
}

func TestDecodeViewSubmissionWithoutState(t *testing.T) {
	cb := slack.InteractionCallback{Type: slack.InteractionTypeViewSubmission}
	cb.View.CallbackID = chatops.CallbackComment

	ev := decodeViewSubmission(cb)
	assert.Empty(t, ev.Fields)
	assert.Equal(t, chatops.CallbackComment, ev.CallbackID)
}

func TestFieldErrors(t *testing.T) {
	ev := chatops.ViewSubmissionEvent{
		CallbackID: chatops.CallbackRoles,
		Fields: map[string]string{
			string(incident.RoleIncidentCommander):  "",
			string(incident.RoleCommunicationsLead): "UGHOST",
		},
	}

	got := fieldErrors(ev, map[string]string{
		"roles":                                 "Assign at least one role",
		string(incident.RoleCommunicationsLead): "This user could not be found",
	})
	assert.Equal(t, map[string]string{
		string(incident.RoleIncidentCommander):  "Assign at least one role",
		string(incident.RoleCommunicationsLead): "This user could not be found",
	}, got)
}

func TestSubmissionResponse(t *testing.T) {
	ev := chatops.ViewSubmissionEvent{
		CallbackID: chatops.CallbackSeverity,
		Fields:     map[string]string{chatops.FieldSeverity: "SEV9"},
	}

	tests := []struct {
		name       string
		err        error
		wantErrors map[string]string
	}{
		{
			name: "success closes the dialog",
		},
		{
			name:       "validation errors stay on their input",
			err:        fmt.Errorf("decoding: %w", incident.NewValidationError(chatops.FieldSeverity, "Choose one of the listed severities")),
			wantErrors: map[string]string{chatops.FieldSeverity: "Choose one of the listed severities"},
		},
		{
			name:       "missing incident is shown on the primary input",
			err:        fmt.Errorf("loading incident: %w", incident.ErrNotFound),
			wantErrors: map[string]string{chatops.FieldSeverity: "This incident no longer exists"},
		},
		{
			name: "unsupported submission closes the dialog",
			err:  fmt.Errorf("callback %q: %w", "make_coffee", chatops.ErrUnsupportedSubmission),
		},
		{
			name: "storage failure closes the dialog",
			err:  fmt.Errorf("saving incident: %w: %w", incident.ErrStorage, errors.New("connection reset")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := (&Integration{}).submissionResponse(t.Context(), ev, tt.err)
			if tt.wantErrors == nil {
				assert.Nil(t, resp)
				return
			}
			require.NotNil(t, resp)
			assert.Equal(t, slack.RAErrors, resp.ResponseAction)
			assert.Equal(t, tt.wantErrors, resp.Errors)
		})
	}
}
