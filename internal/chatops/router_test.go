package chatops

import (
	"errors"
	"testing"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dynoinc/respond/internal/incident"
)

func TestShortcutCreateIncidentOnlyOpensDialog(t *testing.T) {
	f := newFixture(t, Config{})
	f.api.EXPECT().OpenViewContext(gomock.Any(), "trigger-1", gomock.Any()).
		DoAndReturn(func(_ any, _ string, view slack.ModalViewRequest) (*slack.ViewResponse, error) {
			assert.Equal(t, CallbackIncidentCreate, view.CallbackID)
			return &slack.ViewResponse{}, nil
		})

	r, err := f.engine.HandleShortcut(t.Context(), ShortcutEvent{ActionID: ActionCreateIncident, UserID: "U1", TriggerID: "trigger-1"})
	require.NoError(t, err)
	assert.Equal(t, RenderModal, r.Kind)

	all, err := f.incidents.List(t.Context(), incident.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestShortcutListIncidentsFiltersByScope(t *testing.T) {
	f := newFixture(t, Config{})
	f.store.Seed("open one", incident.StatusInvestigating, incident.SeverityOne)
	f.store.Seed("closed one", incident.StatusResolved, incident.SeverityTwo)
	f.api.EXPECT().OpenViewContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(&slack.ViewResponse{}, nil)

	r, err := f.engine.HandleShortcut(t.Context(), ShortcutEvent{ActionID: ActionListIncidents, Filter: incident.ScopeOpen})
	require.NoError(t, err)
	assert.Equal(t, RenderIncidentList, r.Kind)
	require.Len(t, r.Incidents, 1)
	assert.Equal(t, "open one", r.Incidents[0].Name)
	assert.Empty(t, r.Error)
}

func TestShortcutListIncidentsDegradesOnStoreFailure(t *testing.T) {
	f := newFixture(t, Config{})
	f.store.ListErr = errors.New("connection refused")
	f.api.EXPECT().OpenViewContext(gomock.Any(), gomock.Any(), gomock.Any()).Return(&slack.ViewResponse{}, nil)

	r, err := f.engine.HandleShortcut(t.Context(), ShortcutEvent{ActionID: ActionListIncidents})
	require.NoError(t, err)
	assert.Equal(t, RenderIncidentList, r.Kind)
	assert.Empty(t, r.Incidents)
	assert.Equal(t, listErrorMessage, r.Error)
}

func TestShortcutUnknownAction(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.engine.HandleShortcut(t.Context(), ShortcutEvent{ActionID: "launch_rocket"})
	require.ErrorIs(t, err, ErrUnsupportedSubmission)
}

func TestBlockActionOpensDialogForIncident(t *testing.T) {
	tests := map[string]string{
		ActionUpdateSummary:  CallbackSummary,
		ActionAddComment:     CallbackComment,
		ActionUpdateStatus:   CallbackStatus,
		ActionUpdateSeverity: CallbackSeverity,
		ActionUpdateRoles:    CallbackRoles,
	}

	for action, callback := range tests {
		t.Run(action, func(t *testing.T) {
			f := newFixture(t, Config{})
			inc := f.store.Seed("Checkout errors", incident.StatusInvestigating, incident.SeverityOne)
			f.api.EXPECT().OpenViewContext(gomock.Any(), "trigger-1", gomock.Any()).Return(&slack.ViewResponse{}, nil)

			r, err := f.engine.HandleBlockAction(t.Context(), BlockActionEvent{
				ActionID:   action,
				IncidentID: inc.ID,
				UserID:     "U1",
				TriggerID:  "trigger-1",
			})
			require.NoError(t, err)
			require.NotNil(t, r.View)
			assert.Equal(t, callback, r.View.CallbackID)
			assert.Equal(t, inc.ID, r.View.PrivateMetadata)
		})
	}
}

func TestBlockActionMissingIncident(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.engine.HandleBlockAction(t.Context(), BlockActionEvent{ActionID: ActionUpdateStatus, IncidentID: "INC-9"})
	require.ErrorIs(t, err, incident.ErrNotFound)
}

func TestAppHomeOpened(t *testing.T) {
	f := newFixture(t, Config{})
	f.store.Seed("open one", incident.StatusInvestigating, incident.SeverityOne)
	f.api.EXPECT().PublishViewContext(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req slack.PublishViewContextRequest) (*slack.ViewResponse, error) {
			assert.Equal(t, "U1", req.UserID)
			assert.Equal(t, slack.VTHomeTab, req.View.Type)
			return &slack.ViewResponse{}, nil
		})

	r, err := f.engine.HandleAppHomeOpened(t.Context(), "U1")
	require.NoError(t, err)
	assert.Equal(t, RenderHome, r.Kind)
	assert.Len(t, r.Incidents, 1)
}

func TestPostIncidentUpdate(t *testing.T) {
	f := newFixture(t, Config{})
	f.expectAuth()
	f.expectMembers("C1", botUserID)
	f.api.EXPECT().PostMessageContext(gomock.Any(), "C1", gomock.Any(), gomock.Any()).Return("C1", "1.0", nil)

	inc := &incident.Incident{ID: "INC-1", ChannelID: "C1", Status: incident.StatusMitigated}
	err := f.engine.PostIncidentUpdate(t.Context(), inc, incident.TimelineEntry{Type: incident.TimelineStatus, Current: "Mitigated"})
	require.NoError(t, err)

	// Nothing to do without a channel.
	require.NoError(t, f.engine.PostIncidentUpdate(t.Context(), &incident.Incident{ID: "INC-2"}, incident.TimelineEntry{}))
}
