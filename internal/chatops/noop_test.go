package chatops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynoinc/respond/internal/incident"
	"github.com/dynoinc/respond/internal/incident/incidenttest"
)

func TestNoOpNeverFails(t *testing.T) {
	store := incidenttest.NewMemoryStore()
	incidents := incident.NewService(store)
	inc := store.Seed("Checkout errors", incident.StatusInvestigating, incident.SeverityOne)

	svc := NewNoOp(incidents)
	ctx := t.Context()

	id, err := svc.ResolveIdentity(ctx)
	require.NoError(t, err)
	assert.True(t, id.IsZero())
	assert.Empty(t, svc.BotUserID())

	ok, err := svc.IsMember(ctx, "U1", "C1")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, svc.EnsureMember(ctx, "U1", "C1"))

	members, err := svc.ListMembers(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, members)

	channels, err := svc.ListChannels(ctx)
	require.NoError(t, err)
	assert.NotNil(t, channels)
	assert.Empty(t, channels)

	r, err := svc.HandleShortcut(ctx, ShortcutEvent{ActionID: ActionListIncidents, Filter: incident.ScopeOpen})
	require.NoError(t, err)
	assert.Equal(t, RenderIncidentList, r.Kind)
	assert.Empty(t, r.Incidents)

	r, err = svc.HandleShortcut(ctx, ShortcutEvent{ActionID: ActionCreateIncident})
	require.NoError(t, err)
	assert.Equal(t, RenderNone, r.Kind)

	r, err = svc.HandleBlockAction(ctx, BlockActionEvent{ActionID: ActionUpdateStatus, IncidentID: inc.ID})
	require.NoError(t, err)
	assert.Equal(t, RenderNone, r.Kind)

	r, err = svc.HandleAppHomeOpened(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, RenderNone, r.Kind)

	require.NoError(t, svc.PostIncidentUpdate(ctx, inc, incident.TimelineEntry{}))
}

func TestNoOpViewSubmissionLeavesIncidentUnchanged(t *testing.T) {
	store := incidenttest.NewMemoryStore()
	inc := store.Seed("Checkout errors", incident.StatusInvestigating, incident.SeverityOne)
	svc := NewNoOp(incident.NewService(store))

	for _, callback := range []string{CallbackStatus, CallbackComment, "unknown_callback", CallbackIncidentCreate} {
		res, err := svc.HandleViewSubmission(t.Context(), ViewSubmissionEvent{
			CallbackID:       callback,
			Fields:           map[string]string{FieldStatus: "Resolved"},
			TargetIncidentID: inc.ID,
		})
		require.NoError(t, err)
		assert.True(t, res.Disabled)
		assert.Equal(t, inc, res.Incident)
	}

	res, err := svc.HandleViewSubmission(t.Context(), ViewSubmissionEvent{CallbackID: CallbackStatus, TargetIncidentID: "INC-404"})
	require.NoError(t, err)
	assert.True(t, res.Disabled)
	assert.Nil(t, res.Incident)

	assert.Zero(t, store.Saves)
}

func TestNoOpWithoutIncidents(t *testing.T) {
	res, err := NewNoOp(nil).HandleViewSubmission(t.Context(), ViewSubmissionEvent{CallbackID: CallbackSummary, TargetIncidentID: "INC-1"})
	require.NoError(t, err)
	assert.Equal(t, Result{Disabled: true}, res)
}
