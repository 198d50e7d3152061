package channel_sync_worker

import (
	"context"
	"errors"
	"testing"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dynoinc/respond/internal/background"
	"github.com/dynoinc/respond/internal/chatops"
	"github.com/dynoinc/respond/internal/incident"
	"github.com/dynoinc/respond/internal/incident/incidenttest"
)

type fakeMembership struct {
	bot     chatops.BotIdentity
	failFor string
	joined  []string
}

func (f *fakeMembership) ResolveIdentity(context.Context) (chatops.BotIdentity, error) {
	return f.bot, nil
}

func (f *fakeMembership) EnsureMember(_ context.Context, userID, channelID string) error {
	if channelID == f.failFor {
		return errors.New("channel_not_found")
	}
	f.joined = append(f.joined, userID+"@"+channelID)
	return nil
}

func seed(store *incidenttest.MemoryStore, name, channelID string, status incident.Status) {
	inc := store.Seed(name, status, incident.SeverityTwo)
	inc.ChannelID = channelID
	store.Put(inc)
}

func job() *river.Job[background.ChannelSyncArgs] {
	return &river.Job[background.ChannelSyncArgs]{JobRow: &rivertype.JobRow{}}
}

func TestWorkJoinsOpenIncidentChannels(t *testing.T) {
	store := incidenttest.NewMemoryStore()
	seed(store, "open with channel", "C1", incident.StatusInvestigating)
	seed(store, "open without channel", "", incident.StatusStarted)
	seed(store, "resolved", "C3", incident.StatusResolved)

	members := &fakeMembership{bot: chatops.BotIdentity{ID: "UBOT"}}
	require.NoError(t, New(incident.NewService(store), members).Work(t.Context(), job()))
	assert.Equal(t, []string{"UBOT@C1"}, members.joined)
}

func TestWorkReportsFailuresAndContinues(t *testing.T) {
	store := incidenttest.NewMemoryStore()
	seed(store, "one", "C1", incident.StatusInvestigating)
	seed(store, "two", "C2", incident.StatusInvestigating)

	members := &fakeMembership{bot: chatops.BotIdentity{ID: "UBOT"}, failFor: "C1"}
	err := New(incident.NewService(store), members).Work(t.Context(), job())
	require.ErrorContains(t, err, "channel_not_found")
	assert.Equal(t, []string{"UBOT@C2"}, members.joined)
}

func TestWorkSkipsWithoutBotIdentity(t *testing.T) {
	store := incidenttest.NewMemoryStore()
	seed(store, "one", "C1", incident.StatusInvestigating)

	members := &fakeMembership{}
	require.NoError(t, New(incident.NewService(store), members).Work(t.Context(), job()))
	assert.Empty(t, members.joined)
}
