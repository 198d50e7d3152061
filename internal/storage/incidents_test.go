package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/dynoinc/respond/internal/incident"
)

func newTestStore(t *testing.T) *IncidentStore {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	postgresContainer, err := postgres.Run(ctx, PostgresImage, postgres.BasicWaitStrategies())
	require.NoError(t, err)
	t.Cleanup(func() { _ = postgresContainer.Terminate(ctx) })

	pool, err := New(ctx, postgresContainer.MustConnectionString(ctx, "sslmode=disable"))
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return NewIncidentStore(pool)
}

func TestIncidentStore(t *testing.T) {
	store := newTestStore(t)
	svc := incident.NewService(store)
	ctx := t.Context()

	commander := incident.User{ID: "U0IC", Name: "Ada"}
	inc, err := svc.Create(ctx, incident.CreateRequest{
		Name:      "Checkout errors",
		Type:      incident.TypeAvailability,
		Severity:  incident.SeverityOne,
		Tags:      []string{"checkout"},
		Roles:     []incident.Role{{Type: incident.RoleIncidentCommander, User: commander}},
		CreatedBy: commander,
	})
	require.NoError(t, err)
	assert.Equal(t, "INC-1", inc.ID)
	require.Len(t, inc.Timeline, 1)
	assert.Equal(t, incident.TimelineIncidentCreated, inc.Timeline[0].Type)

	t.Run("mutations append to the timeline", func(t *testing.T) {
		actor := incident.User{ID: "U1"}
		_, err := svc.Apply(ctx, inc.ID, actor, incident.StatusMutation{Status: incident.StatusMitigated})
		require.NoError(t, err)
		_, err = svc.Apply(ctx, inc.ID, actor, incident.CommentMutation{Text: "rolled back"})
		require.NoError(t, err)

		got, err := store.Load(ctx, inc.ID)
		require.NoError(t, err)
		assert.Equal(t, incident.StatusMitigated, got.Status)
		assert.Equal(t, incident.SeverityOne, got.Severity)
		assert.Equal(t, []string{"checkout"}, got.Tags)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "rolled back", got.Comments[0].Text)

		require.Len(t, got.Timeline, 3)
		assert.Equal(t, incident.TimelineStatus, got.Timeline[1].Type)
		assert.Equal(t, "Started", got.Timeline[1].Previous)
		assert.Equal(t, "Mitigated", got.Timeline[1].Current)
		assert.Equal(t, actor, got.Timeline[1].Actor)
		assert.Equal(t, incident.TimelineComment, got.Timeline[2].Type)

		ic, ok := got.Role(incident.RoleIncidentCommander)
		require.True(t, ok)
		assert.Equal(t, commander, ic)
	})

	t.Run("saving twice keeps one timeline row per entry", func(t *testing.T) {
		got, err := store.Load(ctx, inc.ID)
		require.NoError(t, err)

		again, err := store.Save(ctx, got)
		require.NoError(t, err)
		assert.Len(t, again.Timeline, len(got.Timeline))
	})

	t.Run("list filters by scope", func(t *testing.T) {
		closed, err := svc.Create(ctx, incident.CreateRequest{Name: "Old outage"})
		require.NoError(t, err)
		_, err = svc.Apply(ctx, closed.ID, incident.User{ID: "U1"}, incident.StatusMutation{Status: incident.StatusResolved})
		require.NoError(t, err)

		open, err := store.List(ctx, incident.ListFilter{Scope: incident.ScopeOpen})
		require.NoError(t, err)
		require.Len(t, open, 1)
		assert.Equal(t, inc.ID, open[0].ID)

		done, err := store.List(ctx, incident.ListFilter{Scope: incident.ScopeClosed})
		require.NoError(t, err)
		require.Len(t, done, 1)
		assert.Equal(t, closed.ID, done[0].ID)

		all, err := store.List(ctx, incident.ListFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, closed.ID, all[0].ID)
	})

	t.Run("timeline keeps insertion order when clocks disagree", func(t *testing.T) {
		now := time.Now().UTC()
		created := incident.TimelineEntry{ID: uuid.New(), Type: incident.TimelineIncidentCreated, CreatedAt: now}
		seeded, err := store.Create(ctx, &incident.Incident{
			Name:      "Clock skew",
			Type:      incident.TypeOther,
			Status:    incident.StatusStarted,
			Severity:  incident.SeverityTwo,
			CreatedAt: now,
			UpdatedAt: now,
			Timeline:  []incident.TimelineEntry{created},
		})
		require.NoError(t, err)

		// The second entry carries an earlier timestamp, the third the same one.
		seeded.Timeline = append(seeded.Timeline,
			incident.TimelineEntry{ID: uuid.New(), Type: incident.TimelineStatus, Current: "Investigating", CreatedAt: now.Add(-time.Minute)},
			incident.TimelineEntry{ID: uuid.New(), Type: incident.TimelineComment, Current: "second", CreatedAt: now.Add(-time.Minute)},
		)
		saved, err := store.Save(ctx, seeded)
		require.NoError(t, err)

		require.Len(t, saved.Timeline, 3)
		assert.Equal(t, created.ID, saved.Timeline[0].ID)
		assert.Equal(t, incident.TimelineStatus, saved.Timeline[1].Type)
		assert.Equal(t, "second", saved.Timeline[2].Current)
	})

	t.Run("unknown incidents are not found", func(t *testing.T) {
		for _, id := range []string{"INC-404", "INC-x", "42", ""} {
			_, err := store.Load(ctx, id)
			require.ErrorIs(t, err, incident.ErrNotFound, id)
		}

		_, err := store.Save(ctx, &incident.Incident{ID: "INC-404", Status: incident.StatusStarted})
		require.ErrorIs(t, err, incident.ErrNotFound)
	})
}

func TestParseIncidentID(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"INC-1", 1, true},
		{"INC-1234", 1234, true},
		{"INC-0", 0, false},
		{"INC--3", 0, false},
		{"inc-1", 0, false},
		{"1", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseIncidentID(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.Equal(t, tt.in, formatIncidentID(got))
			}
		})
	}
}
