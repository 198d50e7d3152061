package chatops

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/dynoinc/respond/internal/chatops/mocks"
	"github.com/dynoinc/respond/internal/incident"
	"github.com/dynoinc/respond/internal/incident/incidenttest"
)

const botUserID = "UBOT"

type fixture struct {
	engine    *Engine
	api       *mocks.MockAPI
	incidents *incident.Service
	store     *incidenttest.MemoryStore
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	store := incidenttest.NewMemoryStore()
	incidents := incident.NewService(store)

	if cfg.RetryMaxAttempts == 0 {
		cfg.RetryMaxAttempts = 2
	}
	cfg.RetryInitialInterval = time.Millisecond

	return &fixture{
		engine:    New(api, incidents, cfg),
		api:       api,
		incidents: incidents,
		store:     store,
	}
}

func (f *fixture) expectAuth() *gomock.Call {
	return f.api.EXPECT().AuthTestContext(gomock.Any()).
		Return(&slack.AuthTestResponse{UserID: botUserID, User: "respond", BotID: "B1", TeamID: "T1"}, nil)
}

func (f *fixture) expectMembers(channelID string, members ...string) *gomock.Call {
	return f.api.EXPECT().GetUsersInConversationContext(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, params *slack.GetUsersInConversationParameters) ([]string, string, error) {
			if params.ChannelID != channelID {
				return nil, "", slack.SlackErrorResponse{Err: codeChannelNotFound}
			}
			return members, "", nil
		})
}

func slackErr(code string) error {
	return slack.SlackErrorResponse{Err: code}
}

func TestResolveIdentityCachesResult(t *testing.T) {
	f := newFixture(t, Config{})
	f.expectAuth().Times(1)

	assert.Empty(t, f.engine.BotUserID())

	for range 3 {
		id, err := f.engine.ResolveIdentity(t.Context())
		require.NoError(t, err)
		assert.Equal(t, BotIdentity{ID: botUserID, Name: "respond", BotID: "B1", TeamID: "T1"}, id)
	}
	assert.Equal(t, botUserID, f.engine.BotUserID())
}

func TestResolveIdentityCoalescesConcurrentCalls(t *testing.T) {
	f := newFixture(t, Config{})

	release := make(chan struct{})
	f.api.EXPECT().AuthTestContext(gomock.Any()).
		DoAndReturn(func(context.Context) (*slack.AuthTestResponse, error) {
			<-release
			return &slack.AuthTestResponse{UserID: botUserID}, nil
		}).Times(1)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := f.engine.ResolveIdentity(context.Background())
			assert.NoError(t, err)
			assert.Equal(t, botUserID, id.ID)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
}

func TestResolveIdentityFirstCallerCancellationIsNotShared(t *testing.T) {
	f := newFixture(t, Config{})

	entered := make(chan struct{})
	release := make(chan struct{})
	f.api.EXPECT().AuthTestContext(gomock.Any()).
		DoAndReturn(func(ctx context.Context) (*slack.AuthTestResponse, error) {
			close(entered)
			<-release
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return &slack.AuthTestResponse{UserID: botUserID}, nil
		}).Times(1)

	firstCtx, cancel := context.WithCancel(t.Context())
	first := make(chan error, 1)
	go func() {
		_, err := f.engine.ResolveIdentity(firstCtx)
		first <- err
	}()

	<-entered
	cancel()
	require.ErrorIs(t, <-first, context.Canceled)

	// auth.test is still in flight, so this caller joins it.
	second := make(chan BotIdentity, 1)
	go func() {
		id, err := f.engine.ResolveIdentity(t.Context())
		assert.NoError(t, err)
		second <- id
	}()

	close(release)
	assert.Equal(t, botUserID, (<-second).ID)
	assert.Equal(t, botUserID, f.engine.BotUserID())
}

func TestResolveIdentityFailureKeepsPreviousIdentity(t *testing.T) {
	f := newFixture(t, Config{})
	first := f.expectAuth()
	f.api.EXPECT().AuthTestContext(gomock.Any()).Return(nil, slackErr("invalid_auth")).After(first)

	_, err := f.engine.ResolveIdentity(t.Context())
	require.NoError(t, err)

	f.engine.InvalidateIdentity()
	_, err = f.engine.ResolveIdentity(t.Context())
	require.ErrorIs(t, err, ErrRemoteUnavailable)

	assert.Equal(t, botUserID, f.engine.BotUserID())
}

func TestResolveIdentityRejectsEmptyAnswer(t *testing.T) {
	f := newFixture(t, Config{})
	f.api.EXPECT().AuthTestContext(gomock.Any()).Return(&slack.AuthTestResponse{}, nil)

	_, err := f.engine.ResolveIdentity(t.Context())
	require.ErrorIs(t, err, ErrRemoteUnavailable)
	assert.Empty(t, f.engine.BotUserID())
}

func TestCallRetriesTransientFailures(t *testing.T) {
	f := newFixture(t, Config{})
	gomock.InOrder(
		f.api.EXPECT().AuthTestContext(gomock.Any()).Return(nil, &slack.RateLimitedError{}),
		f.api.EXPECT().AuthTestContext(gomock.Any()).Return(nil, slack.StatusCodeError{Code: 503, Status: "Service Unavailable"}),
		f.expectAuth(),
	)

	id, err := f.engine.ResolveIdentity(t.Context())
	require.NoError(t, err)
	assert.Equal(t, botUserID, id.ID)
}

func TestCallGivesUpAfterBoundedRetries(t *testing.T) {
	f := newFixture(t, Config{RetryMaxAttempts: 2})
	f.api.EXPECT().AuthTestContext(gomock.Any()).
		Return(nil, slack.StatusCodeError{Code: 502, Status: "Bad Gateway"}).Times(3)

	_, err := f.engine.ResolveIdentity(t.Context())
	require.ErrorIs(t, err, ErrRemoteUnavailable)

	var statusErr slack.StatusCodeError
	assert.True(t, errors.As(err, &statusErr))
}

func TestCallDoesNotRetryAPIErrors(t *testing.T) {
	f := newFixture(t, Config{})
	f.api.EXPECT().GetUserInfoContext(gomock.Any(), "U404").Return(nil, slackErr(codeUserNotFound)).Times(1)

	_, err := f.engine.lookupUser(t.Context(), "U404")
	require.ErrorIs(t, err, incident.ErrNotFound)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limited", &slack.RateLimitedError{RetryAfter: time.Second}, true},
		{"server error", slack.StatusCodeError{Code: 500}, true},
		{"client error", slack.StatusCodeError{Code: 403}, false},
		{"api error", slackErr(codeChannelNotFound), false},
		{"cancelled", context.Canceled, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableError(tt.err))
		})
	}
}
