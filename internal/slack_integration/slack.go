package slack_integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/dynoinc/respond/internal/chatops"
	"github.com/dynoinc/respond/internal/incident"
)

type Config struct {
	Enabled  bool   `default:"false"`
	BotToken string `split_words:"true"`
	AppToken string `split_words:"true"`
	Debug    bool   `default:"false"`

	AnnouncementChannelID string        `split_words:"true"`
	MembershipCacheTTL    time.Duration `split_words:"true" default:"30s"`
	RetryMaxAttempts      int           `split_words:"true" default:"3"`
}

// Integration is the only place that knows whether Slack is turned on. The
// rest of the process talks to Service() and cannot tell the difference.
type Integration struct {
	c       Config
	service chatops.Service
	client  *socketmode.Client
}

func New(ctx context.Context, c Config, incidents chatops.Incidents) (*Integration, error) {
	if !c.Enabled {
		slog.InfoContext(ctx, "Slack integration is disabled")
		return &Integration{c: c, service: chatops.NewNoOp(incidents)}, nil
	}

	if c.BotToken == "" || c.AppToken == "" {
		return nil, errors.New("slack bot and app tokens are required when the integration is enabled")
	}

	api := slack.New(c.BotToken,
		slack.OptionAppLevelToken(c.AppToken),
		slack.OptionDebug(c.Debug),
		slack.OptionHTTPClient(&http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   30 * time.Second,
		}),
	)

	engine := chatops.New(api, incidents, chatops.Config{
		AnnouncementChannelID: c.AnnouncementChannelID,
		MembershipCacheTTL:    c.MembershipCacheTTL,
		RetryMaxAttempts:      c.RetryMaxAttempts,
	})

	bot, err := engine.ResolveIdentity(ctx)
	if err != nil {
		return nil, fmt.Errorf("slack API test failed: %w", err)
	}
	slog.InfoContext(ctx, "Slack integration is enabled", "bot_user_id", bot.ID, "team_id", bot.TeamID)

	return &Integration{
		c:       c,
		service: engine,
		client:  socketmode.New(api, socketmode.OptionDebug(c.Debug)),
	}, nil
}

func (b *Integration) Enabled() bool {
	return b.client != nil
}

func (b *Integration) Service() chatops.Service {
	return b.service
}

// Run consumes Socket Mode events until ctx is done. Every event is handled on
// its own goroutine; ordering between mutations of one incident is enforced
// by the incident service.
func (b *Integration) Run(ctx context.Context) error {
	if b.client == nil {
		<-ctx.Done()
		return nil
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-b.client.Events:
				go b.handleEvent(ctx, evt)
			}
		}
	}()

	return b.client.RunContext(ctx)
}

func (b *Integration) handleEvent(ctx context.Context, evt socketmode.Event) {
	defer sentry.RecoverWithContext(ctx)

	switch evt.Type {
	case socketmode.EventTypeConnecting, socketmode.EventTypeConnected:
		slog.DebugContext(ctx, "socket mode", "event", evt.Type)

	case socketmode.EventTypeConnectionError:
		slog.WarnContext(ctx, "socket mode connection error", "data", evt.Data)

	case socketmode.EventTypeEventsAPI:
		eventsAPI, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}

		b.ack(ctx, evt, nil)
		if err := b.handleEventAPI(ctx, eventsAPI); err != nil {
			b.reportError(ctx, "error handling event", err)
		}

	case socketmode.EventTypeInteractive:
		callback, ok := evt.Data.(slack.InteractionCallback)
		if !ok {
			return
		}

		b.handleInteraction(ctx, evt, callback)
	}
}

func (b *Integration) handleEventAPI(ctx context.Context, event slackevents.EventsAPIEvent) error {
	if event.Type != slackevents.CallbackEvent {
		return nil
	}

	switch ev := event.InnerEvent.Data.(type) {
	case *slackevents.AppHomeOpenedEvent:
		if ev.Tab != "home" {
			return nil
		}
		if _, err := b.service.HandleAppHomeOpened(ctx, ev.User); err != nil {
			return fmt.Errorf("publishing app home: %w", err)
		}
	default:
		slog.DebugContext(ctx, "unhandled event", "type", fmt.Sprintf("%T", ev))
	}

	return nil
}

// handleInteraction acks shortcuts and button clicks straight away so the
// trigger id is still valid when the dialog opens. View submissions are acked
// with the outcome, which is how field errors reach the dialog.
func (b *Integration) handleInteraction(ctx context.Context, evt socketmode.Event, callback slack.InteractionCallback) {
	switch callback.Type {
	case slack.InteractionTypeShortcut:
		b.ack(ctx, evt, nil)
		ev, ok := decodeShortcut(callback)
		if !ok {
			slog.WarnContext(ctx, "unknown shortcut", "callback_id", callback.CallbackID)
			return
		}
		if _, err := b.service.HandleShortcut(ctx, ev); err != nil {
			b.reportError(ctx, "error handling shortcut", err)
		}

	case slack.InteractionTypeBlockActions:
		b.ack(ctx, evt, nil)
		ev, ok := decodeBlockAction(callback)
		if !ok {
			return
		}
		if _, err := b.service.HandleBlockAction(ctx, ev); err != nil {
			b.reportError(ctx, "error handling block action", err)
		}

	case slack.InteractionTypeViewSubmission:
		ev := decodeViewSubmission(callback)
		_, err := b.service.HandleViewSubmission(ctx, ev)
		if resp := b.submissionResponse(ctx, ev, err); resp != nil {
			b.ack(ctx, evt, resp)
			return
		}
		b.ack(ctx, evt, nil)

	default:
		b.ack(ctx, evt, nil)
	}
}

// submissionResponse maps the outcome of a submission to the ack payload.
// Only field errors are shown in the dialog; everything else closes it.
func (b *Integration) submissionResponse(ctx context.Context, ev chatops.ViewSubmissionEvent, err error) *slack.ViewSubmissionResponse {
	if err == nil {
		return nil
	}

	var verr *incident.ValidationError
	switch {
	case errors.As(err, &verr):
		return slack.NewErrorsViewSubmissionResponse(fieldErrors(ev, verr.Fields))
	case errors.Is(err, incident.ErrNotFound):
		return slack.NewErrorsViewSubmissionResponse(fieldErrors(ev, map[string]string{"": "This incident no longer exists"}))
	case errors.Is(err, chatops.ErrUnsupportedSubmission):
		return nil
	}

	b.reportError(ctx, "error handling view submission", err)
	return nil
}

func (b *Integration) ack(ctx context.Context, evt socketmode.Event, payload any) {
	if evt.Request == nil {
		return
	}
	if err := b.client.AckCtx(ctx, evt.Request.EnvelopeID, payload); err != nil {
		slog.WarnContext(ctx, "failed to ack event", "envelope_id", evt.Request.EnvelopeID, "error", err)
	}
}

func (b *Integration) reportError(ctx context.Context, msg string, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	sentry.CaptureException(err)
	slog.ErrorContext(ctx, msg, "error", err)
}
