package chatops

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/slack-go/slack"

	"github.com/dynoinc/respond/internal/incident"
)

const maxChannelNameLength = 80

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// channelName derives "inc-<n>-<slug>" from an incident id like "INC-12".
func channelName(inc *incident.Incident) string {
	number := strings.TrimPrefix(strings.ToLower(inc.ID), "inc-")
	slug := strings.Trim(nonSlugChars.ReplaceAllString(strings.ToLower(inc.Name), "-"), "-")

	name := "inc-" + number
	if slug != "" {
		name += "-" + slug
	}
	if len(name) > maxChannelNameLength {
		name = strings.TrimRight(name[:maxChannelNameLength], "-")
	}
	return name
}

// createIncident only commits the incident, so the dialog is acked while
// Slack is still slow. The Incident_Created notification sets up the channel.
func (e *Engine) createIncident(ctx context.Context, actor incident.User, fields map[string]string) (Result, error) {
	req, err := e.decodeCreate(ctx, actor, fields)
	if err != nil {
		return Result{}, err
	}

	inc, err := e.incidents.Create(ctx, req)
	if err != nil {
		return Result{}, err
	}
	return Result{Incident: inc}, nil
}

// setUpIncident opens the incident channel, invites the declarer and the
// commander, posts the incident card and announces the incident. Only a failed
// channel creation is returned; the rest is logged so a retry never posts twice.
func (e *Engine) setUpIncident(ctx context.Context, inc *incident.Incident, declarer incident.User) error {
	if inc.ChannelID == "" {
		updated, err := e.openIncidentChannel(ctx, declarer, inc)
		switch {
		case err == nil:
			inc = updated
		case slackErrorCode(err) == codeNameTaken:
			slog.WarnContext(ctx, "incident channel name is taken, continuing without a channel", "incident_id", inc.ID, "error", err)
		default:
			return err
		}
	}

	if inc.ChannelID != "" {
		invitees := []string{declarer.ID}
		if ic, ok := inc.Role(incident.RoleIncidentCommander); ok && ic.ID != declarer.ID {
			invitees = append(invitees, ic.ID)
		}
		for _, userID := range invitees {
			if userID == "" {
				continue
			}
			if err := e.EnsureMember(ctx, userID, inc.ChannelID); err != nil {
				slog.WarnContext(ctx, "failed to invite responder", "incident_id", inc.ID, "user_id", userID, "error", err)
			}
		}

		if err := e.post(ctx, inc.ChannelID, inc.Name, incidentCard(inc)); err != nil {
			slog.WarnContext(ctx, "failed to post incident card", "incident_id", inc.ID, "error", err)
		}
	}

	if e.cfg.AnnouncementChannelID != "" {
		if err := e.post(ctx, e.cfg.AnnouncementChannelID, "Incident declared: "+inc.Name, announcement(inc)); err != nil {
			slog.WarnContext(ctx, "failed to announce incident", "incident_id", inc.ID, "error", err)
		}
	}

	return nil
}

// openIncidentChannel creates the incident's channel and records it on the
// incident.
func (e *Engine) openIncidentChannel(ctx context.Context, actor incident.User, inc *incident.Incident) (*incident.Incident, error) {
	name := channelName(inc)

	var ch *slack.Channel
	err := e.call(ctx, "conversations.create", func(ctx context.Context) error {
		var err error
		ch, err = e.api.CreateConversationContext(ctx, slack.CreateConversationParams{ChannelName: name})
		return err
	})
	if err != nil {
		if slackErrorCode(err) == codeNameTaken {
			return nil, fmt.Errorf("channel #%s already exists: %w", name, err)
		}
		return nil, fmt.Errorf("creating channel #%s: %w", name, err)
	}

	// The creator of a channel is always in it.
	if botID := e.BotUserID(); botID != "" {
		e.members.Add(ch.ID, memberSet{botID: {}})
	}

	return e.incidents.Apply(ctx, inc.ID, actor, incident.ChannelMutation{ChannelID: ch.ID, ChannelName: ch.Name})
}

// PostIncidentUpdate posts a timeline entry to the incident's channel. The bot
// rejoins the channel first if someone removed it. An Incident_Created entry
// sets the incident up in Slack instead.
func (e *Engine) PostIncidentUpdate(ctx context.Context, inc *incident.Incident, entry incident.TimelineEntry) error {
	if entry.Type == incident.TimelineIncidentCreated {
		return e.setUpIncident(ctx, inc, entry.Actor)
	}
	if inc.ChannelID == "" {
		return nil
	}

	bot, err := e.ResolveIdentity(ctx)
	if err != nil {
		return err
	}
	if err := e.EnsureMember(ctx, bot.ID, inc.ChannelID); err != nil {
		return err
	}

	return e.post(ctx, inc.ChannelID, entry.Describe(), updateMessage(inc, entry))
}

func (e *Engine) post(ctx context.Context, channelID, fallback string, blocks []slack.Block) error {
	err := e.call(ctx, "chat.postMessage", func(ctx context.Context) error {
		_, _, err := e.api.PostMessageContext(ctx, channelID,
			slack.MsgOptionText(fallback, false),
			slack.MsgOptionBlocks(blocks...),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("posting to %s: %w", channelID, err)
	}
	return nil
}
