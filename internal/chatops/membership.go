package chatops

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"

	"github.com/slack-go/slack"
)

type Channel struct {
	ID       string
	Name     string
	Metadata map[string]string
}

type memberSet map[string]struct{}

// IsMember reports whether entityID (a user or the bot) is in channelID. A
// channel Slack does not know has no members.
func (e *Engine) IsMember(ctx context.Context, entityID, channelID string) (bool, error) {
	members, err := e.channelMembers(ctx, channelID)
	if err != nil {
		if slackErrorCode(err) == codeChannelNotFound {
			return false, nil
		}
		return false, fmt.Errorf("checking membership of %s in %s: %w", entityID, channelID, err)
	}

	_, ok := members[entityID]
	return ok, nil
}

// EnsureMember adds entityID to channelID unless it is already there. The bot
// joins on its own; anyone else is invited.
func (e *Engine) EnsureMember(ctx context.Context, entityID, channelID string) error {
	member, err := e.IsMember(ctx, entityID, channelID)
	if err != nil {
		return err
	}
	if member {
		return nil
	}

	bot, err := e.ResolveIdentity(ctx)
	if err != nil {
		return fmt.Errorf("resolving bot identity: %w", err)
	}

	if entityID == bot.ID {
		err = e.call(ctx, "conversations.join", func(ctx context.Context) error {
			_, _, _, err := e.api.JoinConversationContext(ctx, channelID)
			return err
		})
	} else {
		err = e.call(ctx, "conversations.invite", func(ctx context.Context) error {
			_, err := e.api.InviteUsersToConversationContext(ctx, channelID, entityID)
			return err
		})
	}

	// Whatever happened, our view of the channel is out of date.
	e.members.Remove(channelID)

	if err != nil && slackErrorCode(err) != codeAlreadyInChannel {
		return fmt.Errorf("adding %s to %s: %w", entityID, channelID, err)
	}

	slog.DebugContext(ctx, "ensured channel membership", "channel_id", channelID, "entity_id", entityID)
	return nil
}

// ListMembers returns the members of channelID in no particular order.
func (e *Engine) ListMembers(ctx context.Context, channelID string) ([]string, error) {
	members, err := e.channelMembers(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", channelID, err)
	}
	return slices.Collect(maps.Keys(members)), nil
}

func (e *Engine) channelMembers(ctx context.Context, channelID string) (memberSet, error) {
	if members, ok := e.members.Get(channelID); ok {
		return members, nil
	}

	members := make(memberSet)
	params := &slack.GetUsersInConversationParameters{ChannelID: channelID, Limit: 1000}
	for {
		var (
			page   []string
			cursor string
		)
		err := e.call(ctx, "conversations.members", func(ctx context.Context) error {
			var err error
			page, cursor, err = e.api.GetUsersInConversationContext(ctx, params)
			return err
		})
		if err != nil {
			return nil, err
		}

		for _, id := range page {
			members[id] = struct{}{}
		}
		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	e.members.Add(channelID, members)
	return members, nil
}

// ListChannels returns every public and private channel the bot can see,
// excluding archived ones.
func (e *Engine) ListChannels(ctx context.Context) ([]Channel, error) {
	params := &slack.GetConversationsParameters{
		Types:           []string{"public_channel", "private_channel"},
		ExcludeArchived: true,
		Limit:           200,
	}

	var channels []Channel
	for {
		var (
			page   []slack.Channel
			cursor string
		)
		err := e.call(ctx, "conversations.list", func(ctx context.Context) error {
			var err error
			page, cursor, err = e.api.GetConversationsContext(ctx, params)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("listing channels: %w", err)
		}

		for _, ch := range page {
			channels = append(channels, toChannel(ch))
		}
		if cursor == "" {
			break
		}
		params.Cursor = cursor
	}

	return channels, nil
}

func toChannel(ch slack.Channel) Channel {
	return Channel{
		ID:   ch.ID,
		Name: ch.Name,
		Metadata: map[string]string{
			"topic":       ch.Topic.Value,
			"purpose":     ch.Purpose.Value,
			"is_private":  strconv.FormatBool(ch.IsPrivate),
			"is_archived": strconv.FormatBool(ch.IsArchived),
			"num_members": strconv.Itoa(ch.NumMembers),
		},
	}
}
