package chatops

import (
	"errors"

	"github.com/slack-go/slack"
)

var (
	// ErrRemoteUnavailable wraps any Slack API failure that survived retries.
	ErrRemoteUnavailable = errors.New("slack unavailable")
	// ErrUnsupportedSubmission is returned for a view callback id the
	// dispatcher has no mapping for.
	ErrUnsupportedSubmission = errors.New("unsupported view submission")
)

const (
	codeChannelNotFound  = "channel_not_found"
	codeAlreadyInChannel = "already_in_channel"
	codeUserNotFound     = "user_not_found"
	codeNameTaken        = "name_taken"
)

// slackErrorCode returns the error code of a Slack API error response, or "".
func slackErrorCode(err error) string {
	var resp slack.SlackErrorResponse
	if errors.As(err, &resp) {
		return resp.Err
	}
	return ""
}
