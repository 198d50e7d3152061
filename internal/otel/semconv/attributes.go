// Standardized attribute keys and values for use in all OpenTelemetry signals
// Before adding a new attribute, first check to see if an attribute is already defined
// in the OpenTelemetry spec (https://opentelemetry.io/docs/specs/semconv/)
package semconv

import "go.opentelemetry.io/otel/attribute"

const (
	// Slack-specific attributes
	SlackChannelIDKey  = attribute.Key("slack.channel.id")
	SlackUserKey       = attribute.Key("slack.user")
	SlackCallbackIDKey = attribute.Key("slack.view.callback_id")
	SlackActionIDKey   = attribute.Key("slack.action.id")
	SlackMethodKey     = attribute.Key("slack.api.method")

	// Incident attributes
	IncidentIDKey       = attribute.Key("incident.id")
	IncidentMutationKey = attribute.Key("incident.mutation")

	// Application-specific attributes
	ForceTraceKey = attribute.Key("force_trace")
	OutcomeKey    = attribute.Key("outcome")
)

var (
	OutcomeSuccess = OutcomeKey.String("success")
	OutcomeFailure = OutcomeKey.String("failure")
)
