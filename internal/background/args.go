package background

import (
	"github.com/google/uuid"
	"github.com/riverqueue/river"
)

// NotifyIncidentUpdateArgs posts a committed timeline entry to the incident's
// channel.
type NotifyIncidentUpdateArgs struct {
	IncidentID string    `json:"incident_id"`
	EntryID    uuid.UUID `json:"entry_id"`
}

func (n NotifyIncidentUpdateArgs) Kind() string {
	return "notify_incident_update"
}

// InsertOpts retries for a while: setting up a new incident's channel goes
// through this job too.
func (n NotifyIncidentUpdateArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{Queue: QueueIncidents, MaxAttempts: 5}
}

// ChannelSyncArgs makes sure the bot is a member of every open incident
// channel.
type ChannelSyncArgs struct{}

func (c ChannelSyncArgs) Kind() string {
	return "channel_sync"
}
