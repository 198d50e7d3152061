package incident

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusStarted       Status = "Started"
	StatusAcknowledged  Status = "Acknowledged"
	StatusInvestigating Status = "Investigating"
	StatusIdentified    Status = "Identified"
	StatusMitigated     Status = "Mitigated"
	StatusResolved      Status = "Resolved"
)

var Statuses = []Status{
	StatusStarted,
	StatusAcknowledged,
	StatusInvestigating,
	StatusIdentified,
	StatusMitigated,
	StatusResolved,
}

func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (s Status) Open() bool {
	return s != StatusResolved
}

type Severity string

const (
	SeverityZero Severity = "SEV0"
	SeverityOne  Severity = "SEV1"
	SeverityTwo  Severity = "SEV2"
)

var Severities = []Severity{SeverityZero, SeverityOne, SeverityTwo}

func ParseSeverity(s string) (Severity, error) {
	for _, sev := range Severities {
		if strings.EqualFold(string(sev), strings.TrimSpace(s)) {
			return sev, nil
		}
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

type Type string

const (
	TypeAvailability Type = "Availability"
	TypeLatency      Type = "Latency"
	TypeSecurity     Type = "Security"
	TypeOther        Type = "Other"
)

var Types = []Type{TypeAvailability, TypeLatency, TypeSecurity, TypeOther}

func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown incident type %q", s)
}

type RoleType string

const (
	RoleIncidentCommander  RoleType = "Incident_Commander"
	RoleCommunicationsLead RoleType = "Communications_Lead"
)

var RoleTypes = []RoleType{RoleIncidentCommander, RoleCommunicationsLead}

func ParseRoleType(s string) (RoleType, error) {
	for _, r := range RoleTypes {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Title renders a role type for humans, e.g. "Incident Commander".
func (r RoleType) Title() string {
	return strings.ReplaceAll(string(r), "_", " ")
}

// User is a chat user as seen by the incident domain. ID is the Slack user ID.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitzero"`
	UserName string `json:"user_name,omitzero"`
}

func (u User) Mention() string {
	if u.ID == "" {
		return "someone"
	}
	return fmt.Sprintf("<@%s>", u.ID)
}

type Role struct {
	Type RoleType `json:"role_type"`
	User User     `json:"user"`
}

type Comment struct {
	ID        uuid.UUID `json:"id"`
	Text      string    `json:"text"`
	Author    User      `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type TimelineType string

const (
	TimelineIncidentCreated     TimelineType = "Incident_Created"
	TimelineSummary             TimelineType = "Summary"
	TimelineComment             TimelineType = "Comment"
	TimelineStatus              TimelineType = "Status"
	TimelineSeverity            TimelineType = "Severity"
	TimelineRoles               TimelineType = "Roles"
	TimelineSlackChannelCreated TimelineType = "Slack_Channel_Created"
)

// TimelineEntry is an immutable record of a single state change.
type TimelineEntry struct {
	ID        uuid.UUID    `json:"id"`
	Type      TimelineType `json:"type"`
	Actor     User         `json:"actor"`
	CreatedAt time.Time    `json:"created_at"`
	Previous  string       `json:"previous,omitzero"`
	Current   string       `json:"current,omitzero"`
	Message   string       `json:"message,omitzero"`
}

// Describe renders the entry as a Slack mrkdwn sentence.
func (e TimelineEntry) Describe() string {
	switch e.Type {
	case TimelineIncidentCreated:
		return fmt.Sprintf("Incident created by %s", e.Actor.Mention())
	case TimelineComment:
		return fmt.Sprintf("%s commented: %s", e.Actor.Mention(), e.Current)
	case TimelineSlackChannelCreated:
		return fmt.Sprintf("Channel <#%s> created", e.Current)
	case TimelineRoles:
		return fmt.Sprintf("%s updated roles: %s", e.Actor.Mention(), e.Current)
	}

	if e.Previous == "" {
		return fmt.Sprintf("*%s* set to *%s* by %s", e.Type, e.Current, e.Actor.Mention())
	}
	return fmt.Sprintf("*%s* changed from *%s* to *%s* by %s", e.Type, e.Previous, e.Current, e.Actor.Mention())
}

// Incident is the aggregate every ChatOps mutation targets.
type Incident struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        Type            `json:"type"`
	Summary     string          `json:"summary,omitzero"`
	Description string          `json:"description,omitzero"`
	Status      Status          `json:"status"`
	Severity    Severity        `json:"severity"`
	Tags        []string        `json:"tags,omitzero"`
	Roles       []Role          `json:"roles,omitzero"`
	Comments    []Comment       `json:"comments,omitzero"`
	Timeline    []TimelineEntry `json:"timeline,omitzero"`
	ChannelID   string          `json:"channel_id,omitzero"`
	ChannelName string          `json:"channel_name,omitzero"`
	CreatedBy   User            `json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// AppendTimeline adds entry to the in-memory aggregate. It is persisted together
// with the rest of the incident by Store.Save.
func (i *Incident) AppendTimeline(entry TimelineEntry) {
	i.Timeline = append(i.Timeline, entry)
}

func (i *Incident) Role(t RoleType) (User, bool) {
	for _, r := range i.Roles {
		if r.Type == t {
			return r.User, true
		}
	}
	return User{}, false
}

func (i *Incident) Clone() *Incident {
	c := *i
	c.Tags = slices.Clone(i.Tags)
	c.Roles = slices.Clone(i.Roles)
	c.Comments = slices.Clone(i.Comments)
	c.Timeline = slices.Clone(i.Timeline)
	return &c
}

// Scope restricts List to open or closed incidents.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeOpen
	ScopeClosed
)

func (s Scope) String() string {
	switch s {
	case ScopeOpen:
		return "open"
	case ScopeClosed:
		return "closed"
	default:
		return "all"
	}
}

func (s Scope) Match(st Status) bool {
	switch s {
	case ScopeOpen:
		return st.Open()
	case ScopeClosed:
		return !st.Open()
	default:
		return true
	}
}

type ListFilter struct {
	Scope Scope
	Limit int
}

type CreateRequest struct {
	Name        string
	Type        Type
	Severity    Severity
	Summary     string
	Description string
	Tags        []string
	Roles       []Role
	CreatedBy   User
}
