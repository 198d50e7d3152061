package incident

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Mutation is the closed set of changes the applier knows how to make. Each
// variant changes its own field(s) and describes the change as exactly one
// timeline entry.
type Mutation interface {
	Kind() TimelineType
	Validate() error
	apply(inc *Incident, actor User, now time.Time) TimelineEntry
}

type SummaryMutation struct {
	Text string
}

type CommentMutation struct {
	Text string
}

type StatusMutation struct {
	Status Status
}

type SeverityMutation struct {
	Severity Severity
}

// RolesMutation assigns the named roles only. Roles absent from Assignments
// keep their current holder.
type RolesMutation struct {
	Assignments map[RoleType]User
}

type ChannelMutation struct {
	ChannelID   string
	ChannelName string
}

func (SummaryMutation) Kind() TimelineType  { return TimelineSummary }
func (CommentMutation) Kind() TimelineType  { return TimelineComment }
func (StatusMutation) Kind() TimelineType   { return TimelineStatus }
func (SeverityMutation) Kind() TimelineType { return TimelineSeverity }
func (RolesMutation) Kind() TimelineType    { return TimelineRoles }
func (ChannelMutation) Kind() TimelineType  { return TimelineSlackChannelCreated }

func (m SummaryMutation) Validate() error {
	if strings.TrimSpace(m.Text) == "" {
		return NewValidationError("summary", "Summary cannot be empty")
	}
	return nil
}

func (m CommentMutation) Validate() error {
	if strings.TrimSpace(m.Text) == "" {
		return NewValidationError("comment", "Comment cannot be empty")
	}
	return nil
}

func (m StatusMutation) Validate() error {
	if !slices.Contains(Statuses, m.Status) {
		return NewValidationError("status", fmt.Sprintf("%q is not a valid status", m.Status))
	}
	return nil
}

func (m SeverityMutation) Validate() error {
	if !slices.Contains(Severities, m.Severity) {
		return NewValidationError("severity", fmt.Sprintf("%q is not a valid severity", m.Severity))
	}
	return nil
}

func (m RolesMutation) Validate() error {
	if len(m.Assignments) == 0 {
		return NewValidationError("roles", "Assign at least one role")
	}

	verr := &ValidationError{}
	for role, user := range m.Assignments {
		if !slices.Contains(RoleTypes, role) {
			verr.Add(string(role), "Unknown role")
			continue
		}
		if user.ID == "" {
			verr.Add(string(role), "Select a user")
		}
	}
	if len(verr.Fields) > 0 {
		return verr
	}
	return nil
}

func (m ChannelMutation) Validate() error {
	if m.ChannelID == "" {
		return NewValidationError("channel", "Channel ID is required")
	}
	return nil
}

func newEntry(t TimelineType, actor User, now time.Time) TimelineEntry {
	return TimelineEntry{
		ID:        uuid.New(),
		Type:      t,
		Actor:     actor,
		CreatedAt: now,
	}
}

func (m SummaryMutation) apply(inc *Incident, actor User, now time.Time) TimelineEntry {
	e := newEntry(TimelineSummary, actor, now)
	e.Previous, e.Current = inc.Summary, m.Text
	inc.Summary = m.Text
	return e
}

func (m CommentMutation) apply(inc *Incident, actor User, now time.Time) TimelineEntry {
	e := newEntry(TimelineComment, actor, now)
	e.Current = m.Text
	inc.Comments = append(inc.Comments, Comment{
		ID:        e.ID,
		Text:      m.Text,
		Author:    actor,
		CreatedAt: now,
	})
	return e
}

func (m StatusMutation) apply(inc *Incident, actor User, now time.Time) TimelineEntry {
	e := newEntry(TimelineStatus, actor, now)
	e.Previous, e.Current = string(inc.Status), string(m.Status)
	inc.Status = m.Status
	return e
}

func (m SeverityMutation) apply(inc *Incident, actor User, now time.Time) TimelineEntry {
	e := newEntry(TimelineSeverity, actor, now)
	e.Previous, e.Current = string(inc.Severity), string(m.Severity)
	inc.Severity = m.Severity
	return e
}

func (m RolesMutation) apply(inc *Incident, actor User, now time.Time) TimelineEntry {
	e := newEntry(TimelineRoles, actor, now)

	var prev, cur []string
	for _, role := range slices.Sorted(maps.Keys(m.Assignments)) {
		user := m.Assignments[role]
		if old, ok := inc.Role(role); ok {
			prev = append(prev, fmt.Sprintf("%s: %s", role.Title(), old.Mention()))
		}
		cur = append(cur, fmt.Sprintf("%s: %s", role.Title(), user.Mention()))

		idx := slices.IndexFunc(inc.Roles, func(r Role) bool { return r.Type == role })
		if idx >= 0 {
			inc.Roles[idx].User = user
		} else {
			inc.Roles = append(inc.Roles, Role{Type: role, User: user})
		}
	}

	e.Previous = strings.Join(prev, ", ")
	e.Current = strings.Join(cur, ", ")
	return e
}

func (m ChannelMutation) apply(inc *Incident, actor User, now time.Time) TimelineEntry {
	e := newEntry(TimelineSlackChannelCreated, actor, now)
	e.Previous, e.Current = inc.ChannelID, m.ChannelID
	e.Message = m.ChannelName
	inc.ChannelID = m.ChannelID
	inc.ChannelName = m.ChannelName
	return e
}
