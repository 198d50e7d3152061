package incident

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Store persists incident aggregates. Save must write the incident row and any
// timeline entries it does not know yet atomically.
type Store interface {
	Create(ctx context.Context, inc *Incident) (*Incident, error)
	Load(ctx context.Context, id string) (*Incident, error)
	Save(ctx context.Context, inc *Incident) (*Incident, error)
	List(ctx context.Context, filter ListFilter) ([]Incident, error)
}

// Notifier is told about committed changes. Failures never undo a mutation.
type Notifier interface {
	NotifyIncidentUpdate(ctx context.Context, inc *Incident, entry TimelineEntry) error
}

type Service struct {
	store Store
	locks *keyedMutex
	now   func() time.Time

	// Notifier is wired after the background job client exists; nil disables
	// notifications.
	Notifier Notifier
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		locks: newKeyedMutex(),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Get(ctx context.Context, id string) (*Incident, error) {
	inc, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, storeErr("loading incident", err)
	}
	return inc, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Incident, error) {
	incidents, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, storeErr("listing incidents", err)
	}
	return incidents, nil
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Incident, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, NewValidationError("name", "Name is required")
	}
	if req.Severity == "" {
		req.Severity = SeverityTwo
	}
	if req.Type == "" {
		req.Type = TypeOther
	}

	now := s.now()
	inc := &Incident{
		Name:        strings.TrimSpace(req.Name),
		Type:        req.Type,
		Summary:     req.Summary,
		Description: req.Description,
		Status:      StatusStarted,
		Severity:    req.Severity,
		Tags:        req.Tags,
		Roles:       req.Roles,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created := newEntry(TimelineIncidentCreated, req.CreatedBy, now)
	created.Current = inc.Name
	inc.AppendTimeline(created)

	saved, err := s.store.Create(ctx, inc)
	if err != nil {
		return nil, storeErr("creating incident", err)
	}

	slog.InfoContext(ctx, "incident created", "incident_id", saved.ID, "severity", saved.Severity, "created_by", req.CreatedBy.ID)
	s.notify(ctx, saved, created)
	return saved, nil
}

// Apply runs m against the incident identified by id. Mutations of the same
// incident are applied one at a time in arrival order; the change and its
// timeline entry are saved together or not at all.
func (s *Service) Apply(ctx context.Context, id string, actor User, m Mutation) (*Incident, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return s.ApplyDecoded(ctx, id, actor, func(context.Context) (Mutation, error) { return m, nil })
}

// ApplyDecoded is Apply for mutations that take remote lookups to build. The
// incident's place in line is taken before decode runs, so a slow decode does
// not let later submissions overtake it.
func (s *Service) ApplyDecoded(ctx context.Context, id string, actor User, decode func(ctx context.Context) (Mutation, error)) (*Incident, error) {
	inc, entry, err := s.applyLocked(ctx, id, actor, decode)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "incident mutated", "incident_id", id, "kind", entry.Type, "actor", actor.ID)
	s.notify(ctx, inc, entry)
	return inc, nil
}

func (s *Service) applyLocked(ctx context.Context, id string, actor User, decode func(ctx context.Context) (Mutation, error)) (*Incident, TimelineEntry, error) {
	unlock, err := s.locks.Lock(ctx, id)
	if err != nil {
		return nil, TimelineEntry{}, fmt.Errorf("waiting for incident %s: %w", id, err)
	}
	defer unlock()

	m, err := decode(ctx)
	if err != nil {
		return nil, TimelineEntry{}, err
	}
	if err := m.Validate(); err != nil {
		return nil, TimelineEntry{}, err
	}

	current, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, TimelineEntry{}, storeErr("loading incident", err)
	}

	next := current.Clone()
	now := s.now()
	entry := m.apply(next, actor, now)
	next.AppendTimeline(entry)
	next.UpdatedAt = now

	saved, err := s.store.Save(ctx, next)
	if err != nil {
		return nil, TimelineEntry{}, storeErr("saving incident", err)
	}

	return saved, entry, nil
}

func (s *Service) notify(ctx context.Context, inc *Incident, entry TimelineEntry) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.NotifyIncidentUpdate(ctx, inc, entry); err != nil {
		slog.WarnContext(ctx, "failed to notify incident update", "incident_id", inc.ID, "kind", entry.Type, "error", err)
	}
}

func storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrStorage) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
