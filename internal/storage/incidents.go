package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dynoinc/respond/internal/incident"
	"github.com/dynoinc/respond/internal/storage/schema/dto"
)

const incidentIDPrefix = "INC-"

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IncidentStore is the Postgres incident.Store. The aggregate lives in the
// incidents row plus one incident_timeline row per entry.
type IncidentStore struct {
	db *pgxpool.Pool
}

var _ incident.Store = (*IncidentStore)(nil)

func NewIncidentStore(db *pgxpool.Pool) *IncidentStore {
	return &IncidentStore{db: db}
}

func (s *IncidentStore) Create(ctx context.Context, inc *incident.Incident) (*incident.Incident, error) {
	attrs, err := json.Marshal(dto.NewIncidentAttrs(inc))
	if err != nil {
		return nil, fmt.Errorf("encoding incident attrs: %w", err)
	}

	var created *incident.Incident
	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO incidents (name, type, summary, description, status, severity, channel_id, channel_name, attrs, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			RETURNING id`,
			inc.Name, inc.Type, inc.Summary, inc.Description, inc.Status, inc.Severity,
			inc.ChannelID, inc.ChannelName, attrs, inc.CreatedAt, inc.UpdatedAt,
		).Scan(&id); err != nil {
			return fmt.Errorf("inserting incident: %w", err)
		}

		if err := insertTimeline(ctx, tx, id, inc.Timeline); err != nil {
			return err
		}

		created, err = loadIncident(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return created, nil
}

func (s *IncidentStore) Load(ctx context.Context, id string) (*incident.Incident, error) {
	rowID, ok := parseIncidentID(id)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, incident.ErrNotFound)
	}

	inc, err := loadIncident(ctx, s.db, rowID)
	if err != nil {
		return nil, storageErr(err)
	}
	return inc, nil
}

// Save overwrites the incident row and appends the timeline entries that are
// not stored yet, in one transaction.
func (s *IncidentStore) Save(ctx context.Context, inc *incident.Incident) (*incident.Incident, error) {
	rowID, ok := parseIncidentID(inc.ID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", inc.ID, incident.ErrNotFound)
	}

	attrs, err := json.Marshal(dto.NewIncidentAttrs(inc))
	if err != nil {
		return nil, fmt.Errorf("encoding incident attrs: %w", err)
	}

	var saved *incident.Incident
	err = pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE incidents
			SET name = $2, type = $3, summary = $4, description = $5, status = $6, severity = $7,
			    channel_id = $8, channel_name = $9, attrs = $10, updated_at = $11
			WHERE id = $1`,
			rowID, inc.Name, inc.Type, inc.Summary, inc.Description, inc.Status, inc.Severity,
			inc.ChannelID, inc.ChannelName, attrs, inc.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("updating incident: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s: %w", inc.ID, incident.ErrNotFound)
		}

		if err := insertTimeline(ctx, tx, rowID, inc.Timeline); err != nil {
			return err
		}

		saved, err = loadIncident(ctx, tx, rowID)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	return saved, nil
}

// List returns incidents newest first. Timelines are not loaded.
func (s *IncidentStore) List(ctx context.Context, filter incident.ListFilter) ([]incident.Incident, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	where, args := "", []any{limit}
	switch filter.Scope {
	case incident.ScopeOpen:
		where, args = "WHERE status <> $2", append(args, incident.StatusResolved)
	case incident.ScopeClosed:
		where, args = "WHERE status = $2", append(args, incident.StatusResolved)
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, type, summary, description, status, severity, channel_id, channel_name, attrs, created_at, updated_at
		FROM incidents `+where+`
		ORDER BY created_at DESC, id DESC
		LIMIT $1`,
		args...,
	)
	if err != nil {
		return nil, storageErr(fmt.Errorf("listing incidents: %w", err))
	}

	incidents, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (incident.Incident, error) {
		inc, err := scanIncident(row)
		if err != nil {
			return incident.Incident{}, err
		}
		return *inc, nil
	})
	if err != nil {
		return nil, storageErr(fmt.Errorf("listing incidents: %w", err))
	}

	return incidents, nil
}

func loadIncident(ctx context.Context, q querier, id int64) (*incident.Incident, error) {
	inc, err := scanIncident(q.QueryRow(ctx, `
		SELECT id, name, type, summary, description, status, severity, channel_id, channel_name, attrs, created_at, updated_at
		FROM incidents
		WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", formatIncidentID(id), incident.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading incident: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, type, actor, previous_value, current_value, message, created_at
		FROM incident_timeline
		WHERE incident_id = $1
		ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("loading timeline: %w", err)
	}

	inc.Timeline, err = pgx.CollectRows(rows, scanTimelineEntry)
	if err != nil {
		return nil, fmt.Errorf("loading timeline: %w", err)
	}

	return inc, nil
}

func scanIncident(row pgx.Row) (*incident.Incident, error) {
	var (
		id    int64
		inc   incident.Incident
		attrs []byte
	)
	if err := row.Scan(
		&id, &inc.Name, &inc.Type, &inc.Summary, &inc.Description, &inc.Status, &inc.Severity,
		&inc.ChannelID, &inc.ChannelName, &attrs, &inc.CreatedAt, &inc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var a dto.IncidentAttrs
	if err := json.Unmarshal(attrs, &a); err != nil {
		return nil, fmt.Errorf("decoding incident attrs: %w", err)
	}
	a.Apply(&inc)

	inc.ID = formatIncidentID(id)
	inc.CreatedAt = inc.CreatedAt.UTC()
	inc.UpdatedAt = inc.UpdatedAt.UTC()
	return &inc, nil
}

func scanTimelineEntry(row pgx.CollectableRow) (incident.TimelineEntry, error) {
	var (
		e     incident.TimelineEntry
		actor []byte
	)
	if err := row.Scan(&e.ID, &e.Type, &actor, &e.Previous, &e.Current, &e.Message, &e.CreatedAt); err != nil {
		return incident.TimelineEntry{}, err
	}
	if err := json.Unmarshal(actor, &e.Actor); err != nil {
		return incident.TimelineEntry{}, fmt.Errorf("decoding timeline actor: %w", err)
	}
	e.CreatedAt = e.CreatedAt.UTC()
	return e, nil
}

// insertTimeline writes entries that are not stored yet, in slice order; seq
// records that order. Timeline rows are immutable so existing ids are skipped.
func insertTimeline(ctx context.Context, tx pgx.Tx, incidentID int64, entries []incident.TimelineEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		actor, err := json.Marshal(e.Actor)
		if err != nil {
			return fmt.Errorf("encoding timeline actor: %w", err)
		}
		batch.Queue(`
			INSERT INTO incident_timeline (id, incident_id, type, actor, previous_value, current_value, message, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO NOTHING`,
			e.ID, incidentID, e.Type, actor, e.Previous, e.Current, e.Message, e.CreatedAt,
		)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting timeline: %w", err)
	}
	return nil
}

// storageErr keeps not-found and cancellation visible and classifies the rest
// as storage failures.
func storageErr(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, incident.ErrNotFound), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation:
		return fmt.Errorf("%w: %w", incident.ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", incident.ErrStorage, err)
}

func parseIncidentID(id string) (int64, bool) {
	n, ok := strings.CutPrefix(id, incidentIDPrefix)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(n, 10, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func formatIncidentID(id int64) string {
	return incidentIDPrefix + strconv.FormatInt(id, 10)
}
