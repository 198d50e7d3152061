package background

import (
	"context"
	"encoding/json"

	"github.com/getsentry/sentry-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivertype"
	"github.com/riverqueue/rivercontrib/otelriver"
)

// QueueIncidents carries per-incident Slack work. It is kept apart from the
// default queue so a long channel sync never delays a declared incident.
const QueueIncidents = "incidents"

// sentryMiddleware reports failed and panicking jobs, tagged with the job kind
// and, when the args name one, the incident.
type sentryMiddleware struct {
	river.MiddlewareDefaults
}

func (m *sentryMiddleware) Work(ctx context.Context, job *rivertype.JobRow, doInner func(ctx context.Context) error) error {
	var err error
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("job_kind", job.Kind)
		if id := jobIncidentID(job); id != "" {
			scope.SetTag("incident_id", id)
		}
		scope.AddBreadcrumb(&sentry.Breadcrumb{
			Category: "job",
			Message:  job.Kind,
			Level:    sentry.LevelInfo,
		}, 100)

		defer sentry.RecoverWithContext(ctx)

		if innerErr := doInner(ctx); innerErr != nil {
			sentry.CaptureException(innerErr)
			err = innerErr
		}
	})

	return err
}

func jobIncidentID(job *rivertype.JobRow) string {
	var args struct {
		IncidentID string `json:"incident_id"`
	}
	if err := json.Unmarshal(job.EncodedArgs, &args); err != nil {
		return ""
	}
	return args.IncidentID
}

func New(db *pgxpool.Pool, workers *river.Workers, periodicJobs []*river.PeriodicJob) (*river.Client[pgx.Tx], error) {
	return river.NewClient(riverpgxv5.New(db), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 2},
			QueueIncidents:     {MaxWorkers: 10},
		},
		PeriodicJobs: periodicJobs,
		Workers:      workers,
		Middleware: []rivertype.Middleware{
			otelriver.NewMiddleware(nil),
			&sentryMiddleware{},
		},
	})
}
