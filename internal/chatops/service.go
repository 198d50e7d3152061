package chatops

import (
	"context"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/dynoinc/respond/internal/incident"
)

// Service is everything the rest of the process may ask of the Slack side.
// It is implemented by Engine and by the no-op variant returned from NewNoOp.
type Service interface {
	ResolveIdentity(ctx context.Context) (BotIdentity, error)
	BotUserID() string
	InvalidateIdentity()

	IsMember(ctx context.Context, entityID, channelID string) (bool, error)
	EnsureMember(ctx context.Context, entityID, channelID string) error
	ListMembers(ctx context.Context, channelID string) ([]string, error)
	ListChannels(ctx context.Context) ([]Channel, error)

	HandleShortcut(ctx context.Context, ev ShortcutEvent) (Rendering, error)
	HandleBlockAction(ctx context.Context, ev BlockActionEvent) (Rendering, error)
	HandleViewSubmission(ctx context.Context, ev ViewSubmissionEvent) (Result, error)
	HandleAppHomeOpened(ctx context.Context, userID string) (Rendering, error)

	PostIncidentUpdate(ctx context.Context, inc *incident.Incident, entry incident.TimelineEntry) error
}

// Incidents is the incident domain as seen by the engine. *incident.Service
// implements it.
type Incidents interface {
	Get(ctx context.Context, id string) (*incident.Incident, error)
	List(ctx context.Context, filter incident.ListFilter) ([]incident.Incident, error)
	Create(ctx context.Context, req incident.CreateRequest) (*incident.Incident, error)
	Apply(ctx context.Context, id string, actor incident.User, m incident.Mutation) (*incident.Incident, error)
	ApplyDecoded(ctx context.Context, id string, actor incident.User, decode func(ctx context.Context) (incident.Mutation, error)) (*incident.Incident, error)
}

type Config struct {
	// AnnouncementChannelID receives a message for every declared incident.
	// Empty disables announcements.
	AnnouncementChannelID string
	MembershipCacheTTL    time.Duration
	RetryMaxAttempts      int
	RetryInitialInterval  time.Duration
}

const membershipCacheSize = 1024

type Engine struct {
	cfg       Config
	api       API
	incidents Incidents

	identity identityCache
	members  *expirable.LRU[string, memberSet]
	metrics  *metrics
	validate *validator.Validate
}

var _ Service = (*Engine)(nil)

func New(api API, incidents Incidents, cfg Config) *Engine {
	if cfg.MembershipCacheTTL <= 0 {
		cfg.MembershipCacheTTL = 30 * time.Second
	}
	if cfg.RetryMaxAttempts < 0 {
		cfg.RetryMaxAttempts = 0
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = defaultRetryInitialInterval
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})

	return &Engine{
		cfg:       cfg,
		api:       api,
		incidents: incidents,
		members:   expirable.NewLRU[string, memberSet](membershipCacheSize, nil, cfg.MembershipCacheTTL),
		metrics:   newMetrics(),
		validate:  validate,
	}
}
