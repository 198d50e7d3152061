package chatops

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/slack-go/slack"
	"go.opentelemetry.io/otel/trace"

	"github.com/dynoinc/respond/internal/incident"
	"github.com/dynoinc/respond/internal/otel/semconv"
)

// HandleViewSubmission turns a submitted dialog into exactly one domain call.
// Field problems come back as *incident.ValidationError keyed by input name.
func (e *Engine) HandleViewSubmission(ctx context.Context, ev ViewSubmissionEvent) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "chatops.HandleViewSubmission", trace.WithAttributes(
		semconv.SlackCallbackIDKey.String(ev.CallbackID),
		semconv.IncidentIDKey.String(ev.TargetIncidentID),
		semconv.SlackUserKey.String(ev.UserID),
		// Declarations are rare and worth keeping every trace of.
		semconv.ForceTraceKey.Bool(ev.CallbackID == CallbackIncidentCreate),
	))
	defer func() {
		e.metrics.add(ctx, e.metrics.submissions, semconv.SlackCallbackIDKey.String(ev.CallbackID), outcome(err))
		span.End()
	}()

	actor := incident.User{ID: ev.UserID, UserName: ev.UserName}

	if ev.CallbackID == CallbackIncidentCreate {
		return e.createIncident(ctx, actor, ev.Fields)
	}

	// Decoding runs once this submission holds its place in the incident's
	// queue, so a slow user lookup cannot reorder submissions.
	inc, err := e.incidents.ApplyDecoded(ctx, ev.TargetIncidentID, actor, func(ctx context.Context) (incident.Mutation, error) {
		m, err := e.decodeMutation(ctx, ev)
		if err != nil {
			return nil, err
		}
		span.SetAttributes(semconv.IncidentMutationKey.String(string(m.Kind())))
		return m, nil
	})
	if err != nil {
		if errors.Is(err, ErrUnsupportedSubmission) {
			slog.WarnContext(ctx, "unsupported view submission, the Slack app manifest may be newer than this service",
				"callback_id", ev.CallbackID, "user_id", ev.UserID)
		}
		return Result{}, err
	}
	return Result{Incident: inc}, nil
}

// decodeMutation is the only place that looks at the callback id and the raw
// fields of a submission.
func (e *Engine) decodeMutation(ctx context.Context, ev ViewSubmissionEvent) (incident.Mutation, error) {
	switch ev.CallbackID {
	case CallbackSummary:
		return incident.SummaryMutation{Text: strings.TrimSpace(ev.Fields[FieldSummary])}, nil

	case CallbackComment:
		return incident.CommentMutation{Text: strings.TrimSpace(ev.Fields[FieldComment])}, nil

	case CallbackStatus:
		status, err := incident.ParseStatus(ev.Fields[FieldStatus])
		if err != nil {
			return nil, incident.NewValidationError(FieldStatus, "Choose one of the listed statuses")
		}
		return incident.StatusMutation{Status: status}, nil

	case CallbackSeverity:
		severity, err := incident.ParseSeverity(ev.Fields[FieldSeverity])
		if err != nil {
			return nil, incident.NewValidationError(FieldSeverity, "Choose one of the listed severities")
		}
		return incident.SeverityMutation{Severity: severity}, nil

	case CallbackRoles:
		return e.decodeRoles(ctx, ev.Fields)
	}

	return nil, fmt.Errorf("callback %q: %w", ev.CallbackID, ErrUnsupportedSubmission)
}

// decodeRoles resolves every filled-in role to a Slack user. Roles left empty
// keep their current holder.
func (e *Engine) decodeRoles(ctx context.Context, fields map[string]string) (incident.Mutation, error) {
	m := incident.RolesMutation{Assignments: make(map[incident.RoleType]incident.User)}
	verr := &incident.ValidationError{}

	for _, role := range incident.RoleTypes {
		userID := strings.TrimSpace(fields[string(role)])
		if userID == "" {
			continue
		}

		user, err := e.lookupUser(ctx, userID)
		if err != nil {
			if errors.Is(err, incident.ErrNotFound) {
				verr.Add(string(role), "This user could not be found")
				continue
			}
			return nil, err
		}
		m.Assignments[role] = user
	}

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return m, nil
}

func (e *Engine) lookupUser(ctx context.Context, userID string) (incident.User, error) {
	var u *slack.User
	err := e.call(ctx, "users.info", func(ctx context.Context) error {
		var err error
		u, err = e.api.GetUserInfoContext(ctx, userID)
		return err
	})
	if err != nil {
		if slackErrorCode(err) == codeUserNotFound {
			return incident.User{}, fmt.Errorf("user %s: %w", userID, incident.ErrNotFound)
		}
		return incident.User{}, fmt.Errorf("looking up user %s: %w", userID, err)
	}
	if u.Deleted {
		return incident.User{}, fmt.Errorf("user %s is deactivated: %w", userID, incident.ErrNotFound)
	}

	name := u.Profile.DisplayName
	if name == "" {
		name = u.RealName
	}
	return incident.User{ID: u.ID, Name: name, UserName: u.Name}, nil
}

type createForm struct {
	Name      string `form:"name" validate:"required,max=80"`
	Severity  string `form:"severity" validate:"omitempty,oneof=SEV0 SEV1 SEV2"`
	Type      string `form:"type" validate:"omitempty,oneof=Availability Latency Security Other"`
	Summary   string `form:"summary" validate:"max=3000"`
	Commander string `form:"Incident_Commander"`
}

func (e *Engine) decodeCreate(ctx context.Context, actor incident.User, fields map[string]string) (incident.CreateRequest, error) {
	form := createForm{
		Name:      strings.TrimSpace(fields[FieldName]),
		Severity:  strings.TrimSpace(fields[FieldSeverity]),
		Type:      strings.TrimSpace(fields[FieldType]),
		Summary:   strings.TrimSpace(fields[FieldSummary]),
		Commander: strings.TrimSpace(fields[string(incident.RoleIncidentCommander)]),
	}

	if err := e.validate.Struct(form); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return incident.CreateRequest{}, fmt.Errorf("validating incident form: %w", err)
		}
		verr := &incident.ValidationError{}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe))
		}
		return incident.CreateRequest{}, verr
	}

	req := incident.CreateRequest{
		Name:      form.Name,
		Severity:  incident.Severity(form.Severity),
		Type:      incident.Type(form.Type),
		Summary:   form.Summary,
		CreatedBy: actor,
	}

	if form.Commander != "" {
		commander, err := e.lookupUser(ctx, form.Commander)
		if err != nil {
			if errors.Is(err, incident.ErrNotFound) {
				return incident.CreateRequest{}, incident.NewValidationError(string(incident.RoleIncidentCommander), "This user could not be found")
			}
			return incident.CreateRequest{}, err
		}
		req.Roles = append(req.Roles, incident.Role{Type: incident.RoleIncidentCommander, User: commander})
	}

	return req, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "oneof":
		return "Choose one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "Invalid value"
}
