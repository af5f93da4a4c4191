package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voto/internal/audit"
	"voto/internal/platform/metrics"
	"voto/internal/storage"
	"voto/pkg/attrs"
	dErrors "voto/pkg/domain-errors"
	"voto/pkg/requestcontext"
)

// RecordStore persists whole collections. Every mutation loads the
// collection, changes it in memory and saves it back in full.
type RecordStore interface {
	Load(ctx context.Context, collection string) (storage.Records, error)
	Save(ctx context.Context, collection string, records storage.Records) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Operation names used for metrics labels and span names.
const (
	opAddUser    = "add_user"
	opGetUser    = "get_user"
	opUpdateUser = "update_user"
	opDeleteUser = "delete_user"
	opListUsers  = "list_users"

	opCreateSurvey    = "create_survey"
	opAssignCandidate = "assign_candidate"
	opUpdateSurvey    = "update_survey"
	opGetSurvey       = "get_survey"
	opListSurveys     = "list_surveys"
	opDeleteSurvey    = "delete_survey"

	opAddCandidate          = "add_candidate"
	opAuthenticateCandidate = "authenticate_candidate"
	opGetCandidate          = "get_candidate"
	opListCandidates        = "list_candidates"

	opCastVote  = "cast_vote"
	opGetVote   = "get_vote"
	opListVotes = "list_votes"

	opAddAdmin          = "add_admin"
	opAuthenticateAdmin = "authenticate_admin"
	opGetAdmin          = "get_admin"
	opListAdmins        = "list_admins"
)

// Service implements the user, survey, candidate, vote and admin registries
// over a single RecordStore. It holds no locks: callers that need
// one-at-a-time semantics serialize invocations themselves.
type Service struct {
	store          RecordStore
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTracerProvider overrides the global OpenTelemetry provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Service) {
		s.tracer = tp.Tracer(tracerName)
	}
}

const tracerName = "voto/internal/registry/service"

// New constructs a Service.
func New(store RecordStore, opts ...Option) *Service {
	s := &Service{store: store, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) load(ctx context.Context, collection string) (storage.Records, error) {
	records, err := s.store.Load(ctx, collection)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load "+collection)
	}
	if records == nil {
		records = storage.Records{}
	}
	return records, nil
}

func (s *Service) save(ctx context.Context, collection string, records storage.Records) error {
	if err := s.store.Save(ctx, collection, records); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save "+collection)
	}
	return nil
}

// corrupt reports a stored record that no longer decodes.
func corrupt(err error) error {
	return dErrors.Wrap(err, dErrors.CodeInternal, "corrupt record")
}

func (s *Service) start(ctx context.Context, operation, id string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String("voto.operation", operation)}
	if id != "" {
		attrs = append(attrs, attribute.String("voto.entity_id", id))
	}
	return s.tracer.Start(ctx, "registry."+operation, trace.WithAttributes(attrs...))
}

// finish closes the span and records the operation outcome. Invariant
// violations count as rejections; anything else non-nil is an error.
func (s *Service) finish(ctx context.Context, span trace.Span, operation string, err error) {
	defer span.End()

	outcome := "success"
	switch {
	case err == nil:
	case isRejection(err):
		outcome = "rejected"
		code := string(dErrors.CodeOf(err))
		span.SetAttributes(attribute.String("voto.rejection", code))
		if s.metrics != nil {
			s.metrics.IncrementRejection(operation, code)
		}
	default:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "registry operation failed",
				"operation", operation,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
	}
	if s.metrics != nil {
		s.metrics.IncrementOperation(operation, outcome)
	}
}

func isRejection(err error) bool {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		return false
	}
	switch de.Code {
	case dErrors.CodeAlreadyExists, dErrors.CodeNotFound, dErrors.CodeInvalidReference:
		return true
	}
	return false
}

// logAudit records a committed mutation or an authentication attempt. With a
// publisher configured the event goes only there, otherwise to the logger.
// The publisher is fire-and-forget: its failure never fails the operation.
func (s *Service) logAudit(ctx context.Context, action audit.Action, collection, subject string, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if s.auditPublisher == nil {
		if s.logger != nil {
			args := append(attributes, "event", string(action), "collection", collection, "subject", subject, "log_type", "audit")
			s.logger.InfoContext(ctx, string(action), args...)
		}
		return
	}
	event := audit.Event{
		Category:   action.Category(),
		Timestamp:  requestcontext.Now(ctx),
		Action:     action,
		Collection: collection,
		Subject:    subject,
		ActorID:    requestcontext.Subject(ctx),
		Role:       requestcontext.Role(ctx),
		Reason:     attrs.ExtractString(attributes, "reason"),
		RequestID:  requestID,
		ClientIP:   requestcontext.ClientIP(ctx),
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"error", err,
			"event", string(action),
			"request_id", requestID,
		)
	}
}
