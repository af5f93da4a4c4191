package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"voto/internal/registry/models"
	dErrors "voto/pkg/domain-errors"
	"voto/pkg/platform/httputil"
	"voto/pkg/requestcontext"
)

// Service defines the registry operations exposed over HTTP.
type Service interface {
	AddUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (models.User, bool, error)
	UpdateUser(ctx context.Context, user models.User) error
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) (map[string]models.User, error)

	CreateSurvey(ctx context.Context, survey models.Survey) error
	AssignCandidate(ctx context.Context, surveyID, candidateID string) error
	UpdateSurvey(ctx context.Context, surveyID, name, description, endDate string) error
	GetSurvey(ctx context.Context, id string) (models.Survey, bool, error)
	ListSurveys(ctx context.Context) (map[string]models.Survey, error)
	DeleteSurvey(ctx context.Context, id string) error

	AddCandidate(ctx context.Context, candidate models.Candidate) error
	AuthenticateCandidate(ctx context.Context, id, rfc string) (bool, error)
	GetCandidate(ctx context.Context, id string) (models.Candidate, bool, error)
	ListCandidates(ctx context.Context) (map[string]models.Candidate, error)

	CastVote(ctx context.Context, vote models.Vote) error
	GetVote(ctx context.Context, id string) (models.Vote, bool, error)
	ListVotes(ctx context.Context) (map[string]models.Vote, error)

	AddAdmin(ctx context.Context, admin models.Admin) error
	AuthenticateAdmin(ctx context.Context, id, rfc string) (bool, error)
	GetAdmin(ctx context.Context, id string) (models.Admin, bool, error)
	ListAdmins(ctx context.Context) (map[string]models.Admin, error)
}

// TokenIssuer signs session tokens after a successful authentication.
type TokenIssuer interface {
	GenerateSessionToken(subject, role string, expiresIn time.Duration) (string, error)
}

// Handler wires registry endpoints to the registry service.
type Handler struct {
	service  Service
	tokens   TokenIssuer
	tokenTTL time.Duration
	logger   *slog.Logger
	// authLimits wrap the RFC authentication routes only.
	authLimits []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithAuthLimit guards the authenticate endpoints with mw.
func WithAuthLimit(mw func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.authLimits = append(h.authLimits, mw)
	}
}

// New constructs a registry handler with its dependencies.
func New(service Service, tokens TokenIssuer, tokenTTL time.Duration, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:  service,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the public registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.HandleAddUser)
	r.Get("/users", h.HandleListUsers)
	r.Get("/users/{id}", h.HandleGetUser)
	r.Put("/users/{id}", h.HandleUpdateUser)
	r.Delete("/users/{id}", h.HandleDeleteUser)

	r.Post("/surveys", h.HandleCreateSurvey)
	r.Get("/surveys", h.HandleListSurveys)
	r.Get("/surveys/{id}", h.HandleGetSurvey)

	r.Post("/candidates", h.HandleAddCandidate)
	r.Get("/candidates", h.HandleListCandidates)
	r.Get("/candidates/{id}", h.HandleGetCandidate)
	r.With(h.authLimits...).Post("/candidates/{id}/authenticate", h.HandleAuthenticateCandidate)

	r.Post("/votes", h.HandleCastVote)
	r.Get("/votes", h.HandleListVotes)
	r.Get("/votes/{id}", h.HandleGetVote)

	r.Post("/admins", h.HandleAddAdmin)
	r.Get("/admins", h.HandleListAdmins)
	r.Get("/admins/{id}", h.HandleGetAdmin)
	r.With(h.authLimits...).Post("/admins/{id}/authenticate", h.HandleAuthenticateAdmin)
}

// RegisterAdmin mounts the survey mutations. The caller wraps r with the
// bearer token and admin role middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/surveys/{id}", h.HandleUpdateSurvey)
	r.Put("/surveys/{id}/winner", h.HandleAssignCandidate)
	r.Delete("/surveys/{id}", h.HandleDeleteSurvey)
}

func pathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if err := models.ValidateID("id", id); err != nil {
		return "", err
	}
	return id, nil
}

// fail logs and writes err. Rejections are expected traffic and log at info.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, operation string, err error, attributes ...any) {
	ctx := r.Context()
	args := append([]any{
		"operation", operation,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	}, attributes...)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "registry request failed", args...)
	} else {
		h.logger.InfoContext(ctx, "registry request rejected", args...)
	}
	httputil.WriteError(w, err)
}

func (h *Handler) notFound(w http.ResponseWriter, what string) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, what+" not found"))
}

// HandleAddUser handles POST /users.
func (h *Handler) HandleAddUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[UserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := models.ValidateID("user_id", req.UserID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	user := req.toModel()
	if err := h.service.AddUser(ctx, user); err != nil {
		h.fail(w, r, "add_user", err, "user_id", user.ID)
		return
	}
	h.logger.InfoContext(ctx, "user added", "user_id", user.ID, "request_id", requestID)
	httputil.WriteJSON(w, http.StatusCreated, user)
}

// HandleGetUser handles GET /users/{id}.
func (h *Handler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	user, found, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_user", err, "user_id", id)
		return
	}
	if !found {
		h.notFound(w, "user")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// HandleUpdateUser handles PUT /users/{id}.
func (h *Handler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	req.UserID = id
	user := req.toModel()
	if err := h.service.UpdateUser(ctx, user); err != nil {
		h.fail(w, r, "update_user", err, "user_id", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, user)
}

// HandleDeleteUser handles DELETE /users/{id}.
func (h *Handler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, r, "delete_user", err, "user_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListUsers handles GET /users.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.fail(w, r, "list_users", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, UsersResponse{Users: sortedValues(users)})
}

// HandleCreateSurvey handles POST /surveys.
func (h *Handler) HandleCreateSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateSurveyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	survey := req.toModel()
	if err := h.service.CreateSurvey(ctx, survey); err != nil {
		h.fail(w, r, "create_survey", err, "survey_id", survey.ID)
		return
	}
	h.logger.InfoContext(ctx, "survey created", "survey_id", survey.ID, "request_id", requestID)
	httputil.WriteJSON(w, http.StatusCreated, survey)
}

// HandleGetSurvey handles GET /surveys/{id}.
func (h *Handler) HandleGetSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	survey, found, err := h.service.GetSurvey(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_survey", err, "survey_id", id)
		return
	}
	if !found {
		h.notFound(w, "survey")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, survey)
}

// HandleListSurveys handles GET /surveys.
func (h *Handler) HandleListSurveys(w http.ResponseWriter, r *http.Request) {
	surveys, err := h.service.ListSurveys(r.Context())
	if err != nil {
		h.fail(w, r, "list_surveys", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SurveysResponse{Surveys: sortedValues(surveys)})
}

// HandleUpdateSurvey handles PUT /surveys/{id}.
func (h *Handler) HandleUpdateSurvey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateSurveyRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.UpdateSurvey(ctx, id, req.Name, req.Description, req.EndDate); err != nil {
		h.fail(w, r, "update_survey", err, "survey_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAssignCandidate handles PUT /surveys/{id}/winner.
func (h *Handler) HandleAssignCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AssignCandidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if err := h.service.AssignCandidate(ctx, id, req.CandidateID); err != nil {
		h.fail(w, r, "assign_candidate", err, "survey_id", id, "candidate_id", req.CandidateID)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeleteSurvey handles DELETE /surveys/{id}.
func (h *Handler) HandleDeleteSurvey(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.DeleteSurvey(r.Context(), id); err != nil {
		h.fail(w, r, "delete_survey", err, "survey_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAddCandidate handles POST /candidates.
func (h *Handler) HandleAddCandidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateCandidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	candidate := models.Candidate{ID: req.CandidateID, UserID: req.UserID, RFC: req.RFC}
	if err := h.service.AddCandidate(ctx, candidate); err != nil {
		h.fail(w, r, "add_candidate", err, "candidate_id", candidate.ID, "user_id", candidate.UserID)
		return
	}
	h.logger.InfoContext(ctx, "candidate added", "candidate_id", candidate.ID, "request_id", requestID)
	httputil.WriteJSON(w, http.StatusCreated, candidate)
}

// HandleGetCandidate handles GET /candidates/{id}.
func (h *Handler) HandleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	candidate, found, err := h.service.GetCandidate(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_candidate", err, "candidate_id", id)
		return
	}
	if !found {
		h.notFound(w, "candidate")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidate)
}

// HandleListCandidates handles GET /candidates.
func (h *Handler) HandleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := h.service.ListCandidates(r.Context())
	if err != nil {
		h.fail(w, r, "list_candidates", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CandidatesResponse{Candidates: sortedValues(candidates)})
}

// HandleAuthenticateCandidate handles POST /candidates/{id}/authenticate.
func (h *Handler) HandleAuthenticateCandidate(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, models.RoleCandidate, h.service.AuthenticateCandidate)
}

// HandleCastVote handles POST /votes.
func (h *Handler) HandleCastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CastVoteRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.VoteDate == "" {
		req.VoteDate = requestcontext.Now(ctx).Format(time.DateOnly)
	}
	vote := models.Vote{ID: req.VoteID, UserID: req.UserID, CandidateID: req.CandidateID, VoteDate: req.VoteDate}
	if err := h.service.CastVote(ctx, vote); err != nil {
		h.fail(w, r, "cast_vote", err, "vote_id", vote.ID)
		return
	}
	h.logger.InfoContext(ctx, "vote cast", "vote_id", vote.ID, "request_id", requestID)
	httputil.WriteJSON(w, http.StatusCreated, vote)
}

// HandleGetVote handles GET /votes/{id}.
func (h *Handler) HandleGetVote(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	vote, found, err := h.service.GetVote(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_vote", err, "vote_id", id)
		return
	}
	if !found {
		h.notFound(w, "vote")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, vote)
}

// HandleListVotes handles GET /votes.
func (h *Handler) HandleListVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.service.ListVotes(r.Context())
	if err != nil {
		h.fail(w, r, "list_votes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, VotesResponse{Votes: sortedValues(votes)})
}

// HandleAddAdmin handles POST /admins.
func (h *Handler) HandleAddAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	req, ok := httputil.DecodeAndPrepare[CreateAdminRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	admin := models.Admin{ID: req.AdminID, UserID: req.UserID, SurveyID: req.SurveyID, RFC: req.RFC}
	if err := h.service.AddAdmin(ctx, admin); err != nil {
		h.fail(w, r, "add_admin", err, "admin_id", admin.ID, "user_id", admin.UserID)
		return
	}
	h.logger.InfoContext(ctx, "admin added", "admin_id", admin.ID, "request_id", requestID)
	httputil.WriteJSON(w, http.StatusCreated, admin)
}

// HandleGetAdmin handles GET /admins/{id}.
func (h *Handler) HandleGetAdmin(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	admin, found, err := h.service.GetAdmin(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get_admin", err, "admin_id", id)
		return
	}
	if !found {
		h.notFound(w, "admin")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, admin)
}

// HandleListAdmins handles GET /admins.
func (h *Handler) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		h.fail(w, r, "list_admins", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AdminsResponse{Admins: sortedValues(admins)})
}

// HandleAuthenticateAdmin handles POST /admins/{id}/authenticate.
func (h *Handler) HandleAuthenticateAdmin(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, models.RoleAdmin, h.service.AuthenticateAdmin)
}

func (h *Handler) authenticate(w http.ResponseWriter, r *http.Request, role string, check func(context.Context, string, string) (bool, error)) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[AuthenticateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	authenticated, err := check(ctx, id, req.RFC)
	if err != nil {
		h.fail(w, r, "authenticate_"+role, err, "subject", id)
		return
	}
	if !authenticated {
		httputil.WriteJSON(w, http.StatusOK, AuthenticateResponse{Authenticated: false})
		return
	}

	token, err := h.tokens.GenerateSessionToken(id, role, h.tokenTTL)
	if err != nil {
		h.fail(w, r, "authenticate_"+role, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token"), "subject", id)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, AuthenticateResponse{
		Authenticated: true,
		Token:         token,
		ExpiresIn:     int64(h.tokenTTL.Seconds()),
	})
}
