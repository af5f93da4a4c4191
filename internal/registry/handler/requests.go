package handler

import (
	"strings"

	"voto/internal/registry/models"
	dErrors "voto/pkg/domain-errors"
)

// UserRequest is the body of POST /users and PUT /users/{id}. On update the
// path id wins over the body.
type UserRequest struct {
	UserID           string `json:"user_id"`
	FirstName        string `json:"first_name"`
	PaternalLastName string `json:"paternal_last_name"`
	MaternalLastName string `json:"maternal_last_name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
}

// Validate implements httputil.Validatable. An update request gets its id
// from the path, so only a present id is checked here.
func (r *UserRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID != "" {
		return models.ValidateID("user_id", r.UserID)
	}
	return nil
}

func (r *UserRequest) toModel() models.User {
	return models.User{
		ID:               r.UserID,
		FirstName:        r.FirstName,
		PaternalLastName: r.PaternalLastName,
		MaternalLastName: r.MaternalLastName,
		Phone:            r.Phone,
		Email:            r.Email,
	}
}

type CreateSurveyRequest struct {
	SurveyID           string `json:"survey_id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	CreationDate       string `json:"creation_date"`
	EndDate            string `json:"end_date"`
	VoteID             string `json:"vote_id"`
	WinningCandidateID string `json:"winning_candidate_id"`
}

func (r *CreateSurveyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.SurveyID = strings.TrimSpace(r.SurveyID)
	return models.ValidateID("survey_id", r.SurveyID)
}

func (r *CreateSurveyRequest) toModel() models.Survey {
	return models.Survey{
		ID:                 r.SurveyID,
		Name:               r.Name,
		Description:        r.Description,
		CreationDate:       r.CreationDate,
		EndDate:            r.EndDate,
		VoteID:             r.VoteID,
		WinningCandidateID: r.WinningCandidateID,
	}
}

// UpdateSurveyRequest revises name, description and end date.
type UpdateSurveyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	EndDate     string `json:"end_date"`
}

func (r *UpdateSurveyRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

type AssignCandidateRequest struct {
	CandidateID string `json:"candidate_id"`
}

func (r *AssignCandidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CandidateID = strings.TrimSpace(r.CandidateID)
	return models.ValidateID("candidate_id", r.CandidateID)
}

type CreateCandidateRequest struct {
	CandidateID string `json:"candidate_id"`
	UserID      string `json:"user_id"`
	RFC         string `json:"rfc"`
}

func (r *CreateCandidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.CandidateID = strings.TrimSpace(r.CandidateID)
	r.UserID = strings.TrimSpace(r.UserID)
	if err := models.ValidateID("candidate_id", r.CandidateID); err != nil {
		return err
	}
	if err := models.ValidateID("user_id", r.UserID); err != nil {
		return err
	}
	if r.RFC == "" {
		return dErrors.New(dErrors.CodeValidation, "rfc is required")
	}
	return nil
}

// CastVoteRequest is the body of POST /votes. An empty vote_date defaults to
// the request date.
type CastVoteRequest struct {
	VoteID      string `json:"vote_id"`
	UserID      string `json:"user_id"`
	CandidateID string `json:"candidate_id"`
	VoteDate    string `json:"vote_date"`
}

func (r *CastVoteRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.VoteID = strings.TrimSpace(r.VoteID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.CandidateID = strings.TrimSpace(r.CandidateID)
	r.VoteDate = strings.TrimSpace(r.VoteDate)
	if err := models.ValidateID("vote_id", r.VoteID); err != nil {
		return err
	}
	if err := models.ValidateID("user_id", r.UserID); err != nil {
		return err
	}
	return models.ValidateID("candidate_id", r.CandidateID)
}

type CreateAdminRequest struct {
	AdminID  string `json:"admin_id"`
	UserID   string `json:"user_id"`
	SurveyID string `json:"survey_id"`
	RFC      string `json:"rfc"`
}

func (r *CreateAdminRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.AdminID = strings.TrimSpace(r.AdminID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.SurveyID = strings.TrimSpace(r.SurveyID)
	if err := models.ValidateID("admin_id", r.AdminID); err != nil {
		return err
	}
	if err := models.ValidateID("user_id", r.UserID); err != nil {
		return err
	}
	if r.RFC == "" {
		return dErrors.New(dErrors.CodeValidation, "rfc is required")
	}
	return nil
}

// AuthenticateRequest carries the RFC credential. It is compared verbatim,
// so no trimming happens here.
type AuthenticateRequest struct {
	RFC string `json:"rfc"`
}

func (r *AuthenticateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.RFC == "" {
		return dErrors.New(dErrors.CodeValidation, "rfc is required")
	}
	return nil
}
