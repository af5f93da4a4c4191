// Package models holds the typed registry entities and their positional
// storage codec. Each entity is persisted as an ordered field sequence whose
// arity and order are fixed; Fields encodes and the XFromFields constructors
// decode, rejecting a sequence of the wrong arity as a corrupt record.
package models

import (
	"fmt"

	dErrors "voto/pkg/domain-errors"
	"voto/pkg/platform/sentinel"
)

// MaxIDLength bounds every entity identifier accepted from outside the
// process.
const MaxIDLength = 128

// ValidateID checks an identifier arriving from a request or an import file.
// name is the field name used in the message.
func ValidateID(name, value string) error {
	if value == "" {
		return dErrors.New(dErrors.CodeValidation, name+" is required")
	}
	if len(value) > MaxIDLength {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s must be at most %d characters", name, MaxIDLength))
	}
	return nil
}

// Field arity per collection.
const (
	UserArity      = 5
	SurveyArity    = 6
	CandidateArity = 2
	VoteArity      = 3
	AdminArity     = 3
)

// Survey field positions touched by partial updates.
const (
	SurveyFieldName        = 0
	SurveyFieldDescription = 1
	SurveyFieldCreatedOn   = 2
	SurveyFieldEndsOn      = 3
	SurveyFieldVoteID      = 4
	SurveyFieldWinner      = 5
)

// Credential positions compared during authentication.
const (
	CandidateFieldRFC = 1
	AdminFieldRFC     = 2
)

func checkArity(kind, id string, fields []string, want int) error {
	if len(fields) != want {
		return fmt.Errorf("%s %q has %d fields, want %d: %w", kind, id, len(fields), want, sentinel.ErrInvalidState)
	}
	return nil
}

type User struct {
	ID               string `json:"user_id"`
	FirstName        string `json:"first_name"`
	PaternalLastName string `json:"paternal_last_name"`
	MaternalLastName string `json:"maternal_last_name"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
}

func (u User) Fields() []string {
	return []string{u.FirstName, u.PaternalLastName, u.MaternalLastName, u.Phone, u.Email}
}

func UserFromFields(id string, fields []string) (User, error) {
	if err := checkArity("user", id, fields, UserArity); err != nil {
		return User{}, err
	}
	return User{
		ID:               id,
		FirstName:        fields[0],
		PaternalLastName: fields[1],
		MaternalLastName: fields[2],
		Phone:            fields[3],
		Email:            fields[4],
	}, nil
}

// Survey is an "encuesta". WinningCandidateID is stored from creation and
// overwritten by AssignWinner.
type Survey struct {
	ID                 string `json:"survey_id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	CreationDate       string `json:"creation_date"`
	EndDate            string `json:"end_date"`
	VoteID             string `json:"vote_id"`
	WinningCandidateID string `json:"winning_candidate_id"`
}

func (s Survey) Fields() []string {
	return []string{s.Name, s.Description, s.CreationDate, s.EndDate, s.VoteID, s.WinningCandidateID}
}

// AssignWinner overwrites the winning candidate slot only.
func (s *Survey) AssignWinner(candidateID string) {
	s.WinningCandidateID = candidateID
}

// Revise overwrites name, description and end date. Creation date, vote id
// and winner are left as stored.
func (s *Survey) Revise(name, description, endDate string) {
	s.Name = name
	s.Description = description
	s.EndDate = endDate
}

func SurveyFromFields(id string, fields []string) (Survey, error) {
	if err := checkArity("survey", id, fields, SurveyArity); err != nil {
		return Survey{}, err
	}
	return Survey{
		ID:                 id,
		Name:               fields[SurveyFieldName],
		Description:        fields[SurveyFieldDescription],
		CreationDate:       fields[SurveyFieldCreatedOn],
		EndDate:            fields[SurveyFieldEndsOn],
		VoteID:             fields[SurveyFieldVoteID],
		WinningCandidateID: fields[SurveyFieldWinner],
	}, nil
}

type Candidate struct {
	ID     string `json:"candidate_id"`
	UserID string `json:"user_id"`
	RFC    string `json:"-"`
}

func (c Candidate) Fields() []string {
	return []string{c.UserID, c.RFC}
}

func CandidateFromFields(id string, fields []string) (Candidate, error) {
	if err := checkArity("candidate", id, fields, CandidateArity); err != nil {
		return Candidate{}, err
	}
	return Candidate{ID: id, UserID: fields[0], RFC: fields[CandidateFieldRFC]}, nil
}

// Vote is immutable once cast.
type Vote struct {
	ID          string `json:"vote_id"`
	UserID      string `json:"user_id"`
	CandidateID string `json:"candidate_id"`
	VoteDate    string `json:"vote_date"`
}

func (v Vote) Fields() []string {
	return []string{v.UserID, v.CandidateID, v.VoteDate}
}

func VoteFromFields(id string, fields []string) (Vote, error) {
	if err := checkArity("vote", id, fields, VoteArity); err != nil {
		return Vote{}, err
	}
	return Vote{ID: id, UserID: fields[0], CandidateID: fields[1], VoteDate: fields[2]}, nil
}

// Admin.SurveyID is stored as given; it is not checked against ENCUESTAS.
type Admin struct {
	ID       string `json:"admin_id"`
	UserID   string `json:"user_id"`
	SurveyID string `json:"survey_id"`
	RFC      string `json:"-"`
}

func (a Admin) Fields() []string {
	return []string{a.UserID, a.SurveyID, a.RFC}
}

func AdminFromFields(id string, fields []string) (Admin, error) {
	if err := checkArity("admin", id, fields, AdminArity); err != nil {
		return Admin{}, err
	}
	return Admin{ID: id, UserID: fields[0], SurveyID: fields[1], RFC: fields[AdminFieldRFC]}, nil
}

// Roles carried by session tokens issued after RFC authentication.
const (
	RoleCandidate = "candidate"
	RoleAdmin     = "admin"
)
