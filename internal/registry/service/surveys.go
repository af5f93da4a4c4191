package service

import (
	"context"

	"voto/internal/audit"
	"voto/internal/registry/models"
	"voto/internal/storage"
	dErrors "voto/pkg/domain-errors"
)

// CreateSurvey inserts a survey with all six fields, including the winning
// candidate slot. Fails with CodeAlreadyExists if the id is taken.
func (s *Service) CreateSurvey(ctx context.Context, survey models.Survey) (err error) {
	ctx, span := s.start(ctx, opCreateSurvey, survey.ID)
	defer func() { s.finish(ctx, span, opCreateSurvey, err) }()

	surveys, err := s.load(ctx, storage.CollectionSurveys)
	if err != nil {
		return err
	}
	if surveys.Has(survey.ID) {
		return dErrors.New(dErrors.CodeAlreadyExists, "survey already exists")
	}
	surveys[survey.ID] = survey.Fields()
	if err := s.save(ctx, storage.CollectionSurveys, surveys); err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionSurveyCreated, storage.CollectionSurveys, survey.ID)
	return nil
}

// AssignCandidate overwrites the winning candidate of a survey and nothing
// else. The candidate id is not checked against CANDIDATO.
func (s *Service) AssignCandidate(ctx context.Context, surveyID, candidateID string) (err error) {
	ctx, span := s.start(ctx, opAssignCandidate, surveyID)
	defer func() { s.finish(ctx, span, opAssignCandidate, err) }()

	return s.reviseSurvey(ctx, surveyID, audit.ActionSurveyWinnerAssigned, func(survey *models.Survey) {
		survey.AssignWinner(candidateID)
	}, "candidate_id", candidateID)
}

// UpdateSurvey overwrites name, description and end date only.
func (s *Service) UpdateSurvey(ctx context.Context, surveyID, name, description, endDate string) (err error) {
	ctx, span := s.start(ctx, opUpdateSurvey, surveyID)
	defer func() { s.finish(ctx, span, opUpdateSurvey, err) }()

	return s.reviseSurvey(ctx, surveyID, audit.ActionSurveyUpdated, func(survey *models.Survey) {
		survey.Revise(name, description, endDate)
	})
}

func (s *Service) reviseSurvey(ctx context.Context, id string, action audit.Action, apply func(*models.Survey), attributes ...any) error {
	surveys, err := s.load(ctx, storage.CollectionSurveys)
	if err != nil {
		return err
	}
	fields, ok := surveys[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "survey not found")
	}
	survey, err := models.SurveyFromFields(id, fields)
	if err != nil {
		return corrupt(err)
	}
	apply(&survey)
	surveys[id] = survey.Fields()
	if err := s.save(ctx, storage.CollectionSurveys, surveys); err != nil {
		return err
	}
	s.logAudit(ctx, action, storage.CollectionSurveys, id, attributes...)
	return nil
}

func (s *Service) GetSurvey(ctx context.Context, id string) (survey models.Survey, found bool, err error) {
	ctx, span := s.start(ctx, opGetSurvey, id)
	defer func() { s.finish(ctx, span, opGetSurvey, err) }()

	surveys, err := s.load(ctx, storage.CollectionSurveys)
	if err != nil {
		return models.Survey{}, false, err
	}
	fields, ok := surveys[id]
	if !ok {
		return models.Survey{}, false, nil
	}
	survey, err = models.SurveyFromFields(id, fields)
	if err != nil {
		return models.Survey{}, false, corrupt(err)
	}
	return survey, true, nil
}

func (s *Service) ListSurveys(ctx context.Context) (out map[string]models.Survey, err error) {
	ctx, span := s.start(ctx, opListSurveys, "")
	defer func() { s.finish(ctx, span, opListSurveys, err) }()

	surveys, err := s.load(ctx, storage.CollectionSurveys)
	if err != nil {
		return nil, err
	}
	out = make(map[string]models.Survey, len(surveys))
	for id, fields := range surveys {
		survey, err := models.SurveyFromFields(id, fields)
		if err != nil {
			return nil, corrupt(err)
		}
		out[id] = survey
	}
	return out, nil
}

// DeleteSurvey removes a survey. Admins naming it keep their survey_id.
func (s *Service) DeleteSurvey(ctx context.Context, id string) (err error) {
	ctx, span := s.start(ctx, opDeleteSurvey, id)
	defer func() { s.finish(ctx, span, opDeleteSurvey, err) }()

	surveys, err := s.load(ctx, storage.CollectionSurveys)
	if err != nil {
		return err
	}
	if !surveys.Has(id) {
		return dErrors.New(dErrors.CodeNotFound, "survey not found")
	}
	delete(surveys, id)
	if err := s.save(ctx, storage.CollectionSurveys, surveys); err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionSurveyDeleted, storage.CollectionSurveys, id)
	return nil
}
