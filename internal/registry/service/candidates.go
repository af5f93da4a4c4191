package service

import (
	"context"

	"voto/internal/audit"
	"voto/internal/registry/models"
	"voto/internal/storage"
	dErrors "voto/pkg/domain-errors"
)

// AddCandidate registers a candidate for an existing user. The user check
// runs before the uniqueness check.
func (s *Service) AddCandidate(ctx context.Context, candidate models.Candidate) (err error) {
	ctx, span := s.start(ctx, opAddCandidate, candidate.ID)
	defer func() { s.finish(ctx, span, opAddCandidate, err) }()

	users, err := s.load(ctx, storage.CollectionUsers)
	if err != nil {
		return err
	}
	if !users.Has(candidate.UserID) {
		return dErrors.New(dErrors.CodeInvalidReference, "user does not exist")
	}
	candidates, err := s.load(ctx, storage.CollectionCandidates)
	if err != nil {
		return err
	}
	if candidates.Has(candidate.ID) {
		return dErrors.New(dErrors.CodeAlreadyExists, "candidate already exists")
	}
	candidates[candidate.ID] = candidate.Fields()
	if err := s.save(ctx, storage.CollectionCandidates, candidates); err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionCandidateCreated, storage.CollectionCandidates, candidate.ID,
		"user_id", candidate.UserID)
	return nil
}

// AuthenticateCandidate reports whether id exists and rfc equals its stored
// RFC exactly. An unknown id is false, not an error.
func (s *Service) AuthenticateCandidate(ctx context.Context, id, rfc string) (ok bool, err error) {
	ctx, span := s.start(ctx, opAuthenticateCandidate, id)
	defer func() { s.finish(ctx, span, opAuthenticateCandidate, err) }()

	return s.authenticate(ctx, storage.CollectionCandidates, models.RoleCandidate, id, rfc,
		func(fields []string) (string, error) {
			candidate, err := models.CandidateFromFields(id, fields)
			return candidate.RFC, err
		})
}

func (s *Service) GetCandidate(ctx context.Context, id string) (candidate models.Candidate, found bool, err error) {
	ctx, span := s.start(ctx, opGetCandidate, id)
	defer func() { s.finish(ctx, span, opGetCandidate, err) }()

	candidates, err := s.load(ctx, storage.CollectionCandidates)
	if err != nil {
		return models.Candidate{}, false, err
	}
	fields, ok := candidates[id]
	if !ok {
		return models.Candidate{}, false, nil
	}
	candidate, err = models.CandidateFromFields(id, fields)
	if err != nil {
		return models.Candidate{}, false, corrupt(err)
	}
	return candidate, true, nil
}

func (s *Service) ListCandidates(ctx context.Context) (out map[string]models.Candidate, err error) {
	ctx, span := s.start(ctx, opListCandidates, "")
	defer func() { s.finish(ctx, span, opListCandidates, err) }()

	candidates, err := s.load(ctx, storage.CollectionCandidates)
	if err != nil {
		return nil, err
	}
	out = make(map[string]models.Candidate, len(candidates))
	for id, fields := range candidates {
		candidate, err := models.CandidateFromFields(id, fields)
		if err != nil {
			return nil, corrupt(err)
		}
		out[id] = candidate
	}
	return out, nil
}
