package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"voto/internal/audit"
	"voto/internal/registry/models"
	"voto/internal/storage"
	dErrors "voto/pkg/domain-errors"
)

// CastVote records a vote. Checks run in a fixed order: user exists,
// candidate exists, vote id unused. Repeat votes by one user under different
// vote ids are accepted, and the candidate is not tied to any survey.
func (s *Service) CastVote(ctx context.Context, vote models.Vote) (err error) {
	ctx, span := s.start(ctx, opCastVote, vote.ID)
	defer func() { s.finish(ctx, span, opCastVote, err) }()

	var users, candidates, votes storage.Records
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.load(gctx, storage.CollectionUsers)
		return err
	})
	g.Go(func() (err error) {
		candidates, err = s.load(gctx, storage.CollectionCandidates)
		return err
	})
	g.Go(func() (err error) {
		votes, err = s.load(gctx, storage.CollectionVotes)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if !users.Has(vote.UserID) {
		return dErrors.New(dErrors.CodeInvalidReference, "user does not exist")
	}
	if !candidates.Has(vote.CandidateID) {
		return dErrors.New(dErrors.CodeInvalidReference, "candidate does not exist")
	}
	if votes.Has(vote.ID) {
		return dErrors.New(dErrors.CodeAlreadyExists, "vote already exists")
	}
	votes[vote.ID] = vote.Fields()
	if err := s.save(ctx, storage.CollectionVotes, votes); err != nil {
		return err
	}
	s.logAudit(ctx, audit.ActionVoteCast, storage.CollectionVotes, vote.ID,
		"user_id", vote.UserID,
		"candidate_id", vote.CandidateID)
	return nil
}

func (s *Service) GetVote(ctx context.Context, id string) (vote models.Vote, found bool, err error) {
	ctx, span := s.start(ctx, opGetVote, id)
	defer func() { s.finish(ctx, span, opGetVote, err) }()

	votes, err := s.load(ctx, storage.CollectionVotes)
	if err != nil {
		return models.Vote{}, false, err
	}
	fields, ok := votes[id]
	if !ok {
		return models.Vote{}, false, nil
	}
	vote, err = models.VoteFromFields(id, fields)
	if err != nil {
		return models.Vote{}, false, corrupt(err)
	}
	return vote, true, nil
}

func (s *Service) ListVotes(ctx context.Context) (out map[string]models.Vote, err error) {
	ctx, span := s.start(ctx, opListVotes, "")
	defer func() { s.finish(ctx, span, opListVotes, err) }()

	votes, err := s.load(ctx, storage.CollectionVotes)
	if err != nil {
		return nil, err
	}
	out = make(map[string]models.Vote, len(votes))
	for id, fields := range votes {
		vote, err := models.VoteFromFields(id, fields)
		if err != nil {
			return nil, corrupt(err)
		}
		out[id] = vote
	}
	return out, nil
}
