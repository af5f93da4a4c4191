package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"voto/internal/registry/models"
	"voto/internal/storage"
	dErrors "voto/pkg/domain-errors"
	"voto/pkg/testutil"
)

// A deleted user leaves its candidates and votes behind, and the candidate can
// still authenticate.
func TestDanglingReferencesSurviveUserDeletion(t *testing.T) {
	ctx := context.Background()
	store := storage.NewInMemory()
	svc := New(store)

	testutil.Given(t, "a user with a candidacy and a vote", func(t *testing.T) {
		require.NoError(t, svc.AddUser(ctx, models.User{ID: "u1", FirstName: "A", PaternalLastName: "B", MaternalLastName: "C", Phone: "D", Email: "E"}))
		require.NoError(t, svc.AddCandidate(ctx, models.Candidate{ID: "c1", UserID: "u1", RFC: "RFC1"}))
		require.NoError(t, svc.CastVote(ctx, models.Vote{ID: "v1", UserID: "u1", CandidateID: "c1", VoteDate: "2024-05-01"}))
	})

	testutil.When(t, "the user is deleted", func(t *testing.T) {
		require.NoError(t, svc.DeleteUser(ctx, "u1"))
	})

	testutil.Then(t, "the candidate still authenticates", func(t *testing.T) {
		ok, err := svc.AuthenticateCandidate(ctx, "c1", "RFC1")
		require.NoError(t, err)
		require.True(t, ok)
	})

	testutil.Then(t, "the vote is still stored", func(t *testing.T) {
		vote, found, err := svc.GetVote(ctx, "v1")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "u1", vote.UserID)
	})

	testutil.Then(t, "new references to the user are rejected", func(t *testing.T) {
		err := svc.CastVote(ctx, models.Vote{ID: "v2", UserID: "u1", CandidateID: "c1"})
		require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidReference))
	})
}
