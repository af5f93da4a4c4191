// Package storagetest holds the behaviour every storage.RecordStore backend
// must share. Backend tests embed Suite and fill Store and Reset in
// SetupSuite.
package storagetest

import (
	"context"

	"github.com/stretchr/testify/suite"

	"voto/internal/storage"
)

type Suite struct {
	suite.Suite
	Store storage.RecordStore
	// Reset empties the backend before each test.
	Reset func(ctx context.Context) error
}

func (s *Suite) SetupTest() {
	if s.Reset != nil {
		s.Require().NoError(s.Reset(context.Background()))
	}
}

func (s *Suite) TestAbsentCollectionIsEmpty() {
	records, err := s.Store.Load(context.Background(), storage.CollectionSurveys)
	s.Require().NoError(err)
	s.NotNil(records)
	s.Empty(records)
}

func (s *Suite) TestRoundTripPreservesFieldOrder() {
	ctx := context.Background()
	in := storage.Records{
		"s1": {"Elección 2024", "", "2024-01-01", "2024-02-01", "v1", "c9"},
		"s2": {`comma, "quote"`, `back\slash {brace}`, "NULL", " padded ", "v2", ""},
	}
	s.Require().NoError(s.Store.Save(ctx, storage.CollectionSurveys, in))

	out, err := s.Store.Load(ctx, storage.CollectionSurveys)
	s.Require().NoError(err)
	s.Equal(in, out)
}

func (s *Suite) TestSaveReplacesCollection() {
	ctx := context.Background()
	s.Require().NoError(s.Store.Save(ctx, storage.CollectionUsers, storage.Records{
		"u1": {"A", "B", "C", "D", "E"},
		"u2": {"F", "G", "H", "I", "J"},
	}))
	s.Require().NoError(s.Store.Save(ctx, storage.CollectionUsers, storage.Records{
		"u2": {"F", "G", "H", "I", "K"},
	}))

	out, err := s.Store.Load(ctx, storage.CollectionUsers)
	s.Require().NoError(err)
	s.Equal([]string{"u2"}, out.IDs())
	s.Equal("K", out["u2"][4])
}

func (s *Suite) TestSavingEmptyCollectionClearsIt() {
	ctx := context.Background()
	s.Require().NoError(s.Store.Save(ctx, storage.CollectionVotes, storage.Records{"v1": {"u1", "c1", "2024-05-01"}}))
	s.Require().NoError(s.Store.Save(ctx, storage.CollectionVotes, storage.Records{}))

	out, err := s.Store.Load(ctx, storage.CollectionVotes)
	s.Require().NoError(err)
	s.Empty(out)
}

func (s *Suite) TestCollectionsAreIndependent() {
	ctx := context.Background()
	s.Require().NoError(s.Store.Save(ctx, storage.CollectionCandidates, storage.Records{"x": {"u1", "RFC"}}))
	s.Require().NoError(s.Store.Save(ctx, storage.CollectionAdmins, storage.Records{"x": {"u1", "s1", "RFC"}}))

	candidates, err := s.Store.Load(ctx, storage.CollectionCandidates)
	s.Require().NoError(err)
	admins, err := s.Store.Load(ctx, storage.CollectionAdmins)
	s.Require().NoError(err)

	s.Equal([]string{"u1", "RFC"}, candidates["x"])
	s.Equal([]string{"u1", "s1", "RFC"}, admins["x"])
}
