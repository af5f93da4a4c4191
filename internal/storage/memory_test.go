package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"voto/internal/platform/metrics"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) TestLoad() {
	s.Run("absent collection loads as empty", func() {
		records, err := s.store.Load(s.ctx, CollectionUsers)
		s.Require().NoError(err)
		s.NotNil(records)
		s.Empty(records)
	})

	s.Run("returns what was saved", func() {
		s.Require().NoError(s.store.Save(s.ctx, CollectionUsers, Records{
			"u1": {"A", "B", "C", "D", "E"},
		}))

		records, err := s.store.Load(s.ctx, CollectionUsers)
		s.Require().NoError(err)
		s.Equal([]string{"A", "B", "C", "D", "E"}, records["u1"])
	})

	s.Run("collections are independent", func() {
		s.Require().NoError(s.store.Save(s.ctx, CollectionVotes, Records{"v1": {"u1", "c1", "2024-05-01"}}))

		users, err := s.store.Load(s.ctx, CollectionUsers)
		s.Require().NoError(err)
		s.False(users.Has("v1"))
	})
}

func (s *InMemoryStoreSuite) TestSaveOverwritesWholeCollection() {
	s.Require().NoError(s.store.Save(s.ctx, CollectionAdmins, Records{
		"a1": {"u1", "s1", "RFC1"},
		"a2": {"u2", "s1", "RFC2"},
	}))
	s.Require().NoError(s.store.Save(s.ctx, CollectionAdmins, Records{
		"a2": {"u2", "s2", "RFC2"},
	}))

	records, err := s.store.Load(s.ctx, CollectionAdmins)
	s.Require().NoError(err)
	s.Equal([]string{"a2"}, records.IDs())
	s.Equal("s2", records["a2"][1])
}

func (s *InMemoryStoreSuite) TestNoAliasing() {
	s.Run("mutating a loaded record does not change the store", func() {
		s.Require().NoError(s.store.Save(s.ctx, CollectionCandidates, Records{"c1": {"u1", "RFC123"}}))

		loaded, err := s.store.Load(s.ctx, CollectionCandidates)
		s.Require().NoError(err)
		loaded["c1"][1] = "tampered"
		loaded["c2"] = []string{"u2", "X"}

		again, err := s.store.Load(s.ctx, CollectionCandidates)
		s.Require().NoError(err)
		s.Equal("RFC123", again["c1"][1])
		s.False(again.Has("c2"))
	})

	s.Run("mutating the saved mapping afterwards does not change the store", func() {
		records := Records{"s1": {"n", "d", "2024-01-01", "2024-02-01", "v1", "c1"}}
		s.Require().NoError(s.store.Save(s.ctx, CollectionSurveys, records))
		records["s1"][0] = "changed"

		again, err := s.store.Load(s.ctx, CollectionSurveys)
		s.Require().NoError(err)
		s.Equal("n", again["s1"][0])
	})
}

type failingStore struct{ err error }

func (f failingStore) Load(context.Context, string) (Records, error) { return nil, f.err }
func (f failingStore) Save(context.Context, string, Records) error   { return f.err }

func TestInstrumentedRecordsFailures(t *testing.T) {
	m := metrics.NewWithRegisterer(prometheus.NewRegistry())
	boom := errors.New("backend down")
	store := NewInstrumented(failingStore{err: boom}, "redis", m)

	_, err := store.Load(context.Background(), CollectionUsers)
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
	if err := store.Save(context.Background(), CollectionUsers, Records{}); !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}

	if got := testutil.ToFloat64(m.StoreFailures.WithLabelValues("redis", "load")); got != 1 {
		t.Fatalf("expected 1 load failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.StoreFailures.WithLabelValues("redis", "save")); got != 1 {
		t.Fatalf("expected 1 save failure, got %v", got)
	}
}

func TestInstrumentedPassesThrough(t *testing.T) {
	inner := NewInMemory()
	store := NewInstrumented(inner, "memory", nil)
	ctx := context.Background()

	if err := store.Save(ctx, CollectionUsers, Records{"u1": {"A", "B", "C", "D", "E"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	records, err := store.Load(ctx, CollectionUsers)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !records.Has("u1") {
		t.Fatalf("expected u1 to be loaded through the decorator")
	}
}
