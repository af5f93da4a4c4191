package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks RecordStore,AuditPublisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"voto/internal/registry/models"
	"voto/internal/registry/service/mocks"
	"voto/internal/storage"
	dErrors "voto/pkg/domain-errors"
	"voto/pkg/platform/sentinel"
)

type StoreFailureSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockRecordStore
	publisher *mocks.MockAuditPublisher
	service   *Service
}

func TestStoreFailureSuite(t *testing.T) {
	suite.Run(t, new(StoreFailureSuite))
}

func (s *StoreFailureSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockRecordStore(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.service = New(s.store, WithAuditPublisher(s.publisher))
}

func (s *StoreFailureSuite) TearDownTest() {
	s.ctrl.Finish()
}

var errBackend = errors.New("connection refused")

func (s *StoreFailureSuite) TestLoadFailureIsInternalAndSkipsSave() {
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionUsers).Return(nil, errBackend)

	err := s.service.AddUser(context.Background(), models.User{ID: "u1"})

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.ErrorIs(err, errBackend)
}

func (s *StoreFailureSuite) TestSaveFailureIsInternalAndNotAudited() {
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionUsers).Return(storage.Records{}, nil)
	s.store.EXPECT().Save(gomock.Any(), storage.CollectionUsers, gomock.Any()).Return(errBackend)

	err := s.service.AddUser(context.Background(), models.User{ID: "u1"})

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *StoreFailureSuite) TestRejectionNeverSaves() {
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionSurveys).Return(storage.Records{}, nil)

	err := s.service.UpdateSurvey(context.Background(), "ghost", "n", "d", "e")

	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *StoreFailureSuite) TestCastVoteFailsWhenAnySnapshotFails() {
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionUsers).Return(storage.Records{"u1": {"a", "b", "c", "d", "e"}}, nil)
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionCandidates).Return(nil, errBackend)
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionVotes).Return(storage.Records{}, nil).AnyTimes()

	err := s.service.CastVote(context.Background(), models.Vote{ID: "v1", UserID: "u1", CandidateID: "c1"})

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.ErrorIs(err, errBackend)
}

func (s *StoreFailureSuite) TestAuthenticationSurfacesStorageFailure() {
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionAdmins).Return(nil, errBackend)

	ok, err := s.service.AuthenticateAdmin(context.Background(), "a1", "RFC")

	s.False(ok)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.False(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *StoreFailureSuite) TestCorruptRecordIsInternal() {
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionCandidates).
		Return(storage.Records{"c1": {"u1"}}, nil)

	_, _, err := s.service.GetCandidate(context.Background(), "c1")

	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	s.ErrorIs(err, sentinel.ErrInvalidState)
}

func (s *StoreFailureSuite) TestAuditFailureDoesNotFailOperation() {
	s.store.EXPECT().Load(gomock.Any(), storage.CollectionUsers).Return(storage.Records{"u1": {"a", "b", "c", "d", "e"}}, nil)
	s.store.EXPECT().Save(gomock.Any(), storage.CollectionUsers, storage.Records{}).Return(nil)
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

	s.NoError(s.service.DeleteUser(context.Background(), "u1"))
}
