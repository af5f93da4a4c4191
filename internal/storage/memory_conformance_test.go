package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"voto/internal/storage"
	"voto/internal/storage/storagetest"
)

type InMemoryConformanceSuite struct {
	storagetest.Suite
}

func (s *InMemoryConformanceSuite) SetupSuite() {
	s.Reset = func(context.Context) error {
		s.Store = storage.NewInMemory()
		return nil
	}
}

func TestInMemoryConformanceSuite(t *testing.T) {
	suite.Run(t, new(InMemoryConformanceSuite))
}
