//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"voto/internal/audit"
	"voto/internal/platform/config"
	"voto/internal/platform/kafka"
	"voto/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	brokers []string
	client  *kgo.Client
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.brokers = containers.GetManager().GetRedpanda(s.T()).Brokers
	client, err := kafka.New(context.Background(), config.KafkaConfig{
		Brokers:    s.brokers,
		AuditTopic: "voto.audit.test",
	})
	s.Require().NoError(err)
	s.client = client
}

func (s *KafkaPublisherSuite) TearDownSuite() {
	if s.client != nil {
		s.client.Close()
	}
}

func (s *KafkaPublisherSuite) TestEnsureTopicIsIdempotent() {
	ctx := context.Background()
	s.Require().NoError(kafka.EnsureTopic(ctx, s.client, "voto.audit.ensure"))
	s.Require().NoError(kafka.EnsureTopic(ctx, s.client, "voto.audit.ensure"))
}

func (s *KafkaPublisherSuite) TestEmitProducesKeyedJSONRecord() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	topic := "voto.audit.emit"
	s.Require().NoError(kafka.EnsureTopic(ctx, s.client, topic))

	pub := audit.NewKafkaPublisher(s.client, topic)
	s.Require().NoError(pub.Emit(ctx, audit.Event{
		Action:     audit.ActionCandidateCreated,
		Collection: "CANDIDATO",
		Subject:    "c1",
		RequestID:  "req-9",
	}))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	s.Equal("c1", string(records[0].Key))
	var got audit.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(audit.ActionCandidateCreated, got.Action)
	s.Equal(audit.CategoryOperations, got.Category)
	s.Equal("req-9", got.RequestID)
}
