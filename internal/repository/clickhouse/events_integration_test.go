package clickhouse

import (
	"time"

	"github.com/CryptoAvisos-com/CrosschainCryptoAvisos/internal/model"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
)

func (s *RepositorySuite) TestInsertEvents() {
	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []model.Event{
		testEvent(1, model.EventPaymentPaid, 1, now),
		testEvent(1, model.EventPaymentReleased, 1, now.Add(time.Second)),
		testEvent(2, model.EventSettlementConfirmed, 0, now),
	}

	s.metrics.EXPECT().Observe("insert_events", model.Domain(1), gomock.Nil(), gomock.Any())
	s.metrics.EXPECT().Observe("count_events_by_type", model.Domain(0), gomock.Nil(), gomock.Any())

	s.Require().NoError(s.repo.InsertEvents(s.ctx, events))

	counts, err := s.repo.CountEventsByType(s.ctx, 0)
	s.Require().NoError(err)
	var total uint64
	for _, n := range counts {
		total += n
	}
	s.Equal(uint64(len(events)), total)
}

func (s *RepositorySuite) TestEventsByPayment() {
	now := time.Now().UTC().Truncate(time.Millisecond)
	paid := testEvent(1, model.EventPaymentPaid, 9, now)
	paid.Amount = new(uint256.Int).Lsh(uint256.NewInt(1), 200)
	released := testEvent(1, model.EventPaymentReleased, 9, now.Add(time.Second))
	other := testEvent(1, model.EventPaymentPaid, 10, now)

	s.metrics.EXPECT().Observe("insert_events", model.Domain(1), gomock.Nil(), gomock.Any())
	s.metrics.EXPECT().Observe("events_by_payment", model.Domain(1), gomock.Nil(), gomock.Any())

	s.Require().NoError(s.repo.InsertEvents(s.ctx, []model.Event{released, other, paid}))

	got, err := s.repo.EventsByPayment(s.ctx, 1, 9)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(paid.ID, got[0].ID)
	s.Equal(model.EventPaymentPaid, got[0].Type)
	s.Equal(paid.Amount.Dec(), got[0].Amount.Dec())
	s.Equal(paid.Key, got[0].Key)
	s.True(paid.OccurredAt.Equal(got[0].OccurredAt))
	s.Equal(released.ID, got[1].ID)
}

func (s *RepositorySuite) TestCountEventsByType() {
	now := time.Now().UTC().Truncate(time.Millisecond)
	events := []model.Event{
		testEvent(1, model.EventPaymentPaid, 1, now),
		testEvent(1, model.EventPaymentPaid, 2, now),
		testEvent(2, model.EventSettlementConfirmed, 0, now),
	}

	s.metrics.EXPECT().Observe("insert_events", model.Domain(1), gomock.Nil(), gomock.Any())
	s.metrics.EXPECT().Observe("count_events_by_type", model.Domain(1), gomock.Nil(), gomock.Any())
	s.metrics.EXPECT().Observe("count_events_by_type", model.Domain(0), gomock.Nil(), gomock.Any())

	s.Require().NoError(s.repo.InsertEvents(s.ctx, events))

	byDomain, err := s.repo.CountEventsByType(s.ctx, 1)
	s.Require().NoError(err)
	s.Equal(map[model.EventType]uint64{model.EventPaymentPaid: 2}, byDomain)

	all, err := s.repo.CountEventsByType(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal(map[model.EventType]uint64{
		model.EventPaymentPaid:         2,
		model.EventSettlementConfirmed: 1,
	}, all)
}
