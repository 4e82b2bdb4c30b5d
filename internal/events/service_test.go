package events

import (
	"context"
	"testing"
	"time"

	"canopy-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupEventsTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.LedgerEvent{}))
	return &Service{DB: db, Channel: "test:events"}
}

func appendEvent(t *testing.T, s *Service, eventType string, payload interface{}) *models.LedgerEvent {
	var ev *models.LedgerEvent
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		ev, err = s.Append(tx, eventType, nil, payload)
		return err
	})
	require.NoError(t, err)
	return ev
}

func TestAppend_SequencesAndHashes(t *testing.T) {
	s := setupEventsTest(t)

	ev1 := appendEvent(t, s, models.EventProjectCreated, map[string]interface{}{"id": 0})
	ev2 := appendEvent(t, s, models.EventCreditTraded, map[string]interface{}{"project_id": 0})

	assert.Equal(t, uint64(1), ev1.Sequence)
	assert.Equal(t, uint64(2), ev2.Sequence)
	assert.Len(t, ev1.TxHash, 66)
	assert.NotEqual(t, ev1.TxHash, ev2.TxHash)

	// Identical payloads still get distinct hashes
	ev3 := appendEvent(t, s, models.EventProjectCreated, map[string]interface{}{"id": 0})
	assert.NotEqual(t, ev1.TxHash, ev3.TxHash)
}

func TestRange(t *testing.T) {
	s := setupEventsTest(t)
	ctx := context.Background()

	appendEvent(t, s, models.EventProjectCreated, map[string]interface{}{"id": 0})
	appendEvent(t, s, models.EventCreditTraded, map[string]interface{}{"n": 1})
	appendEvent(t, s, models.EventCreditTraded, map[string]interface{}{"n": 2})
	appendEvent(t, s, models.EventCreditRetired, map[string]interface{}{"n": 3})

	all, err := s.Range(ctx, 0, 0, nil)
	require.NoError(t, err)
	require.Len(t, all, 4)
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i].Sequence, all[i-1].Sequence)
	}

	// Inclusive bounds
	mid, err := s.Range(ctx, 2, 3, nil)
	require.NoError(t, err)
	require.Len(t, mid, 2)
	assert.Equal(t, uint64(2), mid[0].Sequence)
	assert.Equal(t, uint64(3), mid[1].Sequence)

	// Type filter
	trades, err := s.Range(ctx, 0, 0, []string{models.EventCreditTraded})
	require.NoError(t, err)
	require.Len(t, trades, 2)

	mixed, err := s.Range(ctx, 0, 0, []string{models.EventCreditTraded, models.EventCreditRetired})
	require.NoError(t, err)
	require.Len(t, mixed, 3)
}

func TestByTxHash(t *testing.T) {
	s := setupEventsTest(t)
	ctx := context.Background()

	ev := appendEvent(t, s, models.EventCreditRetired, map[string]interface{}{"amount": 7})

	got, err := s.ByTxHash(ctx, ev.TxHash)
	require.NoError(t, err)
	assert.Equal(t, ev.Sequence, got.Sequence)

	_, err = s.ByTxHash(ctx, "0xdeadbeef")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	s := setupEventsTest(t)
	s.Rdb = rdb

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch, stop := s.Subscribe(ctx)
	defer stop()

	ev := appendEvent(t, s, models.EventCreditTraded, map[string]interface{}{"project_id": 0, "amount": 100})
	s.Publish(ctx, ev)

	select {
	case got := <-ch:
		assert.Equal(t, ev.Sequence, got.Sequence)
		assert.Equal(t, models.EventCreditTraded, got.Type)
		assert.Equal(t, ev.TxHash, got.TxHash)
	case <-ctx.Done():
		t.Fatal("timed out waiting for published event")
	}
}

func TestPublish_NoRedisIsNoOp(t *testing.T) {
	s := setupEventsTest(t)
	ev := appendEvent(t, s, models.EventCreditTraded, map[string]interface{}{"n": 1})
	// Must not panic or error without a redis client
	s.Publish(context.Background(), ev)
}
