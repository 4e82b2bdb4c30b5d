package events

import (
	"context"
	"encoding/json"

	"canopy-backend/internal/models"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Service manages the append-only ledger event log: in-transaction appends,
// historical range queries and pub/sub fan-out of committed events.
type Service struct {
	DB  *gorm.DB
	Rdb *redis.Client // optional; when nil committed events are not fanned out

	// Channel is the redis pub/sub channel carrying committed events as JSON.
	Channel string
}

// Receipt identifies a completed write: the event's pseudo transaction hash
// and its admission sequence (also reported as the block number).
type Receipt struct {
	TxHash   string `json:"tx_hash"`
	Sequence uint64 `json:"sequence"`
}

// Append records one event inside the caller's transaction. The sequence is
// assigned by the store on insert; the hash is keccak over the event content
// plus a random salt so replays of identical payloads stay distinguishable.
func (s *Service) Append(tx *gorm.DB, eventType string, projectID *int64, payload interface{}) (*models.LedgerEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	salt := uuid.New()
	hash := crypto.Keccak256Hash([]byte(eventType), body, salt[:])

	ev := &models.LedgerEvent{
		Type:      eventType,
		ProjectID: projectID,
		Payload:   body,
		TxHash:    hash.Hex(),
	}
	if err := tx.Create(ev).Error; err != nil {
		return nil, err
	}
	return ev, nil
}

// Publish fans committed events out over redis. Call after the enclosing
// transaction commits, never inside it. Publish failures are logged and
// swallowed: the durable log is the source of truth and subscribers can
// re-read missed ranges.
func (s *Service) Publish(ctx context.Context, evs ...*models.LedgerEvent) {
	if s.Rdb == nil {
		return
	}
	for _, ev := range evs {
		body, err := json.Marshal(ev)
		if err != nil {
			log.Error().Err(err).Uint64("sequence", ev.Sequence).Msg("Failed to encode ledger event")
			continue
		}
		if err := s.Rdb.Publish(ctx, s.Channel, body).Err(); err != nil {
			log.Error().Err(err).Uint64("sequence", ev.Sequence).Msg("Failed to publish ledger event")
		}
	}
}

// Range returns events with from <= sequence <= to in admission order.
// to == 0 means no upper bound. An empty types list matches every type.
func (s *Service) Range(ctx context.Context, from, to uint64, types []string) ([]models.LedgerEvent, error) {
	q := s.DB.WithContext(ctx).Where("sequence >= ?", from)
	if to > 0 {
		q = q.Where("sequence <= ?", to)
	}
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	var evs []models.LedgerEvent
	if err := q.Order("sequence ASC").Find(&evs).Error; err != nil {
		return nil, err
	}
	return evs, nil
}

// ByTxHash looks up the event a receipt points at.
func (s *Service) ByTxHash(ctx context.Context, txHash string) (*models.LedgerEvent, error) {
	var ev models.LedgerEvent
	if err := s.DB.WithContext(ctx).Where("tx_hash = ?", txHash).First(&ev).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

// Subscribe returns a channel of committed events and a cancel func. Delivery
// rides redis pub/sub, so consumers must tolerate duplicates and gaps:
// de-duplicate by sequence and backfill gaps with Range.
func (s *Service) Subscribe(ctx context.Context) (<-chan models.LedgerEvent, func()) {
	out := make(chan models.LedgerEvent, 64)
	if s.Rdb == nil {
		close(out)
		return out, func() {}
	}
	ps := s.Rdb.Subscribe(ctx, s.Channel)
	// Wait for the subscription to be confirmed so events published right
	// after Subscribe returns are not dropped.
	if _, err := ps.Receive(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to subscribe to ledger events")
		_ = ps.Close()
		close(out)
		return out, func() {}
	}
	go func() {
		defer close(out)
		for msg := range ps.Channel() {
			var ev models.LedgerEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Error().Err(err).Msg("Failed to decode ledger event from pub/sub")
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, func() { _ = ps.Close() }
}

// ReceiptFor builds the completion receipt for an appended event.
func ReceiptFor(ev *models.LedgerEvent) *Receipt {
	return &Receipt{TxHash: ev.TxHash, Sequence: ev.Sequence}
}
