package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/T0MGL/0rdefy-sub002/internal/service"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueStockRecalc    = "jobs:stock_recalc"
	QueueCustomerRepair = "jobs:customer_repair"

	maxAttempts = 3
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// StockRecalcPayload asks the pool to replay the ledger for one product,
// or for the whole store when ProductID is empty.
type StockRecalcPayload struct {
	StoreID   string `json:"store_id"`
	ProductID string `json:"product_id,omitempty"`
}

// CustomerRepairPayload asks the pool to recompute lifetime aggregates.
type CustomerRepairPayload struct {
	StoreID string `json:"store_id"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueStockRecalc pushes a ledger-replay job to Redis.
func (d *Dispatcher) EnqueueStockRecalc(ctx context.Context, payload StockRecalcPayload) error {
	return d.enqueue(ctx, QueueStockRecalc, "stock_recalc", payload)
}

// EnqueueCustomerRepair pushes an aggregates-repair job to Redis.
func (d *Dispatcher) EnqueueCustomerRepair(ctx context.Context, payload CustomerRepairPayload) error {
	return d.enqueue(ctx, QueueCustomerRepair, "customer_repair", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool consumes reconciliation jobs. Repairs run through the same
// service paths as the synchronous API so the semantics never fork.
type Pool struct {
	rdb   *redis.Client
	recon service.ReconciliationService
}

func NewPool(rdb *redis.Client, recon service.ReconciliationService) *Pool {
	return &Pool{rdb: rdb, recon: recon}
}

// Start launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	queues := []string{QueueStockRecalc, QueueCustomerRepair}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var err error
	switch queue {
	case QueueStockRecalc:
		err = p.handleStockRecalc(ctx, job.Payload)
	case QueueCustomerRepair:
		err = p.handleCustomerRepair(ctx, job.Payload)
	default:
		log.Warn().Str("queue", queue).Str("type", job.Type).Msg("unknown job queue")
		return
	}
	if err == nil {
		return
	}

	job.Attempts++
	if job.Attempts >= maxAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}
	log.Warn().
		Str("queue", queue).
		Str("type", job.Type).
		Int("attempts", job.Attempts).
		Err(err).
		Msg("job failed, requeueing")
	if encoded, mErr := json.Marshal(job); mErr == nil {
		if pushErr := p.rdb.LPush(ctx, queue, encoded).Err(); pushErr != nil {
			log.Error().Err(pushErr).Str("queue", queue).Msg("failed to requeue job")
		}
	}
}

func (p *Pool) handleStockRecalc(ctx context.Context, raw json.RawMessage) error {
	var payload StockRecalcPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("stock_recalc: invalid payload")
		return nil // malformed jobs are not retryable
	}
	storeID, err := uuid.Parse(payload.StoreID)
	if err != nil {
		log.Error().Str("store_id", payload.StoreID).Msg("stock_recalc: invalid store id")
		return nil
	}
	productID := uuid.Nil
	if payload.ProductID != "" {
		if productID, err = uuid.Parse(payload.ProductID); err != nil {
			log.Error().Str("product_id", payload.ProductID).Msg("stock_recalc: invalid product id")
			return nil
		}
	}

	results, err := p.recon.RecalculateStock(ctx, storeID, productID)
	if err != nil {
		return err
	}
	corrected := 0
	for _, r := range results {
		if r.Corrected {
			corrected++
		}
	}
	log.Info().
		Str("store_id", storeID.String()).
		Int("pools_checked", len(results)).
		Int("pools_corrected", corrected).
		Msg("stock_recalc: completed")
	return nil
}

func (p *Pool) handleCustomerRepair(ctx context.Context, raw json.RawMessage) error {
	var payload CustomerRepairPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("customer_repair: invalid payload")
		return nil
	}
	storeID, err := uuid.Parse(payload.StoreID)
	if err != nil {
		log.Error().Str("store_id", payload.StoreID).Msg("customer_repair: invalid store id")
		return nil
	}

	results, err := p.recon.RepairCustomerAggregates(ctx, storeID)
	if err != nil {
		return err
	}
	corrected := 0
	for _, r := range results {
		if r.Corrected {
			corrected++
		}
	}
	log.Info().
		Str("store_id", storeID.String()).
		Int("customers_checked", len(results)).
		Int("customers_corrected", corrected).
		Msg("customer_repair: completed")
	return nil
}
