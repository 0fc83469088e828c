package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"studyai/internal/logging"
	"studyai/internal/model"
)

// PreviewRefresher re-extracts a material's text and stores the preview.
type PreviewRefresher interface {
	RefreshPreview(ctx context.Context, materialID string) (string, error)
}

type MaterialExtractWorker struct {
	conn      *amqp.Connection
	refresher PreviewRefresher
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMaterialExtractWorker(conn *amqp.Connection, refresher PreviewRefresher, queueName string, logger *zap.Logger) *MaterialExtractWorker {
	return &MaterialExtractWorker{
		conn:      conn,
		refresher: refresher,
		queueName: queueName,
		logger:    logging.OrNop(logger),
	}
}

func (w *MaterialExtractWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	// Extraction of a large PDF is slow; take one job at a time.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()
		w.consume(workerCtx, deliveries)
	}()

	return nil
}

// consume runs until ctx is done or deliveries closes. Failed jobs are
// nacked without requeue.
func (w *MaterialExtractWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			if err := w.handle(ctx, d.Body); err != nil {
				w.logger.Warn("material extraction failed", zap.Error(err))
				if err := d.Nack(false, false); err != nil {
					w.logger.Warn("nack extraction job failed", zap.Error(err))
				}
				continue
			}
			if err := d.Ack(false); err != nil {
				w.logger.Warn("ack extraction job failed", zap.Error(err))
			}
		}
	}
}

func (w *MaterialExtractWorker) handle(ctx context.Context, body []byte) error {
	var job model.ExtractionJob
	if err := json.Unmarshal(body, &job); err != nil {
		return fmt.Errorf("decode extraction job failed: %w", err)
	}
	if job.MaterialID == "" {
		return fmt.Errorf("extraction job has no material id")
	}
	if _, err := w.refresher.RefreshPreview(ctx, job.MaterialID); err != nil {
		return fmt.Errorf("refresh material %s failed: %w", job.MaterialID, err)
	}
	w.logger.Debug("material extracted", zap.String("material_id", job.MaterialID))
	return nil
}

func (w *MaterialExtractWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
