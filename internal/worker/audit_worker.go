package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/St1cky1/kanban-service/internal/entity"
	"github.com/St1cky1/kanban-service/internal/infrastructure/client"
	"github.com/St1cky1/kanban-service/internal/logger"
	"github.com/St1cky1/kanban-service/internal/repository"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	consumerTag    = "board_audit_worker"
	reconnectDelay = 5 * time.Second
	storeTimeout   = 10 * time.Second
)

// AuditWorker consumes audit messages and stores them in the audit log.
type AuditWorker struct {
	url       string
	queue     string
	auditRepo repository.IAuditRepository
	delay     time.Duration
}

func NewAuditWorker(url, queue string, auditRepo repository.IAuditRepository) *AuditWorker {
	return &AuditWorker{
		url:       url,
		queue:     queue,
		auditRepo: auditRepo,
		delay:     reconnectDelay,
	}
}

// Start blocks until ctx is cancelled, reconnecting whenever the broker goes
// away.
func (w *AuditWorker) Start(ctx context.Context) {
	logger.Info("audit worker starting", "queue", w.queue)

	for {
		err := w.run(ctx)
		if ctx.Err() != nil {
			logger.Info("audit worker stopped")
			return
		}
		logger.Error("audit worker disconnected, reconnecting", "delay", w.delay, "error", err)

		select {
		case <-ctx.Done():
			logger.Info("audit worker stopped")
			return
		case <-time.After(w.delay):
		}
	}
}

func (w *AuditWorker) run(ctx context.Context) error {
	// Создаем отдельное соединение и канал для consumer'а
	conn, err := amqp.Dial(w.url)
	if err != nil {
		return fmt.Errorf("dial rabbitmq: %w", err)
	}
	defer conn.Close()

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer channel.Close()

	if _, err := client.DeclareAuditQueue(channel, w.queue); err != nil {
		return err
	}

	msgs, err := channel.Consume(
		w.queue,     // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("consume %q: %w", w.queue, err)
	}

	logger.Info("audit worker consuming", "queue", w.queue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			w.processMessage(ctx, msg)
		}
	}
}

func (w *AuditWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	// 1. Парсим сообщение
	var auditMsg entity.AuditMessage
	if err := json.Unmarshal(msg.Body, &auditMsg); err != nil {
		logger.Error("malformed audit message dropped", "error", err, "body", string(msg.Body))
		msg.Nack(false, false) // не возвращаем в очередь
		return
	}

	// 2. Конвертируем в BoardAudit
	audit, err := convertToAudit(&auditMsg)
	if err != nil {
		logger.Error("audit message cannot be encoded", "error", err)
		msg.Nack(false, false)
		return
	}

	// 3. Сохраняем
	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := w.auditRepo.Create(storeCtx, audit); err != nil {
		logger.Error("failed to store audit entry, requeueing", "error", err)
		msg.Nack(false, true)
		return
	}

	// 4. Подтверждаем обработку
	msg.Ack(false)
	logger.Debug("audit entry stored", "action", audit.Action, "entity", audit.EntityType, "id", audit.EntityID)
}

func convertToAudit(msg *entity.AuditMessage) (*entity.BoardAudit, error) {
	oldValues, err := jsonString(msg.OldValues)
	if err != nil {
		return nil, err
	}
	newValues, err := jsonString(msg.NewValues)
	if err != nil {
		return nil, err
	}
	changes, err := jsonString(msg.Changes)
	if err != nil {
		return nil, err
	}

	changedAt := msg.Timestamp
	if changedAt.IsZero() {
		changedAt = time.Now().UTC()
	}

	return &entity.BoardAudit{
		Action:     msg.Action,
		EntityType: msg.EntityType,
		EntityID:   msg.EntityID,
		OldValues:  oldValues,
		NewValues:  newValues,
		Changes:    changes,
		ChangedAt:  changedAt,
	}, nil
}

func jsonString(values map[string]any) (*string, error) {
	if values == nil {
		return nil, nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
