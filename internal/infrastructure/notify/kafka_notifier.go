// Package notify delivers alert events to operators over Kafka.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/airops/internal/config"
	"github.com/turtacn/airops/internal/domain/models"
	"github.com/turtacn/airops/internal/domain/service"
	"github.com/turtacn/airops/pkg/constants"
	"github.com/turtacn/airops/pkg/logger"
)

var _ service.Notifier = (*KafkaNotifier)(nil)

// AlertEvent is the wire shape published for each opened alert.
type AlertEvent struct {
	AlertID    string                  `json:"alert_id"`
	TenantID   string                  `json:"tenant_id"`
	Type       constants.AlertType     `json:"type"`
	Subject    string                  `json:"subject"`
	Severity   constants.AlertSeverity `json:"severity"`
	Message    string                  `json:"message"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// DeliveryMetrics counts failed deliveries. Satisfied by monitoring.Metrics.
type DeliveryMetrics interface {
	RecordDeliveryFailure(tenantID string)
}

// KafkaNotifier publishes alert events to the alert topic. Messages are keyed
// by tenant so a consumer sees one tenant's alerts in order.
type KafkaNotifier struct {
	writer  *kafka.Writer
	metrics DeliveryMetrics
	logger  logger.Logger
}

// NewKafkaNotifier creates a notifier writing to the configured alert topic.
func NewKafkaNotifier(cfg config.KafkaConfig, metrics DeliveryMetrics, log logger.Logger) *KafkaNotifier {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AlertTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: cfg.WriteTimeout,
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchSize:    cfg.BatchSize,
		BatchTimeout: cfg.BatchTimeout,
	}
	return &KafkaNotifier{
		writer:  writer,
		metrics: metrics,
		logger:  log.WithComponent("KafkaNotifier"),
	}
}

// Notify publishes the alert. Errors are returned for the caller to log; the
// alert itself is already persisted and is never rolled back.
func (n *KafkaNotifier) Notify(ctx context.Context, alert *models.Alert) error {
	event := AlertEvent{
		AlertID:    alert.ID,
		TenantID:   alert.TenantID,
		Type:       alert.Type,
		Subject:    alert.Subject,
		Severity:   alert.Severity,
		Message:    alert.Message,
		OccurredAt: alert.CreatedAt,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.TenantID),
		Value: payload,
	})
	if err != nil {
		if n.metrics != nil {
			n.metrics.RecordDeliveryFailure(alert.TenantID)
		}
		n.logger.Error(ctx, "alert delivery failed", err,
			logger.String("tenant_id", alert.TenantID),
			logger.String("alert_id", alert.ID))
		return err
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
