package events

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/loca-mat/service-rental/internal/domain"
	"github.com/loca-mat/service-rental/internal/platform/kafka"
)

// MaintenanceCompleter moves an item from maintenance back to available;
// satisfied by the fleet service.
type MaintenanceCompleter interface {
	CompleteMaintenance(ctx context.Context, itemID uint64) error
}

// MaintenanceEventConsumer listens to fleet events from the workshop and
// returns repaired items to the available pool.
type MaintenanceEventConsumer struct {
	consumer *kafka.Consumer
	fleet    MaintenanceCompleter
	logger   *zap.Logger
}

// NewMaintenanceEventConsumer creates a new MaintenanceEventConsumer.
func NewMaintenanceEventConsumer(
	brokers []string,
	groupID string,
	fleet MaintenanceCompleter,
	logger *zap.Logger,
) *MaintenanceEventConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, TopicFleetEvents, logger)
	return &MaintenanceEventConsumer{
		consumer: consumer,
		fleet:    fleet,
		logger:   logger,
	}
}

// Start begins consuming fleet events. This blocks until the context is cancelled.
func (c *MaintenanceEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *MaintenanceEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *MaintenanceEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent kafka.CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from fleet topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case FleetMaintenanceCompleted:
		return c.handleMaintenanceCompleted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled fleet event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *MaintenanceEventConsumer) handleMaintenanceCompleted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt MaintenanceCompletedEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse MaintenanceCompletedEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing maintenance completed event",
		zap.Uint64("item_id", evt.ItemID),
	)

	if err := c.fleet.CompleteMaintenance(ctx, evt.ItemID); err != nil {
		// An item already back in service or scrapped cannot be made
		// available again; retrying would never succeed.
		if domain.IsKind(err, domain.KindValidation) || domain.IsKind(err, domain.KindNotFound) {
			c.logger.Warn("skipping maintenance completed event",
				zap.Uint64("item_id", evt.ItemID),
				zap.Error(err),
			)
			return nil
		}
		c.logger.Error("failed to return item to service",
			zap.Uint64("item_id", evt.ItemID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("item returned to service after maintenance",
		zap.Uint64("item_id", evt.ItemID),
	)
	return nil
}
