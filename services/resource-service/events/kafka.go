package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RigelNana/edumarket/pkg/config"
	"github.com/RigelNana/edumarket/pkg/metrics"
	kafka "github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(cfg *config.KafkaConfig) *KafkaPublisher {
	return &KafkaPublisher{
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  cfg.SplitBrokers(),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		}),
		topic: cfg.Topic,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	msg, err := encode(e)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		metrics.KafkaMessagesTotal.WithLabelValues("resource-service", p.topic, "publish_failed").Inc()
		return fmt.Errorf("failed to write message to %s: %w", p.topic, err)
	}
	metrics.KafkaMessagesTotal.WithLabelValues("resource-service", p.topic, "published").Inc()
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Consumer reads resource events from Kafka and feeds them to a Handler.
type Consumer struct {
	reader  *kafka.Reader
	handler Handler
	topic   string
	log     *logrus.Logger
}

func NewConsumer(cfg *config.KafkaConfig, h Handler, log *logrus.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.SplitBrokers(),
			GroupID:  cfg.GroupID,
			Topic:    cfg.Topic,
			MinBytes: 1,
			MaxBytes: 10 << 20,
		}),
		handler: h,
		topic:   cfg.Topic,
		log:     log,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()
	c.log.WithField("topic", c.topic).Info("Kafka consumer started")

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				c.log.Info("Kafka consumer stopped")
				return
			}
			c.log.WithError(err).Warn("kafka fetch")
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		c.handle(ctx, msg)

		// Commit offset
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.WithError(err).Warn("kafka commit")
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	e, err := decode(msg)
	if err != nil {
		metrics.KafkaMessagesTotal.WithLabelValues("resource-service", c.topic, "malformed").Inc()
		c.log.WithError(err).Warn("dropping malformed event")
		return
	}

	hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.handler(hctx, e); err != nil {
		metrics.KafkaMessagesTotal.WithLabelValues("resource-service", c.topic, "failed").Inc()
		c.log.WithError(err).WithFields(logrus.Fields{
			"kind":        e.Kind,
			"resource_id": e.ResourceID,
		}).Error("event handler failed")
		return
	}
	metrics.KafkaMessagesTotal.WithLabelValues("resource-service", c.topic, "consumed").Inc()
}
