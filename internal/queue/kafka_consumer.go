package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
)

// bookingGroupHandler feeds claimed partitions into a BookingLog.  Bad
// messages are logged and marked so the group moves past them.
type bookingGroupHandler struct {
	sink *BookingLog
	log  *logger.Logger
}

func (h *bookingGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *bookingGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *bookingGroupHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		if err := h.sink.Handle(msg.Value); err != nil {
			h.log.Error("booking consumer: handle message failed",
				"error", err, "partition", msg.Partition, "offset", msg.Offset)
		}
		sess.MarkMessage(msg, "")
	}
	return nil
}

// ConsumeKafka joins group on topic until ctx is done.
func ConsumeKafka(ctx context.Context, brokers []string, topic, group string, sink *BookingLog, log *logger.Logger) error {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true

	cg, err := sarama.NewConsumerGroup(brokers, group, cfg)
	if err != nil {
		return fmt.Errorf("kafka consumer group: %w", err)
	}
	defer cg.Close()

	go func() {
		for err := range cg.Errors() {
			log.Warn("booking consumer: kafka error", "error", err)
		}
	}()

	h := &bookingGroupHandler{sink: sink, log: log}
	for {
		if err := cg.Consume(ctx, []string{topic}, h); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("kafka consume: %w", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}
