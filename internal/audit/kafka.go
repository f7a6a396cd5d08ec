// README: Kafka-backed audit recorder.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafka.Writer the recorder needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaRecorder struct {
	writer MessageWriter
	log    *zap.Logger
}

func NewKafkaRecorder(writer MessageWriter, log *zap.Logger) *KafkaRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaRecorder{writer: writer, log: log}
}

// Record publishes e keyed by vehicle class, so one class keeps its order within a partition.
func (r *KafkaRecorder) Record(ctx context.Context, e Event) error {
	env, err := NewEnvelope(TypePriceEstimated, e)
	if err != nil {
		return err
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(e.VehicleClass),
		Value: value,
		Time:  env.Time,
		Headers: []kafka.Header{
			{Key: "ce_type", Value: []byte(env.Type)},
			{Key: "ce_id", Value: []byte(env.ID)},
		},
	}
	if err := r.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event %s: %w", e.EstimateID, err)
	}
	r.log.Debug("audit event published",
		zap.String("estimate_id", e.EstimateID),
		zap.String("event_id", env.ID),
	)
	return nil
}

func (r *KafkaRecorder) Close() error {
	return r.writer.Close()
}
