package sink

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/roach88/trickle/internal/dataset"
	"github.com/roach88/trickle/internal/replay"
)

// kafkaWriter is the subset of kafka.Writer used by the sink.
// Narrowed for testing with a fake writer.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka submits records as JSON messages to a topic, for monitoring
// pipelines that ingest replayed traffic through a broker instead of
// calling the endpoint directly.
//
// The message key is the record's original row index, so downstream
// consumers can recover submission order per partition.
type Kafka struct {
	writer kafkaWriter
}

// NewKafka creates a Kafka sink writing to topic on the given brokers.
// Writes are synchronous and require acks from all replicas - a record
// is only counted as submitted once the broker has it.
func NewKafka(brokers []string, topic string) *Kafka {
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Submit implements replay.Sink.
func (k *Kafka) Submit(ctx context.Context, rec dataset.Record) error {
	value, err := json.Marshal(recordFields(rec))
	if err != nil {
		return replay.NewSubmissionError(replay.KindRejected, "encode record", err)
	}

	err = k.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.Itoa(rec.Index)),
		Value: value,
	})
	if err != nil {
		if ctx.Err() != nil {
			return replay.NewSubmissionError(replay.KindTimeout, "write deadline exceeded", err)
		}
		return replay.NewSubmissionError(replay.KindNetwork, "broker write failed", err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (k *Kafka) Close() error {
	return k.writer.Close()
}
