package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/trickle/internal/dataset"
	"github.com/roach88/trickle/internal/replay"
)

// fakeWriter captures messages instead of talking to a broker.
type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafka_Submit(t *testing.T) {
	w := &fakeWriter{}
	k := &Kafka{writer: w}

	rec := dataset.Record{Index: 7, Fields: map[string]string{"month": "9", "kind": "casual"}}
	require.NoError(t, k.Submit(context.Background(), rec))

	require.Len(t, w.messages, 1)
	assert.Equal(t, "7", string(w.messages[0].Key), "key is the original row index")

	var fields map[string]any
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &fields))
	assert.Equal(t, float64(9), fields["month"])
	assert.Equal(t, "casual", fields["kind"])
}

func TestKafka_Submit_BrokerError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	k := &Kafka{writer: w}

	err := k.Submit(context.Background(), dataset.Record{Index: 0, Fields: map[string]string{}})

	var se *replay.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, replay.KindNetwork, se.Kind)
}

func TestKafka_Submit_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &fakeWriter{err: context.Canceled}
	k := &Kafka{writer: w}

	err := k.Submit(ctx, dataset.Record{Index: 0, Fields: map[string]string{}})

	var se *replay.SubmissionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, replay.KindTimeout, se.Kind)
}

func TestKafka_Close(t *testing.T) {
	w := &fakeWriter{}
	k := &Kafka{writer: w}

	require.NoError(t, k.Close())
	assert.True(t, w.closed)
}
