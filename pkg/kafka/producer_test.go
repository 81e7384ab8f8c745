package kafka

import (
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducerRequiresBrokersAndTopic(t *testing.T) {
	_, err := NewProducer(WithTopic("t"))
	assert.Error(t, err)

	_, err = NewProducer(WithBrokers([]string{"localhost:9092"}))
	assert.Error(t, err)

	p, err := NewProducer(WithBrokers([]string{"localhost:9092"}), WithTopic("fxsignals.lifecycle"), WithCompression("zstd"))
	require.NoError(t, err)
	assert.Equal(t, "fxsignals.lifecycle", p.Topic())
	assert.Equal(t, "fxsignals.lifecycle", p.writer.Topic)
	assert.NoError(t, p.Close())
}

func TestToKafkaMessage(t *testing.T) {
	msg, err := toKafkaMessage(Message{
		Key:     []byte("sub-1"),
		Value:   map[string]string{"phase": "loading"},
		Headers: map[string]string{"event_type": "signal.loading"},
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("sub-1"), msg.Key)
	assert.JSONEq(t, `{"phase":"loading"}`, string(msg.Value))
	assert.Equal(t, []kafka.Header{{Key: "event_type", Value: []byte("signal.loading")}}, msg.Headers)

	_, err = toKafkaMessage(Message{Key: []byte("k")})
	assert.Error(t, err)
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Lz4, parseCompression("lz4"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}
