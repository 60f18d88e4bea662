package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/kap-news/internal/model"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w, topic: "admin-events", logger: zap.NewNop()}
	at := time.Date(2026, 1, 6, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), model.AdminEvent{
		Action:   "service.start",
		Target:   "news_pipeline",
		Username: "admin@kaphaber.com",
		Status:   200,
		At:       at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "news_pipeline", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "service.start", string(msg.Headers[0].Value))

	var decoded model.AdminEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "admin@kaphaber.com", decoded.Username)
}

func TestKafkaPublisher_PropagatesWriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{writer: w, topic: "admin-events", logger: zap.NewNop()}

	err := p.Publish(context.Background(), model.AdminEvent{Action: "assets.reindex"})
	assert.EqualError(t, err, "broker down")
}

func TestNewPublisher(t *testing.T) {
	assert.IsType(t, &NoopPublisher{}, NewPublisher(nil, "kap-news-api", "admin-events", zap.NewNop()))

	p := NewPublisher([]string{"localhost:9092"}, "kap-news-api", "admin-events", zap.NewNop())
	assert.IsType(t, &KafkaPublisher{}, p)
	assert.NoError(t, p.Close())
}
