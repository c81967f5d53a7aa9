package eventbus

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablemaster/tablemaster/pkg/logging"
)

type submitted struct {
	id string
}

type decided struct {
	id string
}

func TestPublisher_Publish_NoSubscribers(t *testing.T) {
	logBuffer := bytes.Buffer{}
	log := logrus.New()
	log.SetOutput(&logBuffer)
	log.SetLevel(logrus.WarnLevel)

	publisher := NewEventPublisher(log)
	publisher.Subscribe(func(e *submitted) {
		t.Error("should not be called")
	})
	publisher.Publish(&decided{id: "1"})

	assert.Contains(t, logBuffer.String(), "eventbus.Publish: no matching subscribers")
}

func TestPublisher_Subscribe(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.WarnLevel))
	var got string
	publisher.Subscribe(func(e *submitted) {
		got = e.id
	})
	publisher.Publish(&submitted{id: "cr-1"})
	assert.Equal(t, "cr-1", got)
	assert.Equal(t, 1, publisher.SubscribersCount())
}

func TestPublisher_PanicDoesNotStopOthers(t *testing.T) {
	publisher := NewEventPublisher(logging.ConsoleLogger(logrus.PanicLevel))
	calls := 0
	publisher.Subscribe(func(e *submitted) { panic("boom") })
	publisher.Subscribe(func(e *submitted) { calls++ })
	publisher.Publish(&submitted{})
	assert.Equal(t, 1, calls)
}

func TestPublisher_PublishE(t *testing.T) {
	publisher := NewEventPublisher(nil)
	require.ErrorIs(t, publisher.PublishE(&submitted{}), ErrNoSubscribers)

	boom := errors.New("boom")
	publisher.Subscribe(func(e *submitted) error { return boom })
	publisher.Subscribe(func(e *submitted) {})
	publisher.Subscribe(func(e *submitted) (int, error) { return 0, nil })

	err := publisher.PublishE(&submitted{})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, err, ErrInvalidHandlerReturn)
}

func TestPublisher_UnsubscribeAndClear(t *testing.T) {
	publisher := NewEventPublisher(nil)
	handler := func(e *submitted) {}
	publisher.Subscribe(handler)
	publisher.Subscribe(func(e *decided) {})
	publisher.Unsubscribe(handler)
	assert.Equal(t, 1, publisher.SubscribersCount())
	publisher.Clear()
	assert.Equal(t, 0, publisher.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	assert.True(t, MatchSignature(func(e *submitted) {}, []any{&submitted{}}))
	assert.False(t, MatchSignature(func(e *submitted) {}, []any{&decided{}}))
	assert.False(t, MatchSignature(func(e *submitted) {}, []any{}))
	assert.False(t, MatchSignature(func(e *submitted) {}, []any{&submitted{}, &submitted{}}))
	assert.True(t, MatchSignature(func(ctx context.Context) {}, []any{context.Background()}))
	assert.True(t, MatchSignature(func(e *submitted) {}, []any{nil}))
	assert.False(t, MatchSignature("not a func", []any{}))
}
