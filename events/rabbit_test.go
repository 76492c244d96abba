package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockChannel struct {
	mock.Mock
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(exchange, key, msg)
	return args.Error(0)
}

func (m *mockChannel) Close() error {
	return m.Called().Error(0)
}

func TestPublish_EncodesJSON(t *testing.T) {
	ch := new(mockChannel)
	ch.On("PublishWithContext", "conference.events", "registration.submitted", mock.Anything).Return(nil)
	r := newRabbit(ch, "conference.events")
	r.now = func() time.Time { return time.Unix(1700000000, 0) }

	err := r.Publish(context.Background(), "registration.submitted", map[string]interface{}{"team_name": "Null Pointers", "team_size": 3})

	assert.NoError(t, err)
	msg := ch.Calls[0].Arguments.Get(2).(amqp.Publishing)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, time.Unix(1700000000, 0), msg.Timestamp)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "Null Pointers", body["team_name"])
	assert.Equal(t, float64(3), body["team_size"])
}

func TestPublish_ChannelError(t *testing.T) {
	ch := new(mockChannel)
	ch.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed"))
	r := newRabbit(ch, "conference.events")

	err := r.Publish(context.Background(), "attendance.recorded", struct{}{})

	assert.EqualError(t, err, "channel closed")
}

func TestPublish_UnencodablePayload(t *testing.T) {
	ch := new(mockChannel)
	r := newRabbit(ch, "conference.events")

	err := r.Publish(context.Background(), "attendance.recorded", make(chan int))

	assert.Error(t, err)
	ch.AssertNotCalled(t, "PublishWithContext", mock.Anything, mock.Anything, mock.Anything)
}

func TestClose(t *testing.T) {
	ch := new(mockChannel)
	ch.On("Close").Return(nil)
	r := newRabbit(ch, "conference.events")

	r.Close()

	ch.AssertCalled(t, "Close")
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), "x", nil))
}
