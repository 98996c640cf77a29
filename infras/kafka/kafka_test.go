package kafka_test

import (
	"booknotify/config"
	"booknotify/infras/kafka"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingCreated struct {
	BookingID  string  `json:"bookingId"`
	TotalPrice float64 `json:"totalPrice"`
}

func TestMessage_ToKafkaMessage(t *testing.T) {
	msg := kafka.Message{
		Key:   "b-1",
		Value: bookingCreated{BookingID: "b-1", TotalPrice: 75},
	}

	kafkaMsg, err := msg.ToKafkaMessage()
	require.NoError(t, err)

	assert.Equal(t, []byte("b-1"), kafkaMsg.Key)
	assert.JSONEq(t, `{"bookingId":"b-1","totalPrice":75}`, string(kafkaMsg.Value))
}

func TestMessage_ToKafkaMessageInvalidValue(t *testing.T) {
	msg := kafka.Message{Key: "bad", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()
	assert.Error(t, err)
}

func TestNew_WithoutBrokersIsDisabled(t *testing.T) {
	cfg := &config.Config{}

	client := kafka.New(cfg)

	err := client.SendMessages(context.Background(), "booking.created", kafka.Message{Key: "b-1", Value: bookingCreated{BookingID: "b-1"}})
	assert.NoError(t, err)

	err = client.SendMessages(context.Background(), "booking.created", kafka.Message{Key: "b-2", Value: make(chan int)})
	assert.Error(t, err)

	assert.NoError(t, client.Close())
}
