// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/shopii/internal/platform/notify"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

/*
TestKafkaPublisher_Publish verifies topic, key and JSON payload of the record.
*/
func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &mockWriter{}
	writer.On("WriteMessages", mock.Anything, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		var decoded notify.Message
		if err := json.Unmarshal(msgs[0].Value, &decoded); err != nil {
			return false
		}
		return msgs[0].Topic == "shopii.notifications" &&
			string(msgs[0].Key) == "buyer@shopii.test" &&
			decoded.Kind == notify.KindWelcome
	})).Return(nil).Once()

	publisher := notify.NewKafkaPublisherWithWriter(writer, "shopii.notifications")
	err := publisher.Publish(context.Background(), notify.Message{
		Kind:    notify.KindWelcome,
		To:      "buyer@shopii.test",
		Subject: "Welcome to Shopii",
	})

	require.NoError(t, err)
	writer.AssertExpectations(t)
}

/*
TestDeliver_SwallowsFailures never surfaces broker errors to the caller.
*/
func TestDeliver_SwallowsFailures(t *testing.T) {
	writer := &mockWriter{}
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()

	publisher := notify.NewKafkaPublisherWithWriter(writer, "shopii.notifications")

	assert.NotPanics(t, func() {
		notify.Deliver(context.Background(), publisher, notify.Message{Kind: notify.KindWelcome, To: "x@shopii.test"})
	})
	writer.AssertExpectations(t)
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &mockWriter{}
	writer.On("Close").Return(nil).Once()

	require.NoError(t, notify.NewKafkaPublisherWithWriter(writer, "t").Close())
	writer.AssertExpectations(t)
}
