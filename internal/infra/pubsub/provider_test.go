package pubsub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restore/config"
	"restore/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewPublisher_SelectsProvider(t *testing.T) {
	logger := discardLogger()

	publisher, err := newPublisher(nil, logger)
	require.NoError(t, err)
	assert.IsType(t, &noopPublisher{}, publisher)

	publisher, err = newPublisher(&config.PubSubConfig{Provider: config.PubSubProviderLocal, LocalEndpoint: "http://localhost:9"}, logger)
	require.NoError(t, err)
	assert.IsType(t, &localHTTPPublisher{}, publisher)

	_, err = newPublisher(&config.PubSubConfig{Provider: config.PubSubProviderLocal}, logger)
	assert.Error(t, err)

	_, err = newPublisher(&config.PubSubConfig{Provider: config.PubSubProviderGoogle, TopicID: "t"}, logger)
	assert.ErrorContains(t, err, "project ID")

	_, err = newPublisher(&config.PubSubConfig{Provider: "kafka"}, logger)
	assert.ErrorContains(t, err, "unknown pubsub provider")
}

func TestLocalHTTPPublisher_PushesEnvelope(t *testing.T) {
	var received PushMessage
	var requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, discardLogger())
	event := &service.AccountEvent{
		RequestID:  "req-1",
		Type:       service.AccountEventRegistered,
		UserID:     "user-1",
		UserName:   "alice",
		OccurredAt: time.Now().UTC(),
	}

	require.NoError(t, publisher.PublishAccountEvent(context.Background(), event))

	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, localPushSubscription, received.Subscription)
	assert.Equal(t, service.AccountEventRegistered, received.Message.Attributes["type"])
	assert.NotEmpty(t, received.Message.MessageID)

	data, err := base64.StdEncoding.DecodeString(received.Message.Data)
	require.NoError(t, err)

	var decoded service.AccountEvent
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "alice", decoded.UserName)
}

func TestLocalHTTPPublisher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, discardLogger())
	err := publisher.PublishAccountEvent(context.Background(), &service.AccountEvent{Type: service.AccountEventSignedIn})
	assert.ErrorContains(t, err, "502")
}
