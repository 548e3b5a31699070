package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSMSSenderDelivers(t *testing.T) {
	var received smsRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		_ = json.NewEncoder(w).Encode(smsResponse{Delivered: true})
	}))
	defer server.Close()

	sender, err := NewSMSSender(SMSConfig{URL: server.URL, APIKey: "test-key", From: "Kodisha"})
	require.NoError(t, err)

	result, err := sender.Send(context.Background(), "+254700000000", "Your code is 123456")
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, "+254700000000", received.To)
	require.Equal(t, "Kodisha", received.From)
	require.Contains(t, received.Message, "123456")
}

func TestSMSSenderProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(smsResponse{Delivered: false, Error: "unreachable number"})
	}))
	defer server.Close()

	sender, err := NewSMSSender(SMSConfig{URL: server.URL})
	require.NoError(t, err)

	result, err := sender.Send(context.Background(), "+254700000001", "code")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, "unreachable number", result.ProviderError)
}

func TestSMSSenderGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	sender, err := NewSMSSender(SMSConfig{URL: server.URL})
	require.NoError(t, err)

	result, err := sender.Send(context.Background(), "+254700000002", "code")
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Contains(t, result.ProviderError, "502")
}

func TestSMSSenderRequiresURL(t *testing.T) {
	_, err := NewSMSSender(SMSConfig{})
	require.Error(t, err)
}

func TestLogSenderAlwaysSucceeds(t *testing.T) {
	result, err := NewLogSender().Send(context.Background(), "+254700000003", "code")
	require.NoError(t, err)
	require.True(t, result.Success)
}
