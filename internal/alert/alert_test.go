package alert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyDeliversPayload(t *testing.T) {
	var got Notification
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(srv.URL, 2*time.Second)
	require.True(t, n.Enabled())

	err := n.Notify(context.Background(), Notification{
		Source:            "fraud-detection",
		TotalTransactions: 100,
		FraudCount:        3,
		FraudRate:         3.0,
		MaxProbability:    97.5,
		DetectedAt:        "2026-08-27T12:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, 3, got.FraudCount)
	assert.Equal(t, 97.5, got.MaxProbability)
}

func TestNotifyDisabledWhenNoURL(t *testing.T) {
	n := New("", time.Second)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), Notification{FraudCount: 5}))
}

func TestNotifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	n := New(srv.URL, time.Second)
	err := n.Notify(context.Background(), Notification{FraudCount: 1})
	assert.ErrorContains(t, err, "webhook returned 500")
}

func TestNotifyUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	n := New(srv.URL, time.Second)
	err := n.Notify(context.Background(), Notification{FraudCount: 1})
	assert.Error(t, err)
}
