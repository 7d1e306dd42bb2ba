package bwclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basewire/basewire-go/pkg/basewire"
	"github.com/basewire/basewire-go/pkg/bwclient"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := bwclient.New(context.Background(), nil)
	assert.ErrorIs(t, err, basewire.ErrConfigRequired)

	_, err = bwclient.New(context.Background(), &basewire.Config{})
	assert.ErrorIs(t, err, basewire.ErrEndpointRequired)
}

func TestNew_NormalizesEndpoint(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	t.Cleanup(server.Close)

	client, err := bwclient.NewWithEndpoint(context.Background(), server.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, server.URL, client.BaseURL())
}

func TestNew_DefaultsToHTTPS(t *testing.T) {
	t.Parallel()

	client, err := bwclient.NewWithEndpoint(context.Background(), "example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", client.BaseURL())
}

func TestNewWithToken(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "preset-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"message":"API is healthy."}`))
	}))
	t.Cleanup(server.Close)

	client, err := bwclient.NewWithToken(context.Background(), server.URL, "preset-token")
	require.NoError(t, err)

	assert.Equal(t, "preset-token", client.Auth().Token())

	health, err := client.Health().Check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 200, health.Code)
}

func TestNewWithPassword(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/collections/staff/auth-with-password", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"token": "staff-token",
			"record": {"id": "stf1", "collectionName": "staff"}
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := bwclient.NewWithPassword(context.Background(), server.URL,
		"staff", "ann@example.com", "secret")
	require.NoError(t, err)

	assert.Equal(t, "staff-token", client.Auth().Token())
	assert.Equal(t, "stf1", client.Auth().Record().ID)
}

func TestNewWithPassword_AuthFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"message":"Failed to authenticate."}`))
	}))
	t.Cleanup(server.Close)

	_, err := bwclient.NewWithPassword(context.Background(), server.URL,
		"users", "ann@example.com", "wrong")
	require.Error(t, err)
	assert.True(t, basewire.IsBadRequest(err))
}
