package resthttp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caldera-ops/opsync/internal/core/domain"
)

func TestFetch_RawArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"ticketNo":"TCK-1","status":"Open"},{"ticketNo":"TCK-2"}]`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL})
	defer c.Close()

	rows, err := c.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TCK-1", rows[0]["ticketNo"])
}

func TestFetch_Envelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","data":[{"ticketNo":"TCK-1"}]}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL})
	defer c.Close()

	rows, err := c.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestFetch_ErrorEnvelopeUnder2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"error","message":"backend unavailable"}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL})
	defer c.Close()

	_, err := c.Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceError))
	assert.Contains(t, err.Error(), "backend unavailable")
}

func TestFetch_EmptyArrayIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL})
	defer c.Close()

	_, err := c.Fetch(context.Background())

	assert.True(t, errors.Is(err, domain.ErrEmptyDataset))
}

func TestFetch_EmptyEnvelopeDataIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","data":[]}`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL})
	defer c.Close()

	_, err := c.Fetch(context.Background())

	assert.True(t, errors.Is(err, domain.ErrEmptyDataset))
}

func TestFetch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`"just a string"`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL})
	defer c.Close()

	_, err := c.Fetch(context.Background())

	assert.True(t, errors.Is(err, domain.ErrMalformedResponse))
}

func TestFetch_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL})
	defer c.Close()

	_, err := c.Fetch(context.Background())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestFetch_BearerTokenSent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[{"ticketNo":"TCK-1"}]`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, BearerToken: "sekrit"})
	defer c.Close()

	_, err := c.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer sekrit", gotAuth)
}

func TestFetch_PostMethod(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		_, _ = w.Write([]byte(`[{"ticketNo":"TCK-1"}]`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL, Method: "post"})
	defer c.Close()

	_, err := c.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestFetch_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"ticketNo":"TCK-1"}]`))
	}))
	defer srv.Close()

	c := New(Config{Endpoint: srv.URL})
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Fetch(ctx)

	assert.Error(t, err)
}
