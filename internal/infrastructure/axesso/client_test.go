package axesso

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/comparewise/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient("test-api-key", "test-host", baseURL, "https://www.amazon.com", 5*time.Second)
}

func TestNewClient(t *testing.T) {
	client := NewClient("test-api-key", "test-host", "https://api.example.com/", "https://www.amazon.com/", time.Second)

	assert.NotNil(t, client)
	assert.Equal(t, "test-api-key", client.apiKey)
	assert.Equal(t, "test-host", client.apiHost)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, "https://www.amazon.com", client.marketplaceURL)
	assert.NotNil(t, client.httpClient)
	assert.False(t, client.debug)
}

func TestSetDebug(t *testing.T) {
	client := newTestClient("https://api.example.com")

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestProductURL(t *testing.T) {
	client := newTestClient("https://api.example.com")

	assert.Equal(t, "https://www.amazon.com/dp/B000123456/", client.ProductURL("B000123456"))
}

func TestLookupProduct_Success(t *testing.T) {
	body := `{"productTitle":"Kettle","productDetails":[{"name":"Color","value":"Red"}]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/amz/amazon-lookup-product", r.URL.Path)
		assert.Equal(t, "https://www.amazon.com/dp/B000123456/", r.URL.Query().Get("url"))
		assert.Equal(t, "test-api-key", r.Header.Get("X-RapidAPI-Key"))
		assert.Equal(t, "test-host", r.Header.Get("X-RapidAPI-Host"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	record, err := client.LookupProduct(context.Background(), "B000123456")

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, domain.ProductID("B000123456"), record.ID)
	assert.JSONEq(t, body, string(record.Raw))
	require.Len(t, record.Details, 1)
	assert.Equal(t, "Color", record.Details[0].Name)
	assert.Equal(t, "Red", record.Details[0].Text())
}

func TestLookupProduct_NonSuccessIsSingleAttempt(t *testing.T) {
	statuses := []int{
		http.StatusNotFound,
		http.StatusUnauthorized,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(status)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			client.SetDebug(true)

			record, err := client.LookupProduct(context.Background(), "B000123456")

			assert.Nil(t, record)
			assert.ErrorIs(t, err, domain.ErrLookupFailed)
			assert.Equal(t, 1, attempts)
		})
	}
}

func TestLookupProduct_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("invalid json"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	record, err := client.LookupProduct(context.Background(), "B000123456")

	assert.Nil(t, record)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
	assert.NotErrorIs(t, err, domain.ErrLookupFailed)
}

func TestLookupProduct_EmptyBodyIsAbsent(t *testing.T) {
	for _, body := range []string{`null`, `{}`, `[]`} {
		t.Run(body, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)

			record, err := client.LookupProduct(context.Background(), "B000123456")

			assert.Nil(t, record)
			assert.ErrorIs(t, err, domain.ErrLookupFailed)
		})
	}
}

func TestLookupProduct_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url)

	record, err := client.LookupProduct(context.Background(), "B000123456")

	assert.Nil(t, record)
	assert.ErrorIs(t, err, domain.ErrLookupUnavailable)
}

func TestLookupProduct_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	record, err := client.LookupProduct(ctx, "B000123456")

	assert.Nil(t, record)
	assert.Error(t, err)
}

func TestLookupProduct_RequestCreationError(t *testing.T) {
	client := newTestClient("://invalid-url")

	record, err := client.LookupProduct(context.Background(), "B000123456")

	assert.Nil(t, record)
	assert.Error(t, err)
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("short content"))
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("reads exactly the limit", func(t *testing.T) {
		body, err := readLimitedBody(strings.NewReader(strings.Repeat("x", 100)), 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})

	t.Run("rejects body beyond limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for i := 0; i < 100; i++ {
				w.Write([]byte("0123456789"))
			}
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 100)
		assert.Nil(t, body)
		assert.ErrorIs(t, err, errResponseTooLarge)
	})
}
