package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quoteResponse = `{
	"best_flights": [
		{
			"price": 349.00,
			"flights": [
				{
					"flight_number": "AA 100",
					"airplane": "Boeing 737",
					"extensions": ["Wi-Fi", "In-seat power"],
					"departure_airport": {"id": "JFK", "name": "John F. Kennedy International", "time": "2026-09-01 08:00"},
					"arrival_airport": {"id": "ORD", "name": "O'Hare International", "time": "2026-09-01 10:00"}
				},
				{
					"flight_number": "AA 200",
					"airplane": "Boeing 737",
					"extensions": [],
					"departure_airport": {"id": "ORD", "name": "O'Hare International", "time": "2026-09-01 11:00"},
					"arrival_airport": {"id": "LAX", "name": "Los Angeles International", "time": "2026-09-01 13:30"}
				}
			]
		}
	]
}`

func testClient(baseURL string, maxRetries int) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     "test-key",
		timeout:    2 * time.Second,
		maxRetries: maxRetries,
		backoff:    time.Millisecond,
		httpClient: &http.Client{},
	}
}

func testQuery() QuoteQuery {
	return QuoteQuery{DepartureID: "JFK", ArrivalID: "LAX", OutboundDate: "2026-09-01", Currency: "USD"}
}

func TestClient_Quote_Success(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"engine":        q.Get("engine"),
			"departure_id":  q.Get("departure_id"),
			"arrival_id":    q.Get("arrival_id"),
			"outbound_date": q.Get("outbound_date"),
			"currency":      q.Get("currency"),
			"hl":            q.Get("hl"),
			"type":          q.Get("type"),
			"api_key":       q.Get("api_key"),
		}
		w.Write([]byte(quoteResponse))
	}))
	defer srv.Close()

	client := testClient(srv.URL, 0)
	payload, err := client.Quote(context.Background(), testQuery())

	require.NoError(t, err)
	require.Len(t, payload.BestFlights, 1)

	itinerary := payload.BestFlights[0]
	assert.True(t, itinerary.Price.Equal(decimal.RequireFromString("349.00")), "got %s", itinerary.Price)
	assert.Len(t, itinerary.Flights, 2)
	assert.Equal(t, "AA 100", itinerary.Flights[0].FlightNumber)
	// Filled in from the final leg after decoding.
	assert.Equal(t, "Los Angeles International", itinerary.LastArrivalAirport)

	assert.Equal(t, map[string]string{
		"engine":        "google_flights",
		"departure_id":  "JFK",
		"arrival_id":    "LAX",
		"outbound_date": "2026-09-01",
		"currency":      "USD",
		"hl":            "en",
		"type":          "2",
		"api_key":       "test-key",
	}, gotQuery)
}

func TestClient_Quote_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, 3)
	payload, err := client.Quote(context.Background(), testQuery())

	assert.Nil(t, payload)
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusUnauthorized, gwErr.Status)
	assert.Contains(t, gwErr.Body, "invalid api key")
	assert.False(t, gwErr.Temporary())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Quote_ServerErrorRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(quoteResponse))
	}))
	defer srv.Close()

	client := testClient(srv.URL, 2)
	payload, err := client.Quote(context.Background(), testQuery())

	require.NoError(t, err)
	assert.Len(t, payload.BestFlights, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Quote_ServerErrorExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := testClient(srv.URL, 2)
	payload, err := client.Quote(context.Background(), testQuery())

	assert.Nil(t, payload)
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusServiceUnavailable, gwErr.Status)
	assert.True(t, gwErr.Temporary())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_Quote_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"best_flights": [`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, 0)
	payload, err := client.Quote(context.Background(), testQuery())

	assert.Nil(t, payload)
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusOK, gwErr.Status)
	assert.Contains(t, gwErr.Body, "malformed response")
}

func TestClient_Quote_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	client := testClient(srv.URL, 0)
	client.timeout = 50 * time.Millisecond

	payload, err := client.Quote(context.Background(), testQuery())

	assert.Nil(t, payload)
	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	// Transport failure, no HTTP status to report.
	assert.Equal(t, 0, gwErr.Status)
	assert.True(t, gwErr.Temporary())
}

func TestClient_Quote_CanceledContextStopsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := testClient(srv.URL, 5)
	client.backoff = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := client.Quote(ctx, testQuery())

	var gwErr *domain.GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClient_Quote_EmptyBestFlights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"best_flights": []}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, 0)
	payload, err := client.Quote(context.Background(), testQuery())

	require.NoError(t, err)
	assert.Empty(t, payload.BestFlights)
}
