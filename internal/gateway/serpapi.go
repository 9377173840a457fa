package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/KevinTan25/flightsApp/config"
	"github.com/KevinTan25/flightsApp/internal/domain"
	"github.com/shopspring/decimal"
)

// Quoter is the boundary to the external flight-quote service. Checkout and
// import both go through it, so a test double can stand in for the real API.
type Quoter interface {
	Quote(ctx context.Context, query QuoteQuery) (*QuotePayload, error)
}

// QuoteQuery identifies one quote request: a route, a calendar date and a
// currency code.
type QuoteQuery struct {
	DepartureID  string // origin airport code
	ArrivalID    string // destination airport code
	OutboundDate string // ISO 8601 calendar date, e.g. 2024-12-23
	Currency     string
}

// QuotePayload mirrors the SerpAPI google_flights response shape.
type QuotePayload struct {
	BestFlights []Itinerary `json:"best_flights"`
}

type Itinerary struct {
	Price   decimal.Decimal `json:"price"`
	Flights []Leg           `json:"flights"`
	// LastArrivalAirport is the final leg's arrival airport name, filled in
	// after decoding for display on the checkout page.
	LastArrivalAirport string `json:"last_arrival_airport,omitempty"`
}

type Leg struct {
	FlightNumber     string   `json:"flight_number"`
	Airplane         string   `json:"airplane"`
	Extensions       []string `json:"extensions"`
	DepartureAirport Endpoint `json:"departure_airport"`
	ArrivalAirport   Endpoint `json:"arrival_airport"`
}

type Endpoint struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Time string `json:"time"`
}

const maxErrorBody = 4 << 10

// Client calls the SerpAPI google_flights engine. Every call carries a
// bounded timeout; transport failures and 5xx responses are retried with a
// linear backoff, 4xx rejections are returned immediately.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	httpClient *http.Client
}

func NewClient(cfg config.GatewayConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		timeout:    cfg.Timeout(),
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.RetryBackoff(),
		httpClient: &http.Client{},
	}
}

func (c *Client) Quote(ctx context.Context, query QuoteQuery) (*QuotePayload, error) {
	attempts := c.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		payload, err := c.doQuote(ctx, query)
		if err == nil {
			return payload, nil
		}
		lastErr = err

		var gwErr *domain.GatewayError
		if !errors.As(err, &gwErr) || !gwErr.Temporary() {
			return nil, err
		}
		if i < attempts-1 {
			select {
			case <-time.After(time.Duration(i+1) * c.backoff):
			case <-ctx.Done():
				return nil, &domain.GatewayError{Body: ctx.Err().Error()}
			}
		}
	}
	return nil, lastErr
}

func (c *Client) doQuote(ctx context.Context, query QuoteQuery) (*QuotePayload, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("engine", "google_flights")
	params.Set("departure_id", query.DepartureID)
	params.Set("arrival_id", query.ArrivalID)
	params.Set("outbound_date", query.OutboundDate)
	params.Set("currency", query.Currency)
	params.Set("hl", "en")
	params.Set("type", "2")
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &domain.GatewayError{Body: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.GatewayError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &domain.GatewayError{Status: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.GatewayError{Status: resp.StatusCode, Body: truncate(string(body), maxErrorBody)}
	}

	var payload QuotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &domain.GatewayError{Status: resp.StatusCode, Body: "malformed response: " + err.Error()}
	}

	for i := range payload.BestFlights {
		if legs := payload.BestFlights[i].Flights; len(legs) > 0 {
			payload.BestFlights[i].LastArrivalAirport = legs[len(legs)-1].ArrivalAirport.Name
		}
	}
	return &payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ Quoter = (*Client)(nil)
