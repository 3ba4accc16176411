package marketdata

import (
	"context"
	"fmt"
	"time"

	"SignalPipe/internal/domain/models"
	xhttp "SignalPipe/pkg/http"
)

// Provider fetches the latest quote for a symbol from one upstream source.
type Provider interface {
	Name() string
	Quote(ctx context.Context, symbol string) (*models.MarketSnapshot, error)
}

// HTTPProvider implements Provider against a JSON quote endpoint.
type HTTPProvider struct {
	name    string
	baseURL string
	apiKey  string
	client  *xhttp.Client
}

// NewHTTPProvider creates an HTTP-backed market data provider.
func NewHTTPProvider(name, baseURL, apiKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (p *HTTPProvider) Name() string { return p.name }

type quoteResponse struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
	Timestamp     int64   `json:"timestamp"`
}

// Quote fetches the latest quote. A zero or negative price from upstream is
// treated as an error, not returned as data.
func (p *HTTPProvider) Quote(ctx context.Context, symbol string) (*models.MarketSnapshot, error) {
	opts := &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         p.baseURL + "/quote",
		QueryParams: map[string]string{"symbol": symbol},
	}
	if p.apiKey != "" {
		opts.Headers = map[string]string{"X-API-Key": p.apiKey}
	}

	var qr quoteResponse
	if err := p.client.SendAndParse(ctx, opts, &qr); err != nil {
		return nil, fmt.Errorf("%s quote %s: %w", p.name, symbol, err)
	}
	if qr.Price <= 0 {
		return nil, fmt.Errorf("%s returned empty quote for %s", p.name, symbol)
	}

	ts := time.Now()
	if qr.Timestamp > 0 {
		ts = time.Unix(qr.Timestamp, 0)
	}
	return &models.MarketSnapshot{
		Symbol:        symbol,
		Price:         qr.Price,
		Change:        qr.Change,
		ChangePercent: qr.ChangePercent,
		Volume:        qr.Volume,
		Provider:      p.name,
		Timestamp:     ts,
	}, nil
}
