/**
 * @description
 * HTTP client for Malaysia's OpenDOSM data.gov.my catalogue API.
 * Fetches the three PriceCatcher datasets (transactions, premises, items) with
 * bounded retries and exponential backoff. Pure transport: no caching, no
 * normalization.
 *
 * @dependencies
 * - net/http
 * - encoding/json
 * - backend/internal/config
 *
 * @notes
 * - A response missing the "data" envelope is an empty result, not an error;
 *   upstream schema drift must not crash the refresh pipeline.
 * - All transport failures surface as ErrUpstreamUnavailable after the retry
 *   budget is exhausted.
 */

package opendosm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/belanja-project/backend/internal/config"
	"github.com/belanja-project/backend/internal/logger"
)

const (
	DefaultTimeout    = 30 * time.Second
	DefaultMaxRetries = 3

	// DefaultTransactionFetchLimit bounds a full refresh pull
	DefaultTransactionFetchLimit = 5000
	// lookupFetchLimit is large enough to cover all premises/items
	lookupFetchLimit = 10000
)

// ErrUpstreamUnavailable is returned once every retry attempt has failed
var ErrUpstreamUnavailable = errors.New("opendosm upstream unavailable")

type Client struct {
	BaseURL           string
	CatalogueEndpoint string
	TransactionsID    string
	PremisesID        string
	ItemsID           string
	MaxRetries        int
	// RetryBaseDelay is doubled per attempt (1s, 2s, 4s ...). Tests shrink it.
	RetryBaseDelay time.Duration
	HTTPClient     *http.Client
}

func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.OpenDOSM.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	retries := cfg.OpenDOSM.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}
	return &Client{
		BaseURL:           cfg.OpenDOSM.BaseURL,
		CatalogueEndpoint: cfg.OpenDOSM.CatalogueEndpoint,
		TransactionsID:    cfg.OpenDOSM.TransactionsID,
		PremisesID:        cfg.OpenDOSM.PremisesID,
		ItemsID:           cfg.OpenDOSM.ItemsID,
		MaxRetries:        retries,
		RetryBaseDelay:    time.Second,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// fetch performs one catalogue request with the bounded retry loop.
// Timeout, transport and unexpected errors are distinguished for logging only;
// all three exhaust the same budget.
func (c *Client) fetch(ctx context.Context, datasetID string, limit int, filters url.Values) ([]byte, error) {
	u, err := url.Parse(c.BaseURL + c.CatalogueEndpoint)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("id", datasetID)
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	for key, values := range filters {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()

	var lastErr error
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
			case <-time.After(c.RetryBaseDelay << (attempt - 1)):
			}
		}

		body, err := c.doOnce(ctx, u.String())
		if err == nil {
			return body, nil
		}
		lastErr = err

		var netErr net.Error
		switch {
		case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
			logger.Error("OpenDOSM request timeout (attempt %d/%d): %s", attempt+1, c.MaxRetries, u.Path)
		case errors.As(err, &netErr):
			logger.Error("OpenDOSM transport error (attempt %d/%d): %v", attempt+1, c.MaxRetries, err)
		default:
			logger.Error("OpenDOSM unexpected error (attempt %d/%d): %v", attempt+1, c.MaxRetries, err)
		}

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, lastErr)
}

func (c *Client) doOnce(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("opendosm api error: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// decodeEnvelope extracts the data rows. A body without a "data" field
// decodes to an empty slice; a body that is not the envelope at all decodes
// to an empty slice with the status degraded, so the health surface does not
// report a drifted upstream as healthy.
func decodeEnvelope[T any](body []byte) ([]T, *DatasetMetadata) {
	var env envelope[T]
	meta := &DatasetMetadata{Status: "available", DataSource: "OpenDOSM PriceCatcher API"}
	if err := json.Unmarshal(body, &env); err != nil {
		logger.Error("OpenDOSM response decode failed, treating as empty: %v", err)
		meta.Status = "degraded"
		return nil, meta
	}
	meta.LastUpdated = env.LastUpdated
	meta.NextUpdate = env.NextUpdate
	meta.TotalRecords = env.Total
	return env.Data, meta
}

// GetTransactions fetches PriceCatcher transaction rows.
// dateFilter is optional (YYYY-MM-DD).
func (c *Client) GetTransactions(ctx context.Context, limit int, dateFilter string) ([]RawTransaction, error) {
	if limit <= 0 {
		limit = DefaultTransactionFetchLimit
	}
	filters := url.Values{}
	if dateFilter != "" {
		filters.Set("date", dateFilter)
	}

	body, err := c.fetch(ctx, c.TransactionsID, limit, filters)
	if err != nil {
		return nil, err
	}

	rows, _ := decodeEnvelope[RawTransaction](body)
	logger.Info("Fetched %d PriceCatcher transaction rows", len(rows))
	return rows, nil
}

// GetPremises fetches the premise lookup dataset
func (c *Client) GetPremises(ctx context.Context) ([]RawPremise, error) {
	body, err := c.fetch(ctx, c.PremisesID, lookupFetchLimit, nil)
	if err != nil {
		return nil, err
	}

	rows, _ := decodeEnvelope[RawPremise](body)
	logger.Info("Fetched %d PriceCatcher premise rows", len(rows))
	return rows, nil
}

// GetItems fetches the item lookup dataset
func (c *Client) GetItems(ctx context.Context) ([]RawItem, error) {
	body, err := c.fetch(ctx, c.ItemsID, lookupFetchLimit, nil)
	if err != nil {
		return nil, err
	}

	rows, _ := decodeEnvelope[RawItem](body)
	logger.Info("Fetched %d PriceCatcher item rows", len(rows))
	return rows, nil
}

// GetLatestDataInfo returns freshness metadata for the transactions dataset.
// Transport failure reports an unavailable status instead of an error so the
// health surface stays up while upstream is down.
func (c *Client) GetLatestDataInfo(ctx context.Context) *DatasetMetadata {
	body, err := c.fetch(ctx, c.TransactionsID, 1, nil)
	if err != nil {
		return &DatasetMetadata{
			Status:     "unavailable",
			DataSource: "OpenDOSM PriceCatcher API",
		}
	}

	_, meta := decodeEnvelope[RawTransaction](body)
	return meta
}

// SearchPricesByItem fetches recent transactions and filters them by item name
// substring (case-insensitive) and optional state. Used by the live comparison
// tier when the cache misses.
func (c *Client) SearchPricesByItem(ctx context.Context, itemName, state string, limit int) ([]RawTransaction, error) {
	if limit <= 0 {
		limit = 100
	}

	// Over-fetch so the client-side filter has enough rows to work with
	transactions, err := c.GetTransactions(ctx, limit*5, "")
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(itemName))
	matched := make([]RawTransaction, 0, limit)
	for _, tx := range transactions {
		if !strings.Contains(strings.ToLower(tx.DisplayItem()), needle) {
			continue
		}
		if state != "" && !strings.EqualFold(tx.State, state) {
			continue
		}
		matched = append(matched, tx)
		if len(matched) >= limit {
			break
		}
	}

	logger.Info("Found %d upstream price rows for %q", len(matched), itemName)
	return matched, nil
}
