package dictionary

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultAPIURL = "https://api.dictionaryapi.dev/api/v2/entries/en/"

// API looks words up in a dictionaryapi.dev compatible service: 200 means the
// word exists, 404 means it does not.
type API struct {
	client  *http.Client
	baseURL string
	timeout time.Duration
}

func NewAPI(baseURL string, timeout time.Duration) *API {
	if baseURL == "" {
		baseURL = DefaultAPIURL
	}

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &API{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		timeout: timeout,
	}
}

func (that *API) Lookup(ctx context.Context, word string) (bool, error) {
	if that.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, that.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, that.baseURL+url.PathEscape(word), nil)
	if err != nil {
		return false, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := that.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to query dictionary: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected dictionary status %d", resp.StatusCode)
	}
}
