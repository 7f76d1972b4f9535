package connectivity

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Check performs a single GET against url bounded by timeout. Any transport
// failure or an HTTP status >= 400 is returned as an error. There are no retries.
func Check(ctx context.Context, client *http.Client, url string, timeout time.Duration) error {
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	// Some CDNs reject the default Go user agent outright.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("cannot reach %s: %w", url, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("cannot reach %s: %s", url, resp.Status)
	}
	return nil
}

// Reachable is Check reduced to a boolean; the cause is passed to onErr when set.
func Reachable(ctx context.Context, url string, timeout time.Duration, onErr func(error)) bool {
	if err := Check(ctx, nil, url, timeout); err != nil {
		if onErr != nil {
			onErr(err)
		}
		return false
	}
	return true
}
