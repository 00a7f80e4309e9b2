package platform

import (
    "context"
    "fmt"
    "io"
    "net/http"
    "time"
)

// Fetcher retrieves a raw asset by URL so rebuilds and exports can
// re-attach the original file.
type Fetcher interface {
    Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher downloads assets over HTTP(S) with a hard size cap.
type HTTPFetcher struct {
    Client   *http.Client
    MaxBytes int64
}

// NewHTTPFetcher returns a fetcher with a 20s timeout and a 25 MiB cap,
// the largest attachment the relay accepts.
func NewHTTPFetcher() *HTTPFetcher {
    return &HTTPFetcher{
        Client:   &http.Client{Timeout: 20 * time.Second},
        MaxBytes: 25 << 20,
    }
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return nil, fmt.Errorf("build request for %s: %w", url, err)
    }
    resp, err := f.Client.Do(req)
    if err != nil {
        return nil, fmt.Errorf("fetch %s: %w", url, err)
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK {
        return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
    }
    data, err := io.ReadAll(io.LimitReader(resp.Body, f.MaxBytes+1))
    if err != nil {
        return nil, fmt.Errorf("read %s: %w", url, err)
    }
    if int64(len(data)) > f.MaxBytes {
        return nil, fmt.Errorf("asset %s exceeds %d bytes", url, f.MaxBytes)
    }
    return data, nil
}
