package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "originality/1.0 (+https://github.com/hyperifyio/originality)"
	maxResponseBytes = 4 << 20
)

// get issues a GET and returns the body of a 2xx response. A 404 yields
// found=false with no error.
func get(ctx context.Context, hc *http.Client, provider, rawURL, userAgent string, header http.Header) (body []byte, found bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, &Error{Provider: provider, Kind: KindFatal, Err: err}
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, false, transportError(ctx, provider, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, false, statusError(provider, resp)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, false, transportError(ctx, provider, err)
	}
	return b, true, nil
}

func getJSON(ctx context.Context, hc *http.Client, provider, rawURL, userAgent string, header http.Header, out any) (bool, error) {
	b, found, err := get(ctx, hc, provider, rawURL, userAgent, header)
	if err != nil || !found {
		return found, err
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, &Error{Provider: provider, Kind: KindFatal, Err: fmt.Errorf("decode: %w", err)}
	}
	return true, nil
}

func getXML(ctx context.Context, hc *http.Client, provider, rawURL, userAgent string, out any) (bool, error) {
	b, found, err := get(ctx, hc, provider, rawURL, userAgent, nil)
	if err != nil || !found {
		return found, err
	}
	if err := xml.Unmarshal(b, out); err != nil {
		return false, &Error{Provider: provider, Kind: KindFatal, Err: fmt.Errorf("decode: %w", err)}
	}
	return true, nil
}
