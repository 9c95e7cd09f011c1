package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"
)

// Kind classifies a provider failure.
type Kind int

const (
	// KindTransient failures are retried with backoff.
	KindTransient Kind = iota + 1
	// KindAuth failures retire the credential and fail over immediately.
	KindAuth
	// KindFatal failures fail over to the next provider without retrying.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuth:
		return "auth"
	case KindFatal:
		return "fatal"
	}
	return "unknown"
}

var (
	// ErrRetryBudgetExhausted is returned when transient failures used up
	// the retry budget of a phrase.
	ErrRetryBudgetExhausted = errors.New("retry budget exhausted")
	// ErrNoProviders is returned when no provider is configured.
	ErrNoProviders = errors.New("no search providers configured")
)

// Error is a classified provider failure.
type Error struct {
	Provider   string
	Kind       Kind
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s failure", e.Provider, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransient reports whether err is a retryable provider failure.
func IsTransient(err error) bool { return kindOf(err) == KindTransient }

// IsAuth reports whether err should retire the credential used.
func IsAuth(err error) bool { return kindOf(err) == KindAuth }

// RetryAfter returns the provider-supplied retry hint carried by err.
func RetryAfter(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// statusError classifies a non-2xx response. 404 is not an error and is
// handled by callers before reaching here.
func statusError(provider string, resp *http.Response) error {
	e := &Error{Provider: provider, Status: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusRequestTimeout:
		e.Kind = KindTransient
		e.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusPaymentRequired, http.StatusForbidden:
		e.Kind = KindAuth
	default:
		e.Kind = KindFatal
	}
	e.Err = fmt.Errorf("unexpected status %s", resp.Status)
	return e
}

// transportError classifies a failure to complete the round trip.
// Cancellation of the caller's context is returned unchanged.
func transportError(ctx context.Context, provider string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	kind := KindFatal
	var ne net.Error
	switch {
	case errors.As(err, &ne) && ne.Timeout():
		kind = KindTransient
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		kind = KindTransient
	case strings.Contains(err.Error(), "connection reset"):
		kind = KindTransient
	}
	return &Error{Provider: provider, Kind: kind, Err: redact(err)}
}

// secretParams are query parameters that carry credentials.
var secretParams = []string{"key", "apikey", "api_key", "access_token", "token"}

// redact masks credentials in the request URL carried by a *url.Error so
// the error can be logged.
func redact(err error) error {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return err
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		return &url.Error{Op: ue.Op, URL: "<redacted>", Err: ue.Err}
	}
	q := u.Query()
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "REDACTED")
		}
	}
	u.RawQuery = q.Encode()
	u.User = nil
	return &url.Error{Op: ue.Op, URL: u.String(), Err: ue.Err}
}

// parseRetryAfter accepts delta-seconds or an HTTP date.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}
