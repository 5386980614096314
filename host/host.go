package host

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/ardnew/haksh/lang"
)

// Host implements [lang.Host] against the operating system and network.
// It is safe for concurrent use.
type Host struct {
	options
}

var _ lang.Host = (*Host)(nil)

// New returns a Host configured by opts.
func New(opts ...Option) *Host {
	return &Host{options: makeOptions(opts...)}
}

// Getwd returns the process working directory.
func (h *Host) Getwd() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", lang.ErrHost.Wrap(err)
	}

	return dir, nil
}

// Stdout returns the writer that receives println output.
func (h *Host) Stdout() io.Writer { return h.stdout }

// Get issues a GET request to url and returns the response body.
// A non-positive timeout leaves the request bound only by ctx.
func (h *Host) Get(
	ctx context.Context,
	url string,
	timeout time.Duration,
) (string, error) {
	return h.do(ctx, http.MethodGet, url, nil, timeout)
}

// PostJSON posts body to url with Content-Type application/json and returns
// the response body.
func (h *Host) PostJSON(
	ctx context.Context,
	url string,
	body []byte,
	timeout time.Duration,
) (string, error) {
	return h.do(ctx, http.MethodPost, url, body, timeout)
}

// do performs a request and reads the whole response. The status code is
// logged but not interpreted; error statuses still yield their body.
func (h *Host) do(
	ctx context.Context,
	method, url string,
	body []byte,
	timeout time.Duration,
) (string, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	attrs := []slog.Attr{
		slog.String("method", method),
		slog.String("url", url),
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return "", lang.ErrHost.Wrap(err).With(attrs...)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return "", lang.ErrHost.Wrap(err).With(attrs...)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", lang.ErrHost.Wrap(err).With(attrs...)
	}

	h.logger.DebugContext(ctx, "http response",
		append(attrs,
			slog.Int("status", resp.StatusCode),
			slog.Int("bytes", len(data)),
		)...)

	return string(data), nil
}
