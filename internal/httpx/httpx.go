package httpx

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
)

// HTTPError carries status/headers/body for non-2xx responses.
// It lets callers decide how to surface the failure.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http error: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 900))
}

// Message extracts a human-readable message from the error body,
// honoring the declared content type. A structured JSON body yields its
// message field, plain text is used verbatim, and anything unparseable
// falls back to a generic status line.
func (e *HTTPError) Message() string {
	mediaType := ""
	if e.Header != nil {
		if mt, _, err := mime.ParseMediaType(e.Header.Get("Content-Type")); err == nil {
			mediaType = mt
		}
	}

	body := strings.TrimSpace(string(e.Body))

	switch {
	case mediaType == "application/json" || (mediaType == "" && strings.HasPrefix(body, "{")):
		var payload struct {
			Detail  string `json:"detail"`
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(e.Body, &payload); err == nil {
			for _, m := range []string{payload.Detail, payload.Error, payload.Message} {
				if m != "" {
					return m
				}
			}
		}
	case strings.HasPrefix(mediaType, "text/"):
		if body != "" {
			return snippet(e.Body, 300)
		}
	}

	if body != "" && mediaType == "" {
		return snippet(e.Body, 300)
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// Do executes one request and reads the full body, transparently
// decompressing gzip and brotli encodings. Non-2xx responses return the
// body wrapped in *HTTPError. No retries: callers surface failures to the
// operator, who retries by hand.
func Do(ctx context.Context, client *http.Client, req *http.Request) (*http.Response, []byte, error) {
	req = req.WithContext(ctx)
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, err
	}

	body, err := readAndClose(resp)
	if err != nil {
		return resp, nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, body, &HTTPError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       body,
		}
	}
	return resp, body, nil
}

// readAndClose always drains the body so the underlying TCP connection
// can be reused by http.Transport.
func readAndClose(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	var r io.Reader = resp.Body
	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		r = gz
	case "br":
		r = brotli.NewReader(resp.Body)
	}
	return io.ReadAll(r)
}
