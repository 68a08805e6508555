package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// JSONContentType is the media type applied to requests without one
	JSONContentType = "application/json"

	// RequestIDHeader carries a per-request correlation ID
	RequestIDHeader = "X-Request-ID"

	sniffLen = 512
)

type binaryBodyKey struct{}

// MarkBinary flags req as carrying a binary or multipart body so the
// normalizer leaves its Content-Type alone
func MarkBinary(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), binaryBodyKey{}, true))
}

// Normalizer is the request pipeline middleware in front of the game API.
// It defaults the Content-Type of outgoing requests to JSON and notifies the
// user once about every failed request. Responses and errors are returned
// unchanged; it never retries.
type Normalizer struct {
	base     http.RoundTripper
	notifier Notifier
	logger   *zap.Logger
}

// NewNormalizer wraps base. A nil base uses http.DefaultTransport and a nil
// notifier discards notifications.
func NewNormalizer(base http.RoundTripper, notifier Notifier, logger *zap.Logger) *Normalizer {
	if base == nil {
		base = http.DefaultTransport
	}
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{base: base, notifier: notifier, logger: logger}
}

// RoundTrip implements http.RoundTripper
func (n *Normalizer) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// RoundTrippers must not mutate the caller's request
	out := req.Clone(ctx)
	if out.Header.Get("Content-Type") == "" && !isBinaryBody(out) {
		out.Header.Set("Content-Type", JSONContentType)
	}
	if out.Header.Get(RequestIDHeader) == "" {
		out.Header.Set(RequestIDHeader, uuid.NewString())
	}

	resp, err := n.base.RoundTrip(out)
	if err != nil {
		n.logger.Warn("request failed",
			zap.String("method", out.Method),
			zap.String("url", out.URL.String()),
			zap.String("request_id", out.Header.Get(RequestIDHeader)),
			zap.Error(err))
		n.notifier.Notify(ctx, fallbackMessage(0, err.Error()))
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if followedRedirect(resp) {
			return resp, nil
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
		if readErr != nil {
			n.logger.Debug("failed to read error body", zap.Error(readErr))
		}

		message := ErrorMessage(resp.StatusCode, statusText(resp), body)
		n.logger.Warn("request returned error status",
			zap.String("method", out.Method),
			zap.String("url", out.URL.String()),
			zap.String("request_id", out.Header.Get(RequestIDHeader)),
			zap.Int("status", resp.StatusCode),
			zap.String("message", message))
		n.notifier.Notify(ctx, message)
	}

	return resp, nil
}

// followedRedirect reports a redirect hop http.Client follows by itself.
// The final response of the chain is what gets reported.
func followedRedirect(resp *http.Response) bool {
	switch resp.StatusCode {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return resp.Header.Get("Location") != ""
	}
	return false
}

// ErrorMessage composes the user-facing text for a failed response: the
// server's message field verbatim, or the status code and text
func ErrorMessage(status int, text string, body []byte) string {
	if msg := serverMessage(body); msg != "" {
		return msg
	}
	return fallbackMessage(status, text)
}

func fallbackMessage(status int, text string) string {
	return fmt.Sprintf("Error Code: %d\nMessage: %s", status, text)
}

// serverMessage extracts the "message" field of a JSON error body
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}

// statusText returns the reason phrase of resp, e.g. "Not Found"
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// isBinaryBody reports whether req carries a binary or multipart payload.
// Requests can be flagged with MarkBinary; otherwise replayable bodies are
// sniffed.
func isBinaryBody(req *http.Request) bool {
	if marked, _ := req.Context().Value(binaryBodyKey{}).(bool); marked {
		return true
	}
	if req.Body == nil || req.Body == http.NoBody || req.GetBody == nil {
		return false
	}

	rc, err := req.GetBody()
	if err != nil {
		return false
	}
	defer rc.Close()

	head := make([]byte, sniffLen)
	nRead, _ := io.ReadFull(rc, head)
	head = head[:nRead]
	if len(head) == 0 {
		return false
	}

	if isMultipart(head) {
		return true
	}
	return !strings.HasPrefix(http.DetectContentType(head), "text/")
}

// isMultipart recognizes a multipart/form-data preamble
func isMultipart(head []byte) bool {
	if !bytes.HasPrefix(head, []byte("--")) {
		return false
	}
	return bytes.Contains(bytes.ToLower(head), []byte("content-disposition: form-data"))
}
