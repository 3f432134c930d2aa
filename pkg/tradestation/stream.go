package tradestation

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-trading/tradestation-go/pkg/core"

	"go.opentelemetry.io/otel/attribute"
)

// Stream is a lazy, unbounded sequence of JSON objects read from a
// newline-delimited streaming response. It is not restartable: after an
// error (including a malformed line) the stream is dead, and reconnecting
// is the caller's responsibility.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	err     error
}

// Stream opens a streaming request. A non-200 initial response fails with
// a RequestError before anything is yielded.
func (c *Client) Stream(ctx context.Context, r Request) (*Stream, error) {
	req, err := c.newHTTPRequest(ctx, r)
	if err != nil {
		return nil, err
	}

	_, span := c.tracer.Start(ctx, "tradestation.Stream")
	span.SetAttributes(
		attribute.String("http.method", req.Method),
		attribute.String("url.path", req.URL.Path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.End()
		return nil, fmt.Errorf("stream request failed: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	span.End()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("failed to read stream error body: %w", readErr)
		}
		return nil, &core.RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{
		body:    resp.Body,
		scanner: scanner,
	}, nil
}

// Next returns the next decoded object. Blank lines are skipped. A line
// that is not valid JSON fails with a RequestError carrying the raw line
// and terminates the stream. io.EOF signals a clean end of stream.
func (s *Stream) Next() (json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			s.err = &core.RequestError{Body: string(line)}
			return nil, s.err
		}
		// The scanner reuses its buffer; hand out a copy.
		raw := make(json.RawMessage, len(line))
		copy(raw, line)
		return raw, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.err = err
		return nil, err
	}
	s.err = io.EOF
	return nil, io.EOF
}

// Close drops the underlying connection. There is no graceful-close
// handshake with the provider.
func (s *Stream) Close() error {
	return s.body.Close()
}
