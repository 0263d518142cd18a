// Package proxy relays remote media streams without buffering them.
package proxy

import (
	"bufio"
	"context"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
	"github.com/KeremKalyoncu/vidgate/internal/pool"
)

// DefaultContentType is used when the upstream does not declare one
const DefaultContentType = "video/mp4"

// Stream is an opened upstream media resource. The caller must close Body.
type Stream struct {
	ContentType string
	Body        io.ReadCloser
}

// Streamer opens upstream media streams
type Streamer struct {
	client *http.Client
	logger *zap.Logger
}

// NewStreamer creates a Streamer using client for upstream requests
func NewStreamer(client *http.Client, logger *zap.Logger) *Streamer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Streamer{client: client, logger: logger}
}

// Open starts fetching rawURL. Any failure before the response body is
// available, including a non-2xx status, is reported as ErrProxyFetch.
func (s *Streamer) Open(ctx context.Context, rawURL string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.ErrProxyFetch.WithCause(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Upstream stream request failed", zap.String("url", rawURL), zap.Error(err))
		return nil, errors.ErrProxyFetch.WithCause(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		s.logger.Warn("Upstream stream returned non-success status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, errors.ErrProxyFetch
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}

	return &Stream{
		ContentType: contentType,
		Body:        resp.Body,
	}, nil
}

// Copy relays src to dst one pooled chunk at a time, flushing after every
// chunk so bytes reach the client as they arrive. It returns the number of
// bytes written and the first read or write error other than io.EOF.
func Copy(dst *bufio.Writer, src io.Reader) (int64, error) {
	buffer := pool.StreamChunks.Get()
	defer pool.StreamChunks.Put(buffer)

	var written int64
	for {
		n, readErr := src.Read(buffer)
		if n > 0 {
			if _, err := dst.Write(buffer[:n]); err != nil {
				return written, err
			}
			if err := dst.Flush(); err != nil {
				return written, err
			}
			written += int64(n)
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}
	}
}
