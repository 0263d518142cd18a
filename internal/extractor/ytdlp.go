package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
	"github.com/KeremKalyoncu/vidgate/internal/types"
)

const (
	// DefaultTimeout bounds a single metadata extraction
	DefaultTimeout = 20 * time.Second

	// formatSelector asks for the broadest format set so every quality variant
	// ends up in the formats array.
	formatSelector = "bestvideo+bestaudio/best"

	// waitDelay is how long Wait gives the process pipes after a kill, for
	// instance when a child of yt-dlp still holds stdout
	waitDelay = 500 * time.Millisecond
)

// Extractor fetches raw media metadata for a URL
type Extractor interface {
	Extract(ctx context.Context, url string) (*types.RawMediaInfo, error)
}

// Options configures the yt-dlp client
type Options struct {
	BinaryPath  string
	Timeout     time.Duration
	CookiesFile string
	UserAgent   string
	Proxy       string
}

// YtDlp runs yt-dlp as a subprocess for metadata-only extraction
type YtDlp struct {
	binaryPath  string
	timeout     time.Duration
	cookiesFile string
	userAgent   string
	proxy       string
	logger      *zap.Logger
}

// NewYtDlp creates a new yt-dlp client
func NewYtDlp(opts Options, logger *zap.Logger) *YtDlp {
	if opts.BinaryPath == "" {
		opts.BinaryPath = "yt-dlp"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &YtDlp{
		binaryPath:  opts.BinaryPath,
		timeout:     opts.Timeout,
		cookiesFile: opts.CookiesFile,
		userAgent:   opts.UserAgent,
		proxy:       opts.Proxy,
		logger:      logger,
	}
}

// Extract runs yt-dlp for url and decodes its info JSON. A run exceeding the
// configured timeout is killed and reported as ErrExtractionTimeout, at most
// waitDelay after the deadline; any other failure is ErrExtraction with
// yt-dlp's diagnostic output as the message.
func (y *YtDlp) Extract(ctx context.Context, url string) (*types.RawMediaInfo, error) {
	start := time.Now()

	output, err := y.execute(ctx, y.buildArgs(url))
	if err != nil {
		y.logger.Warn("yt-dlp extraction failed",
			zap.String("url", url),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}

	info, err := decodeOutput(output)
	if err != nil {
		return nil, errors.ErrExtraction.WithCause(err).WithMessage("Failed to parse yt-dlp output")
	}

	y.logger.Debug("yt-dlp extraction finished",
		zap.String("url", url),
		zap.Int("formats", len(info.Formats)),
		zap.Duration("elapsed", time.Since(start)),
	)

	return info, nil
}

// buildArgs constructs the yt-dlp command line for a metadata-only run
func (y *YtDlp) buildArgs(url string) []string {
	args := []string{
		"--dump-single-json", // Full info JSON on stdout
		"--no-warnings",
		"--skip-download", // Metadata only
		"--no-playlist",   // Single item only
		"-f", formatSelector,
	}

	if y.cookiesFile != "" {
		args = append(args, "--cookies", y.cookiesFile)
	}
	if y.userAgent != "" {
		args = append(args, "--user-agent", y.userAgent)
	}
	if y.proxy != "" {
		args = append(args, "--proxy", y.proxy)
	}

	// End option parsing so a URL can never be read as a flag.
	return append(args, "--", url)
}

// execute runs yt-dlp and returns stdout
func (y *YtDlp) execute(ctx context.Context, args []string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, y.binaryPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	if err := cmd.Run(); err != nil {
		switch {
		case stderrors.Is(ctx.Err(), context.DeadlineExceeded):
			return nil, errors.ErrExtractionTimeout.WithCause(err)
		case stderrors.Is(ctx.Err(), context.Canceled):
			return nil, errors.ErrExtraction.WithCause(ctx.Err()).WithMessage("Metadata fetch cancelled")
		}

		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, errors.ErrExtraction.WithCause(err).WithMessage(msg)
	}

	return stdout.Bytes(), nil
}

// decodeOutput parses yt-dlp's stdout. The whole output is tried first, then
// the last line that looks like a JSON object, in case stray lines leaked in.
func decodeOutput(output []byte) (*types.RawMediaInfo, error) {
	var info types.RawMediaInfo

	trimmed := bytes.TrimSpace(output)
	if err := json.Unmarshal(trimmed, &info); err == nil {
		return &info, nil
	}

	lines := bytes.Split(trimmed, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if !bytes.HasPrefix(line, []byte("{")) || !bytes.HasSuffix(line, []byte("}")) {
			continue
		}
		if err := json.Unmarshal(line, &info); err == nil {
			return &info, nil
		}
	}

	return nil, fmt.Errorf("no JSON object found in yt-dlp output")
}
