package extractor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KeremKalyoncu/vidgate/internal/errors"
)

// fakeYtDlp writes an executable shell script standing in for yt-dlp
func fakeYtDlp(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake yt-dlp needs a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "yt-dlp")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestExtractSuccess(t *testing.T) {
	bin := fakeYtDlp(t, `cat <<'EOF'
{"title":"Clip","duration":12.5,"formats":[{"vcodec":"h264","acodec":"aac","height":1080,"url":"u1"}]}
EOF`)

	y := NewYtDlp(Options{BinaryPath: bin}, nil)
	info, err := y.Extract(context.Background(), "https://example.com/v/1")
	require.NoError(t, err)

	require.NotNil(t, info.Title)
	assert.Equal(t, "Clip", *info.Title)
	require.Len(t, info.Formats, 1)
	assert.Equal(t, "u1", *info.Formats[0].URL)
}

func TestExtractToleratesLeadingNoise(t *testing.T) {
	bin := fakeYtDlp(t, `echo "[info] something"
echo '{"title":"Late"}'`)

	info, err := NewYtDlp(Options{BinaryPath: bin}, nil).Extract(context.Background(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Late", *info.Title)
}

func TestExtractFailureCarriesDiagnostic(t *testing.T) {
	bin := fakeYtDlp(t, `echo "ERROR: [generic] Unable to download webpage: HTTP Error 404: Not Found" >&2
exit 1`)

	_, err := NewYtDlp(Options{BinaryPath: bin}, nil).Extract(context.Background(), "https://example.com/missing")
	require.Error(t, err)

	assert.ErrorIs(t, err, errors.ErrExtraction)
	assert.Equal(t, "ERROR: [generic] Unable to download webpage: HTTP Error 404: Not Found", errors.GetErrorMessage(err))
}

func TestExtractUnparsableOutput(t *testing.T) {
	bin := fakeYtDlp(t, `echo "not json"`)

	_, err := NewYtDlp(Options{BinaryPath: bin}, nil).Extract(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, errors.ErrExtraction)
}

func TestExtractMissingBinary(t *testing.T) {
	y := NewYtDlp(Options{BinaryPath: filepath.Join(t.TempDir(), "nope")}, nil)

	_, err := y.Extract(context.Background(), "https://example.com")
	assert.ErrorIs(t, err, errors.ErrExtraction)
}

func TestExtractTimeout(t *testing.T) {
	bin := fakeYtDlp(t, `exec sleep 5`)

	y := NewYtDlp(Options{BinaryPath: bin, Timeout: 200 * time.Millisecond}, nil)

	start := time.Now()
	_, err := y.Extract(context.Background(), "https://example.com/slow")

	assert.ErrorIs(t, err, errors.ErrExtractionTimeout)
	assert.Equal(t, "Metadata fetch timed out", errors.GetErrorMessage(err))
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestExtractTimeoutWithLingeringChild(t *testing.T) {
	// The shell is killed but sleep keeps the output pipes open
	bin := fakeYtDlp(t, `sleep 5`)

	timeout := 200 * time.Millisecond
	y := NewYtDlp(Options{BinaryPath: bin, Timeout: timeout}, nil)

	start := time.Now()
	_, err := y.Extract(context.Background(), "https://example.com/slow")

	assert.ErrorIs(t, err, errors.ErrExtractionTimeout)
	assert.Less(t, time.Since(start), timeout+waitDelay+time.Second)
}

func TestBuildArgs(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		args := NewYtDlp(Options{}, nil).buildArgs("https://example.com/v")

		assert.Equal(t, []string{
			"--dump-single-json", "--no-warnings", "--skip-download", "--no-playlist",
			"-f", "bestvideo+bestaudio/best",
			"--", "https://example.com/v",
		}, args)
	})

	t.Run("cookies, user agent and proxy", func(t *testing.T) {
		y := NewYtDlp(Options{
			CookiesFile: "/tmp/cookies.txt",
			UserAgent:   "agent/1.0",
			Proxy:       "socks5://127.0.0.1:1080",
		}, nil)

		joined := strings.Join(y.buildArgs("https://example.com/v"), " ")
		assert.Contains(t, joined, "--cookies /tmp/cookies.txt")
		assert.Contains(t, joined, "--user-agent agent/1.0")
		assert.Contains(t, joined, "--proxy socks5://127.0.0.1:1080")
		assert.True(t, strings.HasSuffix(joined, "-- https://example.com/v"))
	})
}

func TestExtractPassesCookies(t *testing.T) {
	// Echo the argument following --cookies back as the title.
	bin := fakeYtDlp(t, `while [ "$#" -gt 0 ]; do
  if [ "$1" = "--cookies" ]; then printf '{"title":"%s"}' "$2"; exit 0; fi
  shift
done
echo "missing --cookies" >&2
exit 1`)

	y := NewYtDlp(Options{BinaryPath: bin, CookiesFile: "/run/secrets/cookies.txt"}, nil)
	info, err := y.Extract(context.Background(), "https://www.instagram.com/p/abc/")
	require.NoError(t, err)
	assert.Equal(t, "/run/secrets/cookies.txt", *info.Title)
}
