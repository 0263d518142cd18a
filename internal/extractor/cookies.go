package extractor

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"
)

// netscapeHeader starts every cookies.txt file yt-dlp accepts
const netscapeHeader = "# Netscape HTTP Cookie File"

// WriteCookiesFile writes Netscape-format cookies to a private temp file and
// returns its path. content may be the raw file or its base64 encoding.
func WriteCookiesFile(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("cookies content is empty")
	}

	if !looksLikeCookies(content) {
		if decoded, err := base64.StdEncoding.DecodeString(content); err == nil {
			content = strings.TrimSpace(string(decoded))
		}
	}

	f, err := os.CreateTemp("", "cookies-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create cookies file: %w", err)
	}
	defer f.Close()

	if err := f.Chmod(0o600); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to restrict cookies file: %w", err)
	}

	if _, err := f.WriteString(content + "\n"); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write cookies file: %w", err)
	}

	return f.Name(), nil
}

// looksLikeCookies reports whether s is already a Netscape cookies file
func looksLikeCookies(s string) bool {
	return strings.HasPrefix(s, netscapeHeader) ||
		strings.HasPrefix(s, "# HTTP Cookie File") ||
		strings.Contains(s, "\t")
}
