package extractor

import (
	"encoding/base64"
	"os"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCookies = "# Netscape HTTP Cookie File\n.instagram.com\tTRUE\t/\tTRUE\t0\tsessionid\tabc"

func TestWriteCookiesFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"raw", sampleCookies},
		{"base64", base64.StdEncoding.EncodeToString([]byte(sampleCookies))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := WriteCookiesFile(tt.content)
			require.NoError(t, err)
			t.Cleanup(func() { os.Remove(path) })

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, sampleCookies+"\n", string(data))

			if runtime.GOOS != "windows" {
				st, err := os.Stat(path)
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
			}
		})
	}
}

func TestWriteCookiesFileRejectsEmpty(t *testing.T) {
	_, err := WriteCookiesFile("   ")
	assert.Error(t, err)
}
