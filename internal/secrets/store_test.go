package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetDelete(t *testing.T) {
	s := &Store{Dir: t.TempDir()}

	_, err := s.Get("http://booth.local:8000")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put("http://Booth.local:8000/api", " tok-123 "))
	got, err := s.Get("https://booth.local:8000")
	require.NoError(t, err)
	require.Equal(t, "tok-123", got)

	raw, err := os.ReadFile(filepath.Join(s.Dir, fileName))
	require.NoError(t, err)
	require.False(t, strings.Contains(string(raw), "tok-123"), "token must not be stored in clear")

	info, err := os.Stat(filepath.Join(s.Dir, fileName))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, s.Delete("http://booth.local:8000"))
	_, err = s.Get("http://booth.local:8000")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestHostKeyRejectsBadURL(t *testing.T) {
	_, err := hostKey("")
	require.Error(t, err)
	_, err = hostKey("booth.local")
	require.Error(t, err)
}
