package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"prescription.jpg", "prescription.jpg"},
		{"../../etc/passwd", "passwd"},
		{`C:\scans\rx 1.png`, "rx_1.png"},
		{"..", "upload"},
		{"", "upload"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}

func TestLocalStorage_Upload(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, "http://localhost:3000/uploads/")

	url, err := s.Upload(context.Background(), "rx.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:3000/uploads/"))
	assert.True(t, strings.HasSuffix(url, "-rx.jpg"))

	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
}

func TestLocalStorage_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLocalStorage(t.TempDir(), "/uploads").Upload(ctx, "a.png", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
