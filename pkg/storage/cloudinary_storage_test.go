package storage

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCloudinary(t *testing.T, handler http.HandlerFunc) *CloudinaryStorage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewCloudinaryStorage("demo-cloud", "key", "secret", "priscriptions")
	require.NoError(t, err)
	s.cld.Upload.Config.API.UploadPrefix = srv.URL
	return s
}

func TestCloudinaryStorage_Upload(t *testing.T) {
	var fields map[string]string
	var content string

	s := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			fields[k] = v[0]
		}
		f, _, err := r.FormFile("file")
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		content = string(data)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"public_id":  fields["folder"] + "/" + fields["public_id"],
			"secure_url": "https://res.cloudinary.com/demo-cloud/image/upload/rx.jpg",
		})
	})

	url, err := s.Upload(context.Background(), "../rx scan.jpg", strings.NewReader("image-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo-cloud/image/upload/rx.jpg", url)

	assert.Equal(t, "image-bytes", content)
	assert.Equal(t, "priscriptions", fields["folder"])
	assert.True(t, strings.HasPrefix(fields["public_id"], "rx_scan-"), fields["public_id"])
	assert.NotContains(t, fields, "access_mode")
	assert.NotEmpty(t, fields["signature"])
}

func TestCloudinaryStorage_UploadError(t *testing.T) {
	s := newTestCloudinary(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid image file"}}`)
	})

	_, err := s.Upload(context.Background(), "rx.jpg", strings.NewReader("x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
}
