package base_test

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xostack/xodify/base"
	"github.com/xostack/xodify/internal/mockdify"
)

type uploadedPart struct {
	FormName    string
	FileName    string
	ContentType string
	Content     string
}

func parseUpload(t *testing.T, req mockdify.Request) []uploadedPart {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	var parts []uploadedPart
	mr := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		content, err := io.ReadAll(p)
		require.NoError(t, err)
		parts = append(parts, uploadedPart{
			FormName:    p.FormName(),
			FileName:    p.FileName(),
			ContentType: p.Header.Get("Content-Type"),
			Content:     string(content),
		})
	}
	return parts
}

func TestUpload_MultipartBody(t *testing.T) {
	srv := mockdify.New(t)
	c := newTestClient(t, srv)

	resp, err := c.Upload(context.Background(), strings.NewReader("hello dify"), "u1", base.UploadOptions{Filename: "notes.txt"})
	require.NoError(t, err)
	drain(t, resp)

	got := srv.Last(t)
	assert.Equal(t, "POST", got.Method)
	assert.Equal(t, "/v1/files/upload", got.RequestURI)
	assert.Equal(t, []string{"Bearer test-api-key"}, got.Header.Values("Authorization"))
	assert.Equal(t, "Go-Dify-Uploader", got.Header.Get("User-Agent"))

	parts := parseUpload(t, got)
	require.Len(t, parts, 2)
	assert.Equal(t, uploadedPart{FormName: "file", FileName: "notes.txt", ContentType: "text/plain", Content: "hello dify"}, parts[0])
	assert.Equal(t, "user", parts[1].FormName)
	assert.Equal(t, "u1", parts[1].Content)
}

func TestUpload_DefaultFilename(t *testing.T) {
	srv := mockdify.New(t)
	c := newTestClient(t, srv)

	resp, err := c.Upload(context.Background(), strings.NewReader("x"), "u1", base.UploadOptions{})
	require.NoError(t, err)
	drain(t, resp)

	parts := parseUpload(t, srv.Last(t))
	require.NotEmpty(t, parts)
	assert.Equal(t, "localfile", parts[0].FileName)
}

// The MIME type argument is not sent: the file part stays text/plain.
func TestUpload_MIMETypeIsIgnored(t *testing.T) {
	srv := mockdify.New(t)
	c := newTestClient(t, srv)

	resp, err := c.Upload(context.Background(), strings.NewReader("{}"), "u1", base.UploadOptions{Filename: "a.png", MIMEType: "image/png"})
	require.NoError(t, err)
	drain(t, resp)

	parts := parseUpload(t, srv.Last(t))
	require.NotEmpty(t, parts)
	assert.Equal(t, "text/plain", parts[0].ContentType)
}

func TestUpload_UsesCurrentAPIKey(t *testing.T) {
	srv := mockdify.New(t)
	c := newTestClient(t, srv)
	c.UpdateAPIKey("new-key")

	resp, err := c.Upload(context.Background(), strings.NewReader("x"), "u1", base.UploadOptions{})
	require.NoError(t, err)
	drain(t, resp)

	assert.Equal(t, "Bearer new-key", srv.Last(t).Header.Get("Authorization"))
}

func TestUploadFile(t *testing.T) {
	srv := mockdify.New(t)
	c := newTestClient(t, srv)

	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte("quarterly report"), 0o600))

	resp, err := c.UploadFile(context.Background(), path, "u1", base.UploadOptions{Filename: "report.txt"})
	require.NoError(t, err)
	drain(t, resp)

	parts := parseUpload(t, srv.Last(t))
	require.NotEmpty(t, parts)
	assert.Equal(t, "quarterly report", parts[0].Content)
	assert.Equal(t, "report.txt", parts[0].FileName)
}

func TestUploadFile_NotFound(t *testing.T) {
	srv := mockdify.New(t)
	c := newTestClient(t, srv)

	resp, err := c.UploadFile(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), "u1", base.UploadOptions{})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, srv.Requests(), "no request may be sent for a missing file")
}
