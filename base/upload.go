package base

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"go.uber.org/zap"
)

const (
	uploadPath        = "/files/upload"
	uploadUserAgent   = "Go-Dify-Uploader"
	uploadContentType = "text/plain"
	defaultFilename   = "localfile"
)

// UploadOptions controls how an uploaded file is described.
type UploadOptions struct {
	// Filename sent in the file part. Defaults to "localfile".
	Filename string

	// MIMEType is accepted for compatibility but not sent: the file part is
	// always labelled text/plain.
	MIMEType string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload sends the content of r to /files/upload as a multipart form with a
// "file" part and a "user" field.
func (c *Client) Upload(ctx context.Context, r io.Reader, user string, opts UploadOptions) (*http.Response, error) {
	filename := opts.Filename
	if filename == "" {
		filename = defaultFilename
	}
	if opts.MIMEType != "" && opts.MIMEType != uploadContentType {
		c.logger.Debug("ignoring upload MIME type, file part is sent as text/plain",
			zap.String("mime_type", opts.MIMEType))
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", uploadContentType)
	h.Set("Content-Transfer-Encoding", "binary")
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload file part: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := mw.WriteField("user", user); err != nil {
		return nil, fmt.Errorf("failed to write upload user field: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish upload body: %w", err)
	}

	apiKey, timeout := c.settings()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+uploadPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create dify upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("User-Agent", uploadUserAgent)

	c.logger.Debug("uploading file to dify",
		zap.String("filename", filename),
		zap.Int("size", buf.Len()),
	)

	return c.do(req, timeout)
}

// UploadFile opens path and uploads its content. A missing or unreadable file
// is reported before any request is made.
func (c *Client) UploadFile(ctx context.Context, path, user string, opts UploadOptions) (*http.Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return c.Upload(ctx, f, user, opts)
}
