package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/NaradaAI/narada-go/api/schemas"
)

// GeneratePresignedUpload asks the API for a one-shot upload target for the
// given attachment filename.
func (c *Client) GeneratePresignedUpload(ctx context.Context, filename string) (*schemas.PresignedPost, error) {
	var post schemas.PresignedPost
	body := map[string]string{"filename": filename}
	if _, err := c.doJSON(ctx, "POST", "/remote-dispatch/generate-file-upload-presigned-post", body, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// UploadFile uploads an attachment through the presigned-post flow and
// returns the FileRef to pass with a dispatch. The filename is reduced to its
// base name before being sent. Uploads expire server-side after one day.
func (c *Client) UploadFile(ctx context.Context, filename string, contents io.Reader) (*schemas.FileRef, error) {
	base := filepath.Base(filename)
	post, err := c.GeneratePresignedUpload(ctx, base)
	if err != nil {
		return nil, err
	}

	key, ok := post.Fields["key"].(string)
	if !ok || key == "" {
		return nil, fmt.Errorf("presigned post is missing an object key")
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for name, value := range post.Fields {
		if err := form.WriteField(name, fmt.Sprint(value)); err != nil {
			return nil, fmt.Errorf("writing form field %q: %w", name, err)
		}
	}
	part, err := form.CreateFormFile("file", base)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, contents); err != nil {
		return nil, fmt.Errorf("buffering %s: %w", base, err)
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	// The presigned URL embeds its own authorization; no API headers here.
	req, err := http.NewRequestWithContext(ctx, "POST", post.URL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &schemas.HTTPStatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        post.URL,
		}
	}
	return &schemas.FileRef{Key: key}, nil
}
