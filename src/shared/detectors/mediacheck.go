package detectors

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// MediaChecker calls the deepfake/AI-media backend, either with a public URL
// or with raw uploaded bytes.
type MediaChecker struct {
	client
}

func NewMediaChecker(baseURL string, timeout time.Duration) *MediaChecker {
	return &MediaChecker{client: newClient(baseURL, timeout)}
}

func mediaStub(msg, mediaURL string) map[string]any {
	return map[string]any{"error": msg, "chunks": []any{}, "media_url": mediaURL}
}

// CheckURL checks media reachable at mediaURL.
func (m *MediaChecker) CheckURL(ctx context.Context, mediaURL string) map[string]any {
	if !m.configured() {
		log.Printf("detectors: media skipped: checker URL not set")
		return mediaStub("MEDIA_CHECKING_URL not set", mediaURL)
	}
	log.Printf("detectors: media check url=%s", shorten(mediaURL))
	out, err := m.postJSON(ctx, "/v1/media/check", map[string]any{"media_url": mediaURL})
	if err != nil {
		log.Printf("detectors: media error: %v", err)
		return mediaStub(err.Error(), mediaURL)
	}
	log.Printf("detectors: media ok chunks=%d", chunkCount(out))
	return out
}

// CheckUpload posts file bytes as a multipart upload. The part carries the
// file's own content type; the backend uses it to detect the media type
// when the filename has no extension.
func (m *MediaChecker) CheckUpload(ctx context.Context, fileBytes []byte, filename, contentType string) map[string]any {
	if !m.configured() {
		log.Printf("detectors: media upload skipped: checker URL not set")
		return mediaStub("MEDIA_CHECKING_URL not set", filename)
	}
	log.Printf("detectors: media upload filename=%s size=%d", filename, len(fileBytes))

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		return mediaStub(err.Error(), filename)
	}
	if _, err := part.Write(fileBytes); err != nil {
		return mediaStub(err.Error(), filename)
	}
	if err := w.Close(); err != nil {
		return mediaStub(err.Error(), filename)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", m.baseURL+"/v1/media/check/upload", &buf)
	if err != nil {
		return mediaStub(err.Error(), filename)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	out, err := m.do(req)
	if err != nil {
		log.Printf("detectors: media upload error: %v", err)
		return mediaStub(err.Error(), filename)
	}
	log.Printf("detectors: media upload ok chunks=%d", chunkCount(out))
	return out
}

func chunkCount(out map[string]any) int {
	chunks, _ := out["chunks"].([]any)
	return len(chunks)
}

func shorten(s string) string {
	if len(s) > 80 {
		return s[:80] + "..."
	}
	return s
}
