package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/campus-issues/issue-tracker/internal/core/domain"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

func multipartImage(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="crack.png"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return buf, w.FormDataContentType()
}

func TestUploadHandler_Upload(t *testing.T) {
	uploads := &stubUploadService{
		uploadFn: func(ctx context.Context, input ports.UploadInput) (*ports.UploadResult, error) {
			data, _ := io.ReadAll(input.Body)
			if string(data) != "png-bytes" || input.ContentType != "image/png" || input.Filename != "crack.png" {
				t.Fatalf("unexpected input %+v (%q)", input, data)
			}
			return &ports.UploadResult{URL: "https://images.example/campus-issues/abc", PublicID: "abc"}, nil
		},
	}
	h := NewUploadHandler(uploads)

	body, contentType := multipartImage(t, UploadFormField, "image/png", []byte("png-bytes"))
	c, rec := newContext(http.MethodPost, "/api/upload", body, student)
	c.Request().Header.Set(echo.HeaderContentType, contentType)

	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"public_id":"abc"`) {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestUploadHandler_Upload_MissingFile(t *testing.T) {
	uploads := &stubUploadService{
		uploadFn: func(ctx context.Context, input ports.UploadInput) (*ports.UploadResult, error) {
			if input.Body != nil {
				t.Fatal("expected empty input")
			}
			return nil, domain.NewError(domain.ErrValidation, "No image file provided")
		},
	}
	h := NewUploadHandler(uploads)

	body, contentType := multipartImage(t, "attachment", "image/png", []byte("x"))
	c, _ := newContext(http.MethodPost, "/api/upload", body, student)
	c.Request().Header.Set(echo.HeaderContentType, contentType)

	if err := h.Upload(c); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestUploadHandler_Delete(t *testing.T) {
	uploads := &stubUploadService{
		deleteFn: func(ctx context.Context, publicID string) error {
			if publicID != "abc" {
				return domain.NewError(domain.ErrExternalService, "Failed to delete image")
			}
			return nil
		},
	}
	h := NewUploadHandler(uploads)

	c, rec := newContext(http.MethodDelete, "/api/upload/abc", nil, student)
	c.SetParamNames("public_id")
	c.SetParamValues("abc")
	if err := h.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "Image deleted successfully") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	c, _ = newContext(http.MethodDelete, "/api/upload/zzz", nil, student)
	c.SetParamNames("public_id")
	c.SetParamValues("zzz")
	if err := h.Delete(c); !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}
}
