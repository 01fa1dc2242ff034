package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/campus-issues/issue-tracker/internal/api/metrics"
	"github.com/campus-issues/issue-tracker/internal/core/ports"
)

// UploadFormField is the multipart field carrying the image.
const UploadFormField = "image"

type UploadHandler struct {
	uploads ports.UploadService
}

func NewUploadHandler(uploads ports.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload handles POST /api/upload.
//
// @Summary      Upload an image
// @Description  Relays an image of at most 5MB to the image host and returns its public URL.
// @Tags         upload
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image  formData  file  true  "Image file"
// @Success      200    {object}  uploadResponse
// @Failure      400    {object}  messageResponse
// @Failure      413    {object}  messageResponse
// @Failure      500    {object}  messageResponse
// @Router       /api/upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	if _, err := requester(c); err != nil {
		return err
	}

	var input ports.UploadInput
	fh, err := c.FormFile(UploadFormField)
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// left empty: the service reports the missing file
	case err != nil:
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid multipart body").SetInternal(err)
	default:
		f, err := fh.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Could not read uploaded file").SetInternal(err)
		}
		defer f.Close()
		input = ports.UploadInput{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
			Size:        fh.Size,
			Body:        f,
		}
	}

	res, err := h.uploads.Upload(c.Request().Context(), input)
	if err != nil {
		if input.Body != nil {
			metrics.ImageRelayTotal.WithLabelValues("upload", "error").Inc()
		}
		return err
	}

	metrics.ImageRelayTotal.WithLabelValues("upload", "ok").Inc()
	metrics.ImageUploadBytes.Observe(float64(input.Size))
	return c.JSON(http.StatusOK, uploadResponse{URL: res.URL, PublicID: res.PublicID})
}

// Delete handles DELETE /api/upload/:public_id.
//
// @Summary      Delete an uploaded image
// @Tags         upload
// @Produce      json
// @Security     BearerAuth
// @Param        public_id  path      string  true  "Public id returned by the upload"
// @Success      200        {object}  messageResponse
// @Failure      400        {object}  messageResponse
// @Failure      500        {object}  messageResponse
// @Router       /api/upload/{public_id} [delete]
func (h *UploadHandler) Delete(c echo.Context) error {
	if _, err := requester(c); err != nil {
		return err
	}

	if err := h.uploads.Delete(c.Request().Context(), c.Param("public_id")); err != nil {
		metrics.ImageRelayTotal.WithLabelValues("delete", "error").Inc()
		return err
	}

	metrics.ImageRelayTotal.WithLabelValues("delete", "ok").Inc()
	return c.JSON(http.StatusOK, messageResponse{Message: "Image deleted successfully"})
}
