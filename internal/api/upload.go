package api

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"go.uber.org/zap"
)

var errUndecodable = errors.New("failed to decode image")

var allowedExtensions = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// Upload stores a recipe image and returns its public URL. JPEG and PNG
// images wider than the configured width are scaled down.
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		badRequest(c, "no file uploaded")
		return
	}
	if file.Size > h.opts.MaxUploadBytes {
		badRequest(c, fmt.Sprintf("file exceeds %d bytes", h.opts.MaxUploadBytes))
		return
	}

	extension := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[extension] {
		badRequest(c, "invalid file type, only jpg, jpeg, png, gif and webp images are allowed")
		return
	}

	src, err := file.Open()
	if err != nil {
		badRequest(c, "failed to open upload")
		return
	}
	defer src.Close()

	imageData, err := io.ReadAll(io.LimitReader(src, h.opts.MaxUploadBytes+1))
	if err != nil {
		badRequest(c, "failed to read upload")
		return
	}
	if int64(len(imageData)) > h.opts.MaxUploadBytes {
		badRequest(c, fmt.Sprintf("file exceeds %d bytes", h.opts.MaxUploadBytes))
		return
	}

	name := uuid.NewString() + extension
	if err := saveImage(imageData, filepath.Join(h.opts.UploadDir, name), extension, h.opts.MaxImageWidth); err != nil {
		if errors.Is(err, errUndecodable) {
			badRequest(c, "file is not a valid image")
			return
		}
		h.log.Error("failed to save image", zap.Error(err), zap.String("request_id", requestID(c)))
		abort(c, http.StatusInternalServerError, CodeInternalError, "failed to save image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": "/uploads/" + name})
}

// saveImage writes imageData to path. JPEG and PNG are re-encoded, scaled to
// maxWidth when wider; other formats are written as received.
func saveImage(imageData []byte, path, extension string, maxWidth uint) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	switch extension {
	case ".jpeg", ".jpg", ".png":
	default:
		if err := os.WriteFile(path, imageData, 0644); err != nil {
			return fmt.Errorf("failed to write image file: %w", err)
		}
		return nil
	}

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return errUndecodable
	}
	if uint(img.Bounds().Dx()) > maxWidth {
		img = resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}

	if err := encodeImage(out, img, extension); err != nil {
		out.Close()
		os.Remove(path)
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to write image file: %w", err)
	}
	return nil
}

var encodeImage = func(w io.Writer, img image.Image, extension string) error {
	if extension == ".png" {
		return png.Encode(w, img)
	}
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
}
