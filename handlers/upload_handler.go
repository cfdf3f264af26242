package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const postImagesDir = "posts"

// UploadHandler handles file uploads
type UploadHandler struct {
	Dir string
	Log *zap.Logger
}

// NewUploadHandler creates the image directory under root if it is missing.
func NewUploadHandler(root string, log *zap.Logger) *UploadHandler {
	dir := filepath.Join(root, postImagesDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Error("could not create upload directory", zap.String("dir", dir), zap.Error(err))
	}
	return &UploadHandler{Dir: dir, Log: log}
}

// UploadImage - POST /uploads/images
// Stores a listing image and returns the URL it is served from.
func (h *UploadHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Image file is required")
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return fiber.NewError(fiber.StatusBadRequest, "Only .jpg, .jpeg, and .png files are allowed")
	}

	filename := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(h.Dir, filename)); err != nil {
		return serviceError(c, h.Log, err)
	}

	// Static files are served from /uploads
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"url": "/uploads/" + postImagesDir + "/" + filename,
	})
}
