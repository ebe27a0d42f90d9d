package adminController

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/swiftcart-api/middleware"
	"github.com/junaidrashid-git/swiftcart-api/services/catalog"
	"go.uber.org/zap"
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

type SaveBannersRequest struct {
	Banners []string `json:"banners"`
}

// GetBanners - List banners in display order
func GetBanners(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		banners, err := svc.Banners(c.Request.Context())
		if err != nil {
			log.Error("failed to get banners", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get banners"})
			return
		}
		c.JSON(http.StatusOK, banners)
	}
}

// SaveBanners - Replace the whole banner list
func SaveBanners(svc *catalog.Service, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SaveBannersRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Banners == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "banners is required"})
			return
		}
		if err := svc.SaveBanners(c.Request.Context(), middleware.Session(c), req.Banners); err != nil {
			respondBannerError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Banners saved", "banners": req.Banners})
	}
}

// UploadBanner - Save image under uploadDir and append its URL to the banner list
func UploadBanner(svc *catalog.Service, uploadDir, publicURL string, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
			return
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !imageExts[ext] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
			return
		}
		baseName := strings.TrimSuffix(filepath.Base(fileHeader.Filename), filepath.Ext(fileHeader.Filename))
		// Remove duplicate extensions like ".jpg.jpg"
		for imageExts[strings.ToLower(filepath.Ext(baseName))] {
			baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
		}
		baseName = strings.ReplaceAll(baseName, " ", "_")

		dir := filepath.Join(uploadDir, "banners")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Error("failed to create upload folder", zap.String("dir", dir), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create upload folder"})
			return
		}

		newFileName := fmt.Sprintf("%d_%s%s", time.Now().Unix(), baseName, ext)
		if err := c.SaveUploadedFile(fileHeader, filepath.Join(dir, newFileName)); err != nil {
			log.Error("failed to save banner file", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
			return
		}

		imageURL := publicURL + "/uploads/banners/" + newFileName
		banners, err := svc.AddBanner(c.Request.Context(), middleware.Session(c), imageURL)
		if err != nil {
			_ = os.Remove(filepath.Join(dir, newFileName))
			respondBannerError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Banner uploaded", "image": imageURL, "banners": banners})
	}
}

func respondBannerError(c *gin.Context, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, catalog.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
	case errors.Is(err, catalog.ErrInvalidBanner):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("failed to save banners", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save banners"})
	}
}
