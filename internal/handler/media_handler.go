package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vernard/PostReviewer/internal/service"
)

const maxUploadSize = 512 << 20 // 512 MB

// UploadMedia stores an uploaded file under a brand's library.
func (a *API) UploadMedia(c *gin.Context) {
	brandID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "No file was uploaded.")
		return
	}
	if file.Size > maxUploadSize {
		respondError(c, http.StatusRequestEntityTooLarge, "The file is too large.")
		return
	}
	if _, err := service.ClassifyFilename(file.Filename); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := os.MkdirAll(a.uploadDir, 0755); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not prepare the upload directory.")
		return
	}

	ext := filepath.Ext(file.Filename)
	filename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(a.uploadDir, filename)); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not save the file.")
		return
	}

	media, err := a.media.Register(currentUser(c), service.UploadInput{
		BrandID:          brandID,
		OriginalFilename: file.Filename,
		Path:             filename,
		MimeType:         file.Header.Get("Content-Type"),
		Size:             file.Size,
	})
	if err != nil {
		os.Remove(filepath.Join(a.uploadDir, filename))
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"media": media,
		"url":   fmt.Sprintf("%s/%s", a.uploadURL, filename),
	})
}

// GetMediaLibrary lists media across the caller's visible brands.
func (a *API) GetMediaLibrary(c *gin.Context) {
	filter := service.MediaFilter{
		Type:    c.Query("type"),
		BrandID: uint(parseIntQuery(c, "brand_id", 0)),
	}

	media, err := a.media.List(currentUser(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": media})
}

// GetMedia returns one media item.
func (a *API) GetMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	media, err := a.media.Get(currentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"media": media})
}

// DeleteMedia removes a media item and refunds its storage.
func (a *API) DeleteMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.media.Delete(currentUser(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media deleted."})
}
