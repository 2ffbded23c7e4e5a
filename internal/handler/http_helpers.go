package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/service"
)

// publicInvalidMessage is the only thing a public token surface says
// about a bad link, whatever actually went wrong.
const publicInvalidMessage = "Invalid or expired link."

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

// respondServiceError maps the service error taxonomy onto HTTP
// statuses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		respondError(c, http.StatusForbidden, "You do not have access to this resource.")
	case errors.Is(err, service.ErrInvalidState):
		respondError(c, http.StatusUnprocessableEntity, "This action is not allowed in the current state.")
	case errors.Is(err, service.ErrResourceMismatch):
		respondError(c, http.StatusUnprocessableEntity, "One or more referenced resources do not belong here.")
	case errors.Is(err, service.ErrCommentRequired):
		respondError(c, http.StatusUnprocessableEntity, "A comment is required when requesting changes.")
	case errors.Is(err, service.ErrNotFoundOrExpired):
		respondError(c, http.StatusNotFound, publicInvalidMessage)
	case errors.Is(err, service.ErrQuotaExceeded):
		respondError(c, http.StatusUnprocessableEntity, "Your agency's storage quota is full.")
	case errors.Is(err, service.ErrUnsupportedFileType):
		respondError(c, http.StatusUnprocessableEntity, "This file type is not supported.")
	case errors.Is(err, service.ErrNoEligiblePosts):
		respondError(c, http.StatusUnprocessableEntity, "No posts in this collection are ready for approval.")
	case errors.Is(err, service.ErrEmailTaken):
		respondError(c, http.StatusUnprocessableEntity, "That email address is already in use.")
	case errors.Is(err, service.ErrLastAdmin):
		respondError(c, http.StatusUnprocessableEntity, "An agency needs at least one admin.")
	case errors.Is(err, service.ErrInvalidInvitation):
		respondError(c, http.StatusNotFound, "Invalid or expired invitation.")
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrBrandNotFound),
		errors.Is(err, service.ErrMediaNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrCollectionNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrAgencyNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "Something went wrong.")
	}
}
