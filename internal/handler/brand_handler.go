package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/service"
)

type brandRequest struct {
	Name             string         `json:"name"`
	Description      string         `json:"description"`
	ColorScheme      map[string]any `json:"color_scheme"`
	DefaultReviewers []string       `json:"default_reviewers"`
	UserIDs          []uint         `json:"user_ids"`
}

func (r brandRequest) toInput() service.BrandInput {
	return service.BrandInput{
		Name:             r.Name,
		Description:      r.Description,
		ColorScheme:      r.ColorScheme,
		DefaultReviewers: r.DefaultReviewers,
		UserIDs:          r.UserIDs,
	}
}

// GetBrands lists the brands the caller can see.
func (a *API) GetBrands(c *gin.Context) {
	brands, err := a.brands.List(currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brands": brands})
}

// GetBrand returns one brand with its assigned users.
func (a *API) GetBrand(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	brand, err := a.brands.Get(currentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brand": brand})
}

// CreateBrand makes a new brand. Managers only.
func (a *API) CreateBrand(c *gin.Context) {
	var req brandRequest
	if !bindJSON(c, &req, "Invalid brand payload.") {
		return
	}
	if req.Name == "" {
		respondError(c, http.StatusBadRequest, "A brand name is required.")
		return
	}

	brand, err := a.brands.Create(currentUser(c), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"brand": brand})
}

// UpdateBrand edits a brand. Managers only.
func (a *API) UpdateBrand(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req brandRequest
	if !bindJSON(c, &req, "Invalid brand payload.") {
		return
	}

	brand, err := a.brands.Update(currentUser(c), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"brand": brand})
}

// DeleteBrand removes a brand and everything under it. Managers only.
func (a *API) DeleteBrand(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.brands.Delete(currentUser(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Brand deleted."})
}
