package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAgency returns the caller's agency profile.
func (a *API) GetAgency(c *gin.Context) {
	agency, err := a.agencies.Get(currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agency": agency})
}

type updateAgencyRequest struct {
	Name     string         `json:"name"`
	Logo     string         `json:"logo"`
	Settings map[string]any `json:"settings"`
}

// UpdateAgency edits the agency profile. Admins only.
func (a *API) UpdateAgency(c *gin.Context) {
	var req updateAgencyRequest
	if !bindJSON(c, &req, "Invalid agency payload.") {
		return
	}

	agency, err := a.agencies.Update(currentUser(c), req.Name, req.Logo, req.Settings)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agency": agency})
}

// GetStorage reports the agency's storage usage against its quota.
func (a *API) GetStorage(c *gin.Context) {
	report, err := a.agencies.Storage(currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"storage": report})
}

// RecalculateStorage rebuilds the storage counter from the media table.
func (a *API) RecalculateStorage(c *gin.Context) {
	report, err := a.agencies.RecalculateStorage(currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"storage": report})
}

// GetDashboard returns headline counts for the caller's visible brands.
func (a *API) GetDashboard(c *gin.Context) {
	stats, err := a.agencies.Dashboard(currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
