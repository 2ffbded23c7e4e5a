package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/service"
)

// GetCollections lists collections across the caller's visible brands.
func (a *API) GetCollections(c *gin.Context) {
	collections, err := a.collections.List(currentUser(c), uint(parseIntQuery(c, "brand_id", 0)))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}

// GetCollection returns one collection with its posts and a status
// summary.
func (a *API) GetCollection(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	collection, err := a.collections.Get(currentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"collection":     collection,
		"status_summary": collection.StatusSummary(),
		"fully_approved": collection.IsFullyApproved(),
	})
}

type collectionRequest struct {
	BrandID     uint   `json:"brand_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	PostIDs     []uint `json:"post_ids"`
}

// CreateCollection makes a new collection.
func (a *API) CreateCollection(c *gin.Context) {
	var req collectionRequest
	if !bindJSON(c, &req, "Invalid collection payload.") {
		return
	}
	if req.BrandID == 0 || req.Name == "" {
		respondError(c, http.StatusBadRequest, "A brand and name are required.")
		return
	}

	collection, err := a.collections.Create(currentUser(c), service.CollectionInput{
		BrandID:     req.BrandID,
		Name:        req.Name,
		Description: req.Description,
		PostIDs:     req.PostIDs,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"collection": collection})
}

// UpdateCollection edits a collection's name and description.
func (a *API) UpdateCollection(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req collectionRequest
	if !bindJSON(c, &req, "Invalid collection payload.") {
		return
	}

	collection, err := a.collections.Update(currentUser(c), id, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": collection})
}

// DeleteCollection removes a collection, detaching its posts.
func (a *API) DeleteCollection(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.collections.Delete(currentUser(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted."})
}

type collectionPostsRequest struct {
	PostIDs []uint `json:"post_ids" binding:"required,min=1"`
}

// AddCollectionPosts moves posts into the collection.
func (a *API) AddCollectionPosts(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req collectionPostsRequest
	if !bindJSON(c, &req, "Invalid post list.") {
		return
	}

	collection, err := a.collections.AddPosts(currentUser(c), id, req.PostIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": collection})
}

// RemoveCollectionPosts detaches posts from the collection.
func (a *API) RemoveCollectionPosts(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req collectionPostsRequest
	if !bindJSON(c, &req, "Invalid post list.") {
		return
	}

	collection, err := a.collections.RemovePosts(currentUser(c), id, req.PostIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collection": collection})
}

type generateLinkRequest struct {
	TTLDays int `json:"ttl_days"`
}

// GenerateApprovalLink mints the collection's shareable approval link.
func (a *API) GenerateApprovalLink(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req generateLinkRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "Invalid link payload.") {
		return
	}

	url, expiresAt, err := a.collections.GenerateApprovalLink(currentUser(c), id, req.TTLDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approval_url": url, "expires_at": expiresAt})
}

// SubmitCollection opens review cycles for every eligible post and
// returns the share link.
func (a *API) SubmitCollection(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	submitted, url, err := a.collections.SubmitForApproval(currentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"submitted": submitted, "approval_url": url})
}
