package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/service"
)

type postRequest struct {
	BrandID      uint       `json:"brand_id"`
	Title        string     `json:"title"`
	Caption      string     `json:"caption"`
	Platforms    []string   `json:"platforms"`
	ScheduledFor *time.Time `json:"scheduled_for"`
	CollectionID *uint      `json:"collection_id"`
	MediaIDs     []uint     `json:"media_ids"`
}

func (r postRequest) toInput() service.PostInput {
	return service.PostInput{
		BrandID:      r.BrandID,
		Title:        r.Title,
		Caption:      r.Caption,
		Platforms:    r.Platforms,
		ScheduledFor: r.ScheduledFor,
		CollectionID: r.CollectionID,
		MediaIDs:     r.MediaIDs,
	}
}

// GetPosts lists posts across the caller's visible brands.
func (a *API) GetPosts(c *gin.Context) {
	filter := service.PostFilter{
		BrandID: uint(parseIntQuery(c, "brand_id", 0)),
		Status:  c.Query("status"),
		Search:  c.Query("search"),
		Page:    parseIntQuery(c, "page", 1),
		PerPage: parseIntQuery(c, "per_page", 20),
	}

	result, err := a.posts.List(currentUser(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":       result.Posts,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
		"per_page":    result.PerPage,
	})
}

// GetPost returns one post with media, comments and review state.
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Get(currentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// CreatePost makes a new draft post.
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "Invalid post payload.") {
		return
	}
	if req.BrandID == 0 || req.Title == "" {
		respondError(c, http.StatusBadRequest, "A brand and title are required.")
		return
	}

	post, err := a.posts.Create(currentUser(c), req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// UpdatePost edits a post still open for editing.
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req postRequest
	if !bindJSON(c, &req, "Invalid post payload.") {
		return
	}

	post, err := a.posts.Update(currentUser(c), id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DeletePost soft-deletes a post.
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.posts.Delete(currentUser(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Post deleted."})
}

// DuplicatePost clones a post as a fresh draft.
func (a *API) DuplicatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Duplicate(currentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

type submitPostRequest struct {
	DueDate *time.Time `json:"due_date"`
}

// SubmitPost opens a review cycle for the post.
func (a *API) SubmitPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req submitPostRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "Invalid submission payload.") {
		return
	}

	request, err := a.approvals.Submit(currentUser(c), id, req.DueDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"approval_request": request})
}

type attachMediaRequest struct {
	MediaID uint `json:"media_id" binding:"required"`
}

// AttachMedia links a media item to the post.
func (a *API) AttachMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req attachMediaRequest
	if !bindJSON(c, &req, "Invalid attachment payload.") {
		return
	}

	post, err := a.posts.AttachMedia(currentUser(c), id, req.MediaID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// DetachMedia removes a media item from the post.
func (a *API) DetachMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	mediaID, err := parseUintParam(c, "mediaId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.posts.DetachMedia(currentUser(c), id, mediaID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Media detached."})
}

type reorderMediaRequest struct {
	MediaIDs []uint `json:"media_ids" binding:"required"`
}

// ReorderMedia rewrites the post's carousel order.
func (a *API) ReorderMedia(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req reorderMediaRequest
	if !bindJSON(c, &req, "Invalid order payload.") {
		return
	}

	if err := a.posts.ReorderMedia(currentUser(c), id, req.MediaIDs); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order saved."})
}

type inviteReviewersRequest struct {
	Emails  []string `json:"emails" binding:"required,min=1,dive,email"`
	TTLDays int      `json:"ttl_days"`
}

// InviteReviewers issues external review links for the post's pending
// request.
func (a *API) InviteReviewers(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req inviteReviewersRequest
	if !bindJSON(c, &req, "Invalid reviewer payload.") {
		return
	}

	invites, err := a.invites.InviteReviewers(currentUser(c), id, req.Emails, req.TTLDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invites": invites})
}
