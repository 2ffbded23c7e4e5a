package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/db"
	"github.com/vernard/PostReviewer/internal/service"
)

// Public endpoints are reached through opaque tokens instead of a
// session. They expose only what an external client needs to review:
// no agency internals, no reviewer identities, no discussion threads.

type publicMediaView struct {
	Type       string            `json:"type"`
	URL        string            `json:"url"`
	Thumbnails map[string]string `json:"thumbnails,omitempty"`
	Width      int               `json:"width,omitempty"`
	Height     int               `json:"height,omitempty"`
	Duration   int               `json:"duration,omitempty"`
	Position   int               `json:"position"`
}

type publicPostView struct {
	ID           uint              `json:"id"`
	Title        string            `json:"title"`
	Caption      string            `json:"caption"`
	Platforms    []string          `json:"platforms"`
	Status       string            `json:"status"`
	ScheduledFor any               `json:"scheduled_for,omitempty"`
	Media        []publicMediaView `json:"media"`
}

func (a *API) toPublicPostView(post *db.Post) publicPostView {
	view := publicPostView{
		ID:        post.ID,
		Title:     post.Title,
		Caption:   post.Caption,
		Platforms: post.Platforms,
		Status:    post.Status,
		Media:     make([]publicMediaView, 0, len(post.Attachments)),
	}
	if post.ScheduledFor != nil {
		view.ScheduledFor = post.ScheduledFor
	}
	for _, attachment := range post.Attachments {
		media := attachment.Media
		urls := make(map[string]string, len(media.Thumbnails))
		for name, path := range media.Thumbnails {
			urls[name] = a.uploadURL + "/" + path
		}
		view.Media = append(view.Media, publicMediaView{
			Type:       media.Type,
			URL:        a.uploadURL + "/" + media.Path,
			Thumbnails: urls,
			Width:      media.Width,
			Height:     media.Height,
			Duration:   media.Duration,
			Position:   attachment.Position,
		})
	}
	return view
}

// ShowReview presents a single post behind an invite token.
func (a *API) ShowReview(c *gin.Context) {
	invite, err := a.invites.Resolve(c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	post := invite.ApprovalRequest.Post
	c.JSON(http.StatusOK, gin.H{
		"post":       a.toPublicPostView(&post),
		"brand_name": post.Brand.Name,
		"expires_at": invite.ExpiresAt,
	})
}

type reviewDecisionRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approved changes_requested"`
	Comment  string `json:"comment"`
}

// SubmitReview records an external reviewer's decision on an invited
// post.
func (a *API) SubmitReview(c *gin.Context) {
	var req reviewDecisionRequest
	if !bindJSON(c, &req, "Invalid review payload.") {
		return
	}

	post, err := a.invites.Respond(c.Param("token"), req.Decision, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Thank you, your review has been recorded.",
		"status":  post.Status,
	})
}

// ShowCollectionApproval presents a collection behind a shared approval
// token.
func (a *API) ShowCollectionApproval(c *gin.Context) {
	collection, err := a.collections.ResolveToken(c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	posts := make([]publicPostView, 0, len(collection.Posts))
	for i := range collection.Posts {
		posts = append(posts, a.toPublicPostView(&collection.Posts[i]))
	}
	c.JSON(http.StatusOK, gin.H{
		"collection": gin.H{
			"name":        collection.Name,
			"description": collection.Description,
		},
		"posts":      posts,
		"expires_at": collection.ApprovalTokenExpiresAt,
	})
}

type bulkReviewRequest struct {
	Reviews []struct {
		PostID            uint   `json:"post_id" binding:"required"`
		Status            string `json:"status" binding:"required,oneof=approved changes_requested"`
		Feedback          string `json:"feedback"`
		CaptionSuggestion string `json:"caption_suggestion"`
	} `json:"reviews" binding:"required,min=1"`
}

// SubmitCollectionReviews applies a batch of decisions to the
// collection's posts in one shot.
func (a *API) SubmitCollectionReviews(c *gin.Context) {
	var req bulkReviewRequest
	if !bindJSON(c, &req, "Invalid review payload.") {
		return
	}

	reviews := make([]service.ReviewInput, 0, len(req.Reviews))
	for _, review := range req.Reviews {
		reviews = append(reviews, service.ReviewInput{
			PostID:            review.PostID,
			Status:            review.Status,
			Feedback:          review.Feedback,
			CaptionSuggestion: review.CaptionSuggestion,
		})
	}

	collection, err := a.collections.SubmitReviews(c.Param("token"), reviews)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        "Thank you, your reviews have been recorded.",
		"status_summary": collection.StatusSummary(),
	})
}
