package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/db"
)

// commentView pairs a stored comment with its rendered body.
type commentView struct {
	db.Comment
	BodyHTML string        `json:"body_html"`
	Replies  []commentView `json:"replies"`
}

func toCommentView(comment db.Comment) commentView {
	view := commentView{
		Comment:  comment,
		BodyHTML: renderMarkdown(comment.Body),
		Replies:  make([]commentView, 0, len(comment.Replies)),
	}
	for _, reply := range comment.Replies {
		view.Replies = append(view.Replies, toCommentView(reply))
	}
	view.Comment.Replies = nil
	return view
}

// GetComments lists a post's discussion thread.
func (a *API) GetComments(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := a.comments.List(currentUser(c), postID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]commentView, 0, len(comments))
	for _, comment := range comments {
		views = append(views, toCommentView(comment))
	}
	c.JSON(http.StatusOK, gin.H{"comments": views})
}

type commentRequest struct {
	Body       string `json:"body" binding:"required"`
	ParentID   *uint  `json:"parent_id"`
	Attachment string `json:"attachment"`
}

// CreateComment adds a comment or reply to a post.
func (a *API) CreateComment(c *gin.Context) {
	postID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req commentRequest
	if !bindJSON(c, &req, "Invalid comment payload.") {
		return
	}

	comment, err := a.comments.Create(currentUser(c), postID, req.Body, req.ParentID, req.Attachment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": toCommentView(*comment)})
}

type updateCommentRequest struct {
	Body string `json:"body" binding:"required"`
}

// UpdateComment edits a comment's body. Authors only.
func (a *API) UpdateComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req updateCommentRequest
	if !bindJSON(c, &req, "Invalid comment payload.") {
		return
	}

	comment, err := a.comments.Update(currentUser(c), id, req.Body)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": toCommentView(*comment)})
}

// DeleteComment removes a comment and its replies.
func (a *API) DeleteComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.comments.Delete(currentUser(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted."})
}

// ResolveComment marks a comment thread as addressed.
func (a *API) ResolveComment(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comment, err := a.comments.Resolve(currentUser(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": toCommentView(*comment)})
}
