package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/service"
)

// GetApprovals lists approval requests for the caller's visible brands.
func (a *API) GetApprovals(c *gin.Context) {
	filter := service.ApprovalFilter{
		Status:  c.Query("status"),
		Page:    parseIntQuery(c, "page", 1),
		PerPage: parseIntQuery(c, "per_page", 20),
	}

	result, err := a.approvals.List(currentUser(c), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"approval_requests": result.Requests,
		"total":             result.Total,
		"total_pages":       result.TotalPages,
		"page":              result.Page,
		"per_page":          result.PerPage,
	})
}

type decisionRequest struct {
	Comment string `json:"comment"`
}

// ApproveRequest records an approval on a pending request.
func (a *API) ApproveRequest(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req decisionRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req, "Invalid decision payload.") {
		return
	}

	request, err := a.approvals.Approve(currentUser(c), id, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approval_request": request})
}

// RejectRequest records a changes-requested decision on a pending
// request. The comment is mandatory.
func (a *API) RejectRequest(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req decisionRequest
	if !bindJSON(c, &req, "Invalid decision payload.") {
		return
	}

	request, err := a.approvals.RequestChanges(currentUser(c), id, req.Comment)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approval_request": request})
}
