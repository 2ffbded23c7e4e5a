package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// GetTeam lists the agency's members and open invitations.
func (a *API) GetTeam(c *gin.Context) {
	members, invitations, err := a.users.Team(currentUser(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members, "invitations": invitations})
}

type inviteMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

// InviteMember emails a join link for the agency.
func (a *API) InviteMember(c *gin.Context) {
	var req inviteMemberRequest
	if !bindJSON(c, &req, "Invalid invitation payload.") {
		return
	}

	invitation, err := a.users.Invite(currentUser(c), req.Email, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"invitation": invitation})
}

// RevokeInvitation withdraws an open invitation.
func (a *API) RevokeInvitation(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.users.RevokeInvitation(currentUser(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked."})
}

type updateMemberRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	BrandIDs []uint `json:"brand_ids"`
}

// UpdateMember changes a teammate's name, role or brand assignments.
func (a *API) UpdateMember(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req updateMemberRequest
	if !bindJSON(c, &req, "Invalid member payload.") {
		return
	}

	member, err := a.users.UpdateMember(currentUser(c), id, req.Name, req.Role, req.BrandIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member})
}

// RemoveMember deletes a teammate's account.
func (a *API) RemoveMember(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.users.RemoveMember(currentUser(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Member removed."})
}

// GetInvitation shows an open invitation to its recipient. Public.
func (a *API) GetInvitation(c *gin.Context) {
	invitation, err := a.users.FindInvitation(c.Param("token"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"agency_name": invitation.Agency.Name,
		"email":       invitation.Email,
		"role":        invitation.Role,
		"expires_at":  invitation.ExpiresAt,
	})
}

type acceptInvitationRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// AcceptInvitation turns an invitation into a member account and signs
// the new member in. Public.
func (a *API) AcceptInvitation(c *gin.Context) {
	var req acceptInvitationRequest
	if !bindJSON(c, &req, "Invalid acceptance payload.") {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Could not create the account.")
		return
	}

	user, err := a.users.AcceptInvitation(c.Param("token"), req.Name, string(hash))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if err := signIn(c, user); err != nil {
		respondError(c, http.StatusInternalServerError, "Could not start the session.")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}
