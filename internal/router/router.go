package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/vernard/PostReviewer/internal/config"
	"github.com/vernard/PostReviewer/internal/handler"
)

// Setup configures the Gin engine and routes.
func Setup(api *handler.API, cfg *config.AppConfig) *gin.Engine {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.Default()

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("postreviewer_session", store))

	r.Static(cfg.UploadURLPath, cfg.UploadDir)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Public token surfaces: no session, opaque tokens only.
	r.GET("/review/:token", api.ShowReview)
	r.POST("/review/:token", api.SubmitReview)
	r.GET("/approve/:token", api.ShowCollectionApproval)
	r.POST("/approve/:token", api.SubmitCollectionReviews)
	r.GET("/invitations/:token", api.GetInvitation)
	r.POST("/invitations/:token/accept", api.AcceptInvitation)

	r.POST("/register", api.Register)
	r.POST("/login", api.Login)
	r.POST("/logout", api.Logout)

	auth := r.Group("/api")
	auth.Use(api.AuthRequired())
	{
		auth.GET("/me", api.Me)
		auth.GET("/dashboard", api.GetDashboard)

		auth.GET("/agency", api.GetAgency)
		auth.PUT("/agency", api.UpdateAgency)
		auth.GET("/agency/storage", api.GetStorage)
		auth.POST("/agency/storage/recalculate", api.RecalculateStorage)

		auth.GET("/team", api.GetTeam)
		auth.POST("/team/invitations", api.InviteMember)
		auth.DELETE("/team/invitations/:id", api.RevokeInvitation)
		auth.PUT("/team/members/:id", api.UpdateMember)
		auth.DELETE("/team/members/:id", api.RemoveMember)

		auth.GET("/brands", api.GetBrands)
		auth.POST("/brands", api.CreateBrand)
		auth.GET("/brands/:id", api.GetBrand)
		auth.PUT("/brands/:id", api.UpdateBrand)
		auth.DELETE("/brands/:id", api.DeleteBrand)
		auth.POST("/brands/:id/media", api.UploadMedia)

		auth.GET("/media", api.GetMediaLibrary)
		auth.GET("/media/:id", api.GetMedia)
		auth.DELETE("/media/:id", api.DeleteMedia)

		auth.GET("/posts", api.GetPosts)
		auth.POST("/posts", api.CreatePost)
		auth.GET("/posts/:id", api.GetPost)
		auth.PUT("/posts/:id", api.UpdatePost)
		auth.DELETE("/posts/:id", api.DeletePost)
		auth.POST("/posts/:id/duplicate", api.DuplicatePost)
		auth.POST("/posts/:id/submit", api.SubmitPost)
		auth.POST("/posts/:id/media", api.AttachMedia)
		auth.DELETE("/posts/:id/media/:mediaId", api.DetachMedia)
		auth.PUT("/posts/:id/media/order", api.ReorderMedia)
		auth.POST("/posts/:id/reviewers", api.InviteReviewers)
		auth.GET("/posts/:id/comments", api.GetComments)
		auth.POST("/posts/:id/comments", api.CreateComment)

		auth.PUT("/comments/:id", api.UpdateComment)
		auth.DELETE("/comments/:id", api.DeleteComment)
		auth.POST("/comments/:id/resolve", api.ResolveComment)

		auth.GET("/approvals", api.GetApprovals)
		auth.POST("/approvals/:id/approve", api.ApproveRequest)
		auth.POST("/approvals/:id/request-changes", api.RejectRequest)

		auth.GET("/collections", api.GetCollections)
		auth.POST("/collections", api.CreateCollection)
		auth.GET("/collections/:id", api.GetCollection)
		auth.PUT("/collections/:id", api.UpdateCollection)
		auth.DELETE("/collections/:id", api.DeleteCollection)
		auth.POST("/collections/:id/posts", api.AddCollectionPosts)
		auth.DELETE("/collections/:id/posts", api.RemoveCollectionPosts)
		auth.POST("/collections/:id/approval-link", api.GenerateApprovalLink)
		auth.POST("/collections/:id/submit", api.SubmitCollection)
	}

	return r
}
