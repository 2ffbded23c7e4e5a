package handler

import (
	"github.com/vernard/PostReviewer/internal/config"
	"github.com/vernard/PostReviewer/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db          *gorm.DB
	agencies    *service.AgencyService
	users       *service.UserService
	brands      *service.BrandService
	media       *service.MediaService
	posts       *service.PostService
	comments    *service.CommentService
	approvals   *service.ApprovalService
	invites     *service.InviteService
	collections *service.CollectionService
	uploadDir   string
	uploadURL   string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg *config.AppConfig, notifier service.Notifier, processor service.VideoProcessor) *API {
	return &API{
		db:          gdb,
		agencies:    service.NewAgencyService(gdb),
		users:       service.NewUserService(gdb, notifier, cfg.AppBaseURL),
		brands:      service.NewBrandService(gdb),
		media:       service.NewMediaService(gdb, cfg.UploadDir, processor),
		posts:       service.NewPostService(gdb),
		comments:    service.NewCommentService(gdb),
		approvals:   service.NewApprovalService(gdb, notifier),
		invites:     service.NewInviteService(gdb, notifier, cfg.AppBaseURL),
		collections: service.NewCollectionService(gdb, notifier, cfg.AppBaseURL),
		uploadDir:   cfg.UploadDir,
		uploadURL:   cfg.UploadURLPath,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
