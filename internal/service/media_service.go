package service

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/vernard/PostReviewer/internal/db"
	"gorm.io/gorm"

	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

var (
	ErrQuotaExceeded       = errors.New("agency storage quota exceeded")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

// thumbnailSizes maps a thumbnail name to its bounding-box edge in
// pixels. Thumbnails preserve aspect ratio.
var thumbnailSizes = map[string]int{
	"small":  150,
	"medium": 400,
	"large":  800,
}

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".webm": true,
}

// MediaService owns the upload library: recording files, probing their
// dimensions, generating thumbnails and keeping the agency's storage
// counter honest.
type MediaService struct {
	db        *gorm.DB
	uploadDir string
	processor VideoProcessor
}

// VideoProcessor extracts duration and a poster frame from an uploaded
// video file. Swapped for a stub in tests.
type VideoProcessor interface {
	Probe(path string) (duration float64, width, height int, err error)
	ExtractFrame(videoPath, framePath string) error
}

// NewMediaService creates a MediaService instance.
func NewMediaService(gdb *gorm.DB, uploadDir string, processor VideoProcessor) *MediaService {
	return &MediaService{db: gdb, uploadDir: uploadDir, processor: processor}
}

// ClassifyFilename returns the media type for a filename, or
// ErrUnsupportedFileType.
func ClassifyFilename(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case imageExtensions[ext]:
		return db.MediaTypeImage, nil
	case videoExtensions[ext]:
		return db.MediaTypeVideo, nil
	default:
		return "", ErrUnsupportedFileType
	}
}

// UploadInput describes a file already written under the upload
// directory.
type UploadInput struct {
	BrandID          uint
	OriginalFilename string
	Path             string // relative to the upload dir
	MimeType         string
	Size             int64
}

// Register records an uploaded file against a brand, charging it to the
// agency's storage quota. Images are probed and thumbnailed inline;
// videos are left in processing and picked up asynchronously.
func (s *MediaService) Register(user *db.User, input UploadInput) (*db.Media, error) {
	brand, err := loadBrand(s.db, input.BrandID)
	if err != nil {
		return nil, err
	}
	if !user.HasBrandAccess(brand) {
		return nil, ErrPermissionDenied
	}

	mediaType, err := ClassifyFilename(input.OriginalFilename)
	if err != nil {
		return nil, err
	}

	media := db.Media{
		BrandID:          input.BrandID,
		UserID:           user.ID,
		Type:             mediaType,
		OriginalFilename: input.OriginalFilename,
		Path:             input.Path,
		MimeType:         input.MimeType,
		Size:             input.Size,
		Status:           db.MediaStatusProcessing,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var agency db.Agency
		if err := tx.First(&agency, user.AgencyID).Error; err != nil {
			return err
		}
		if !agency.HasStorageAvailable(input.Size) {
			return ErrQuotaExceeded
		}
		if err := tx.Model(&agency).
			Update("storage_used", gorm.Expr("storage_used + ?", input.Size)).Error; err != nil {
			return err
		}
		return tx.Create(&media).Error
	})
	if err != nil {
		return nil, err
	}

	if media.IsImage() {
		if err := s.processImage(&media); err != nil {
			log.Printf("media %d: image processing failed: %v", media.ID, err)
			s.db.Model(&media).Update("status", db.MediaStatusFailed)
		}
	} else {
		go s.ProcessVideo(media.ID)
	}

	return &media, nil
}

func (s *MediaService) absPath(relative string) string {
	return filepath.Join(s.uploadDir, relative)
}

func (s *MediaService) processImage(media *db.Media) error {
	path := s.absPath(media.Path)

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	cfg, _, err := image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", media.OriginalFilename, err)
	}

	src, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return err
	}

	thumbnails := make(map[string]string, len(thumbnailSizes))
	base := strings.TrimSuffix(media.Path, filepath.Ext(media.Path))
	for name, edge := range thumbnailSizes {
		thumb := imaging.Fit(src, edge, edge, imaging.Lanczos)
		relative := fmt.Sprintf("%s_%s.jpg", base, name)
		if err := imaging.Save(thumb, s.absPath(relative), imaging.JPEGQuality(85)); err != nil {
			return err
		}
		thumbnails[name] = relative
	}

	media.Width = cfg.Width
	media.Height = cfg.Height
	media.Thumbnails = thumbnails
	media.Status = db.MediaStatusReady
	return s.db.Model(media).
		Select("Width", "Height", "Thumbnails", "Status").
		Updates(*media).Error
}

// ProcessVideo probes a video upload and extracts a poster frame,
// flipping the record to ready, or failed if the file cannot be read.
func (s *MediaService) ProcessVideo(mediaID uint) {
	var media db.Media
	if err := s.db.First(&media, mediaID).Error; err != nil {
		log.Printf("media %d: load for processing failed: %v", mediaID, err)
		return
	}
	if s.processor == nil {
		s.db.Model(&media).Update("status", db.MediaStatusFailed)
		return
	}

	path := s.absPath(media.Path)
	duration, width, height, err := s.processor.Probe(path)
	if err != nil {
		log.Printf("media %d: probe failed: %v", media.ID, err)
		s.db.Model(&media).Update("status", db.MediaStatusFailed)
		return
	}

	base := strings.TrimSuffix(media.Path, filepath.Ext(media.Path))
	posterRelative := base + "_poster.jpg"
	thumbnails := map[string]string{}
	if err := s.processor.ExtractFrame(path, s.absPath(posterRelative)); err != nil {
		log.Printf("media %d: poster frame failed: %v", media.ID, err)
	} else {
		thumbnails["poster"] = posterRelative
	}

	media.Width = width
	media.Height = height
	media.Duration = int(duration + 0.5)
	media.Thumbnails = thumbnails
	media.Status = db.MediaStatusReady
	if err := s.db.Model(&media).
		Select("Width", "Height", "Duration", "Thumbnails", "Status").
		Updates(media).Error; err != nil {
		log.Printf("media %d: save failed: %v", media.ID, err)
	}
}

// MediaFilter describes filters for listing media.
type MediaFilter struct {
	BrandID uint
	Type    string
}

// List returns media across the user's accessible brands, newest first.
func (s *MediaService) List(user *db.User, filter MediaFilter) ([]db.Media, error) {
	brandIDs, err := accessibleBrandIDs(s.db, user)
	if err != nil {
		return nil, err
	}

	query := s.db.Where("brand_id IN ?", brandIDs)
	if filter.BrandID != 0 {
		query = query.Where("brand_id = ?", filter.BrandID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var media []db.Media
	if err := query.Order("created_at desc").Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

// Get loads one media item, enforcing brand access.
func (s *MediaService) Get(user *db.User, id uint) (*db.Media, error) {
	var media db.Media
	if err := s.db.Preload("Brand").First(&media, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMediaNotFound
		}
		return nil, err
	}
	if !user.HasBrandAccess(&media.Brand) {
		return nil, ErrPermissionDenied
	}
	return &media, nil
}

// Delete removes a media item, its files on disk, and refunds its size
// to the agency's storage counter. Media still attached to posts cannot
// be deleted.
func (s *MediaService) Delete(user *db.User, id uint) error {
	media, err := s.Get(user, id)
	if err != nil {
		return err
	}

	var attached int64
	if err := s.db.Model(&db.PostMedia{}).Where("media_id = ?", media.ID).Count(&attached).Error; err != nil {
		return err
	}
	if attached > 0 {
		return ErrInvalidState
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(media).Error; err != nil {
			return err
		}
		return tx.Model(&db.Agency{}).
			Where("id = ?", user.AgencyID).
			Update("storage_used", gorm.Expr("MAX(storage_used - ?, 0)", media.Size)).Error
	})
	if err != nil {
		return err
	}

	// Disk cleanup is best effort; the record and quota are already
	// consistent.
	os.Remove(s.absPath(media.Path))
	for _, thumb := range media.Thumbnails {
		os.Remove(s.absPath(thumb))
	}
	return nil
}
