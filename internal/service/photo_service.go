package service

import (
	"context"
	"io"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/propinspect/internal/filestore"
	"github.com/xxxsen/propinspect/internal/model"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
	"github.com/xxxsen/propinspect/internal/pkg/timeutil"
)

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

type PhotoService struct {
	inspections InspectionStore
	items       ItemStore
	photos      PhotoStore
	shares      *ShareService
	store       filestore.Store
	maxBytes    int64
}

func NewPhotoService(inspections InspectionStore, items ItemStore, photos PhotoStore, shares *ShareService, store filestore.Store, maxBytes int64) *PhotoService {
	return &PhotoService{
		inspections: inspections,
		items:       items,
		photos:      photos,
		shares:      shares,
		store:       store,
		maxBytes:    maxBytes,
	}
}

type PhotoUpload struct {
	ItemID      string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type PhotoContent struct {
	Photo *model.Photo
	Body  io.ReadCloser
}

func (s *PhotoService) Upload(ctx context.Context, inspectorID, inspectionID string, in PhotoUpload) (*model.Photo, error) {
	if inspectorID == "" {
		return nil, appErr.ErrUnauthorized
	}
	if _, err := s.inspections.GetByID(ctx, inspectorID, inspectionID); err != nil {
		return nil, err
	}
	contentType := strings.ToLower(strings.TrimSpace(in.ContentType))
	ext, ok := photoExtensions[contentType]
	if !ok || in.Body == nil || in.Size <= 0 {
		return nil, appErr.ErrInvalid
	}
	if s.maxBytes > 0 && in.Size > s.maxBytes {
		return nil, appErr.ErrTooLarge
	}
	if in.ItemID != "" {
		if err := s.ensureItem(ctx, inspectorID, inspectionID, in.ItemID); err != nil {
			return nil, err
		}
	}
	photo := &model.Photo{
		ID:           newID(),
		InspectionID: inspectionID,
		InspectorID:  inspectorID,
		ItemID:       in.ItemID,
		ContentType:  contentType,
		Size:         in.Size,
		Ctime:        timeutil.NowUnix(),
	}
	photo.FileKey = photoFileKey(inspectionID, photo.ID, ext)
	if err := s.store.Save(ctx, photo.FileKey, in.Body, in.Size, contentType); err != nil {
		return nil, err
	}
	if err := s.photos.Create(ctx, photo); err != nil {
		if delErr := s.store.Delete(ctx, photo.FileKey); delErr != nil {
			logutil.GetLogger(ctx).Error("remove orphaned photo blob failed",
				zap.String("file_key", photo.FileKey),
				zap.String("store", s.store.Type()),
				zap.Error(delErr),
			)
		}
		return nil, err
	}
	logutil.GetLogger(ctx).Info("photo uploaded",
		zap.String("inspection_id", inspectionID),
		zap.String("photo_id", photo.ID),
		zap.Int64("size", photo.Size),
		zap.String("store", s.store.Type()),
	)
	return photo, nil
}

func (s *PhotoService) List(ctx context.Context, inspectorID, inspectionID string) ([]model.Photo, error) {
	if inspectorID == "" {
		return nil, appErr.ErrUnauthorized
	}
	if _, err := s.inspections.GetByID(ctx, inspectorID, inspectionID); err != nil {
		return nil, err
	}
	return s.photos.ListByInspection(ctx, inspectionID)
}

func (s *PhotoService) Open(ctx context.Context, inspectorID, inspectionID, photoID string) (*PhotoContent, error) {
	if inspectorID == "" {
		return nil, appErr.ErrUnauthorized
	}
	if _, err := s.inspections.GetByID(ctx, inspectorID, inspectionID); err != nil {
		return nil, err
	}
	return s.open(ctx, inspectionID, photoID)
}

// OpenShared serves a photo through a share token, under the same rules as
// ShareService.Resolve.
func (s *PhotoService) OpenShared(ctx context.Context, token, photoID string) (*PhotoContent, error) {
	insp, err := s.shares.resolveInspection(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, insp.ID, photoID)
}

func (s *PhotoService) open(ctx context.Context, inspectionID, photoID string) (*PhotoContent, error) {
	photo, err := s.photos.GetByID(ctx, inspectionID, photoID)
	if err != nil {
		return nil, err
	}
	body, err := s.store.Open(ctx, photo.FileKey)
	if err != nil {
		return nil, err
	}
	return &PhotoContent{Photo: photo, Body: body}, nil
}

func (s *PhotoService) ensureItem(ctx context.Context, inspectorID, inspectionID, itemID string) error {
	items, err := s.items.ListByInspection(ctx, inspectorID, inspectionID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.ID == itemID {
			return nil
		}
	}
	return appErr.ErrInvalid
}

func photoFileKey(inspectionID, photoID, ext string) string {
	return inspectionID + "_" + photoID + ext
}
