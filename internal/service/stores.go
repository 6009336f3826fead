package service

import (
	"context"

	"github.com/xxxsen/propinspect/internal/model"
)

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
}

type InspectionStore interface {
	Create(ctx context.Context, insp *model.Inspection) error
	Update(ctx context.Context, insp *model.Inspection) error
	Delete(ctx context.Context, inspectorID, inspectionID string, mtime int64) error
	GetByID(ctx context.Context, inspectorID, inspectionID string) (*model.Inspection, error)
	List(ctx context.Context, inspectorID string, limit, offset uint) ([]model.Inspection, error)
	SetShareToken(ctx context.Context, inspectorID, inspectionID, token string, sharedAt int64) error
	DisableShare(ctx context.Context, inspectorID, inspectionID string) error
	GetByShareToken(ctx context.Context, token string) (*model.Inspection, error)
}

type ItemStore interface {
	ReplaceByInspection(ctx context.Context, inspectorID, inspectionID string, items []model.InspectionItem) error
	ListByInspection(ctx context.Context, inspectorID, inspectionID string) ([]model.InspectionItem, error)
}

type PhotoStore interface {
	Create(ctx context.Context, photo *model.Photo) error
	ListByInspection(ctx context.Context, inspectionID string) ([]model.Photo, error)
	GetByID(ctx context.Context, inspectionID, photoID string) (*model.Photo, error)
}
