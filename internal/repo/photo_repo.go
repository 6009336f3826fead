package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/propinspect/internal/model"
	"github.com/xxxsen/propinspect/internal/pkg/dbutil"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
)

var photoColumns = []string{"id", "inspection_id", "inspector_id", "item_id", "file_key", "content_type", "size", "ctime"}

type PhotoRepo struct {
	db *sql.DB
}

func NewPhotoRepo(db *sql.DB) *PhotoRepo {
	return &PhotoRepo{db: db}
}

func (r *PhotoRepo) Create(ctx context.Context, photo *model.Photo) error {
	data := map[string]interface{}{
		"id":            photo.ID,
		"inspection_id": photo.InspectionID,
		"inspector_id":  photo.InspectorID,
		"item_id":       photo.ItemID,
		"file_key":      photo.FileKey,
		"content_type":  photo.ContentType,
		"size":          photo.Size,
		"ctime":         photo.Ctime,
	}
	sqlStr, args, err := builder.BuildInsert("inspection_photos", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *PhotoRepo) ListByInspection(ctx context.Context, inspectionID string) ([]model.Photo, error) {
	where := map[string]interface{}{
		"inspection_id": inspectionID,
		"_orderby":      "ctime asc",
	}
	sqlStr, args, err := builder.BuildSelect("inspection_photos", where, photoColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	photos := make([]model.Photo, 0)
	for rows.Next() {
		var photo model.Photo
		if err := rows.Scan(&photo.ID, &photo.InspectionID, &photo.InspectorID, &photo.ItemID,
			&photo.FileKey, &photo.ContentType, &photo.Size, &photo.Ctime); err != nil {
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, rows.Err()
}

func (r *PhotoRepo) GetByID(ctx context.Context, inspectionID, photoID string) (*model.Photo, error) {
	where := map[string]interface{}{
		"id":            photoID,
		"inspection_id": inspectionID,
	}
	sqlStr, args, err := builder.BuildSelect("inspection_photos", where, photoColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErr.ErrNotFound
	}
	var photo model.Photo
	if err := rows.Scan(&photo.ID, &photo.InspectionID, &photo.InspectorID, &photo.ItemID,
		&photo.FileKey, &photo.ContentType, &photo.Size, &photo.Ctime); err != nil {
		return nil, err
	}
	return &photo, nil
}
