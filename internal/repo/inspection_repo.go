package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/propinspect/internal/model"
	"github.com/xxxsen/propinspect/internal/pkg/dbutil"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
)

const (
	InspectionStateNormal  = 1
	InspectionStateDeleted = 2
)

var inspectionColumns = []string{
	"id", "inspector_id", "property_name", "property_address", "inspection_date", "status", "notes",
	"share_token", "share_enabled", "shared_at", "state", "ctime", "mtime",
}

type InspectionRepo struct {
	db *sql.DB
}

func NewInspectionRepo(db *sql.DB) *InspectionRepo {
	return &InspectionRepo{db: db}
}

func (r *InspectionRepo) Create(ctx context.Context, insp *model.Inspection) error {
	data := map[string]interface{}{
		"id":               insp.ID,
		"inspector_id":     insp.InspectorID,
		"property_name":    insp.PropertyName,
		"property_address": insp.PropertyAddress,
		"inspection_date":  insp.InspectionDate,
		"status":           insp.Status,
		"notes":            insp.Notes,
		"share_enabled":    false,
		"state":            insp.State,
		"ctime":            insp.Ctime,
		"mtime":            insp.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert("inspections", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *InspectionRepo) Update(ctx context.Context, insp *model.Inspection) error {
	where := map[string]interface{}{
		"id":           insp.ID,
		"inspector_id": insp.InspectorID,
		"state":        InspectionStateNormal,
	}
	update := map[string]interface{}{
		"property_name":    insp.PropertyName,
		"property_address": insp.PropertyAddress,
		"inspection_date":  insp.InspectionDate,
		"status":           insp.Status,
		"notes":            insp.Notes,
		"mtime":            insp.Mtime,
	}
	return r.updateOne(ctx, where, update)
}

func (r *InspectionRepo) Delete(ctx context.Context, inspectorID, inspectionID string, mtime int64) error {
	where := map[string]interface{}{
		"id":           inspectionID,
		"inspector_id": inspectorID,
		"state":        InspectionStateNormal,
	}
	update := map[string]interface{}{
		"state":         InspectionStateDeleted,
		"share_enabled": false,
		"mtime":         mtime,
	}
	return r.updateOne(ctx, where, update)
}

func (r *InspectionRepo) GetByID(ctx context.Context, inspectorID, inspectionID string) (*model.Inspection, error) {
	where := map[string]interface{}{
		"id":           inspectionID,
		"inspector_id": inspectorID,
		"state":        InspectionStateNormal,
	}
	return r.getOne(ctx, where)
}

func (r *InspectionRepo) List(ctx context.Context, inspectorID string, limit, offset uint) ([]model.Inspection, error) {
	where := map[string]interface{}{
		"inspector_id": inspectorID,
		"state":        InspectionStateNormal,
		"_orderby":     "mtime desc",
	}
	if limit > 0 {
		where["_limit"] = []uint{offset, limit}
	}
	sqlStr, args, err := builder.BuildSelect("inspections", where, inspectionColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.Inspection, 0)
	for rows.Next() {
		insp, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *insp)
	}
	return items, rows.Err()
}

// SetShareToken stores a fresh token and enables sharing in one statement, so
// the previous token stops resolving at the moment the new one is written.
func (r *InspectionRepo) SetShareToken(ctx context.Context, inspectorID, inspectionID, token string, sharedAt int64) error {
	where := map[string]interface{}{
		"id":           inspectionID,
		"inspector_id": inspectorID,
		"state":        InspectionStateNormal,
	}
	update := map[string]interface{}{
		"share_token":   token,
		"share_enabled": true,
		"shared_at":     sharedAt,
	}
	err := r.updateOne(ctx, where, update)
	if err != nil && dbutil.IsConflict(err) {
		return appErr.ErrConflict
	}
	return err
}

func (r *InspectionRepo) DisableShare(ctx context.Context, inspectorID, inspectionID string) error {
	where := map[string]interface{}{
		"id":           inspectionID,
		"inspector_id": inspectorID,
		"state":        InspectionStateNormal,
	}
	update := map[string]interface{}{
		"share_enabled": false,
	}
	return r.updateOne(ctx, where, update)
}

// GetByShareToken only matches live, share-enabled rows. Unknown, revoked and
// deleted all come back as ErrNotFound.
func (r *InspectionRepo) GetByShareToken(ctx context.Context, token string) (*model.Inspection, error) {
	where := map[string]interface{}{
		"share_token":   token,
		"share_enabled": true,
		"state":         InspectionStateNormal,
	}
	return r.getOne(ctx, where)
}

// DisableSharesBefore switches off every live share issued before cutoff and
// reports how many were affected.
func (r *InspectionRepo) DisableSharesBefore(ctx context.Context, cutoff int64) (int64, error) {
	sqlStr, args, err := disableSharesBeforeQuery(cutoff)
	if err != nil {
		return 0, err
	}
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func disableSharesBeforeQuery(cutoff int64) (string, []interface{}, error) {
	where := map[string]interface{}{
		"share_enabled": true,
		"shared_at <":   cutoff,
	}
	update := map[string]interface{}{
		"share_enabled": false,
	}
	sqlStr, args, err := builder.BuildUpdate("inspections", where, update)
	if err != nil {
		return "", nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return sqlStr, args, nil
}

func (r *InspectionRepo) updateOne(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate("inspections", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func (r *InspectionRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Inspection, error) {
	sqlStr, args, err := builder.BuildSelect("inspections", where, inspectionColumns)
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
	return scanInspection(rows)
}

func scanInspection(rows *sql.Rows) (*model.Inspection, error) {
	var (
		insp     model.Inspection
		token    sql.NullString
		sharedAt sql.NullInt64
	)
	if err := rows.Scan(
		&insp.ID, &insp.InspectorID, &insp.PropertyName, &insp.PropertyAddress, &insp.InspectionDate,
		&insp.Status, &insp.Notes, &token, &insp.ShareEnabled, &sharedAt, &insp.State, &insp.Ctime, &insp.Mtime,
	); err != nil {
		return nil, err
	}
	insp.ShareToken = token.String
	insp.SharedAt = sharedAt.Int64
	return &insp, nil
}
