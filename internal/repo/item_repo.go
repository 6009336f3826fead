package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/propinspect/internal/model"
	"github.com/xxxsen/propinspect/internal/pkg/dbutil"
)

var itemColumns = []string{"id", "inspection_id", "inspector_id", "room", "label", "result", "note", "sort", "ctime", "mtime"}

type ItemRepo struct {
	db *sql.DB
}

func NewItemRepo(db *sql.DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// ReplaceByInspection swaps the whole checklist of an inspection inside a
// transaction.
func (r *ItemRepo) ReplaceByInspection(ctx context.Context, inspectorID, inspectionID string, items []model.InspectionItem) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	where := map[string]interface{}{"inspector_id": inspectorID, "inspection_id": inspectionID}
	sqlStr, args, err := builder.BuildDelete("inspection_items", where)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	if _, err = tx.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	if len(items) > 0 {
		data := make([]map[string]interface{}, 0, len(items))
		for _, item := range items {
			data = append(data, map[string]interface{}{
				"id":            item.ID,
				"inspection_id": inspectionID,
				"inspector_id":  inspectorID,
				"room":          item.Room,
				"label":         item.Label,
				"result":        item.Result,
				"note":          item.Note,
				"sort":          item.Sort,
				"ctime":         item.Ctime,
				"mtime":         item.Mtime,
			})
		}
		sqlStr, args, err = builder.BuildInsert("inspection_items", data)
		if err != nil {
			return err
		}
		sqlStr, args = dbutil.Finalize(sqlStr, args)
		if _, err = tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
	}
	if err = unlinkRemovedItemPhotos(ctx, tx, inspectionID, items); err != nil {
		return err
	}
	return tx.Commit()
}

// unlinkRemovedItemPhotos detaches photos from items that are no longer part
// of the checklist. The photos stay on the inspection.
func unlinkRemovedItemPhotos(ctx context.Context, tx *sql.Tx, inspectionID string, items []model.InspectionItem) error {
	sqlStr, args, err := unlinkPhotosQuery(inspectionID, items)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, sqlStr, args...)
	return err
}

func unlinkPhotosQuery(inspectionID string, items []model.InspectionItem) (string, []interface{}, error) {
	where := map[string]interface{}{
		"inspection_id": inspectionID,
		"item_id !=":    "",
	}
	if len(items) > 0 {
		kept := make([]interface{}, 0, len(items))
		for _, item := range items {
			kept = append(kept, item.ID)
		}
		where["item_id not in"] = kept
	}
	sqlStr, args, err := builder.BuildUpdate("inspection_photos", where, map[string]interface{}{"item_id": ""})
	if err != nil {
		return "", nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	return sqlStr, args, nil
}

func (r *ItemRepo) ListByInspection(ctx context.Context, inspectorID, inspectionID string) ([]model.InspectionItem, error) {
	where := map[string]interface{}{
		"inspector_id":  inspectorID,
		"inspection_id": inspectionID,
		"_orderby":      "sort asc",
	}
	sqlStr, args, err := builder.BuildSelect("inspection_items", where, itemColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := make([]model.InspectionItem, 0)
	for rows.Next() {
		var item model.InspectionItem
		if err := rows.Scan(&item.ID, &item.InspectionID, &item.InspectorID, &item.Room, &item.Label,
			&item.Result, &item.Note, &item.Sort, &item.Ctime, &item.Mtime); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
