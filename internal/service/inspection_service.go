package service

import (
	"context"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/propinspect/internal/model"
	appErr "github.com/xxxsen/propinspect/internal/pkg/errors"
	"github.com/xxxsen/propinspect/internal/pkg/timeutil"
	"github.com/xxxsen/propinspect/internal/repo"
)

const maxChecklistItems = 500

type InspectionService struct {
	inspections InspectionStore
	items       ItemStore
}

func NewInspectionService(inspections InspectionStore, items ItemStore) *InspectionService {
	return &InspectionService{inspections: inspections, items: items}
}

type InspectionInput struct {
	PropertyName    string
	PropertyAddress string
	InspectionDate  int64
	Status          string
	Notes           string
}

// ItemInput describes one checklist row. ID is optional and keeps an existing
// row (and the photos attached to it) when it belongs to the inspection.
type ItemInput struct {
	ID     string
	Room   string
	Label  string
	Result string
	Note   string
}

func (in *InspectionInput) normalize() error {
	in.PropertyName = strings.TrimSpace(in.PropertyName)
	in.PropertyAddress = strings.TrimSpace(in.PropertyAddress)
	if in.PropertyName == "" {
		return appErr.ErrInvalid
	}
	switch in.Status {
	case "":
		in.Status = model.InspectionStatusDraft
	case model.InspectionStatusDraft, model.InspectionStatusCompleted:
	default:
		return appErr.ErrInvalid
	}
	if in.InspectionDate < 0 {
		return appErr.ErrInvalid
	}
	return nil
}

func (s *InspectionService) Create(ctx context.Context, inspectorID string, input InspectionInput) (*model.Inspection, error) {
	if inspectorID == "" {
		return nil, appErr.ErrUnauthorized
	}
	if err := input.normalize(); err != nil {
		return nil, err
	}
	now := timeutil.NowUnix()
	insp := &model.Inspection{
		ID:              newID(),
		InspectorID:     inspectorID,
		PropertyName:    input.PropertyName,
		PropertyAddress: input.PropertyAddress,
		InspectionDate:  input.InspectionDate,
		Status:          input.Status,
		Notes:           input.Notes,
		State:           repo.InspectionStateNormal,
		Ctime:           now,
		Mtime:           now,
	}
	if err := s.inspections.Create(ctx, insp); err != nil {
		return nil, err
	}
	logutil.GetLogger(ctx).Info("inspection created",
		zap.String("inspection_id", insp.ID),
		zap.String("inspector_id", inspectorID),
	)
	return insp, nil
}

func (s *InspectionService) List(ctx context.Context, inspectorID string, limit, offset uint) ([]model.Inspection, error) {
	if inspectorID == "" {
		return nil, appErr.ErrUnauthorized
	}
	return s.inspections.List(ctx, inspectorID, limit, offset)
}

func (s *InspectionService) Get(ctx context.Context, inspectorID, inspectionID string) (*model.Inspection, error) {
	if inspectorID == "" {
		return nil, appErr.ErrUnauthorized
	}
	return s.inspections.GetByID(ctx, inspectorID, inspectionID)
}

func (s *InspectionService) Update(ctx context.Context, inspectorID, inspectionID string, input InspectionInput) (*model.Inspection, error) {
	if inspectorID == "" {
		return nil, appErr.ErrUnauthorized
	}
	if err := input.normalize(); err != nil {
		return nil, err
	}
	insp, err := s.inspections.GetByID(ctx, inspectorID, inspectionID)
	if err != nil {
		return nil, err
	}
	insp.PropertyName = input.PropertyName
	insp.PropertyAddress = input.PropertyAddress
	insp.InspectionDate = input.InspectionDate
	insp.Status = input.Status
	insp.Notes = input.Notes
	insp.Mtime = timeutil.NowUnix()
	if err := s.inspections.Update(ctx, insp); err != nil {
		return nil, err
	}
	return insp, nil
}

// Delete soft-deletes the inspection, which also switches its share link off.
func (s *InspectionService) Delete(ctx context.Context, inspectorID, inspectionID string) error {
	if inspectorID == "" {
		return appErr.ErrUnauthorized
	}
	return s.inspections.Delete(ctx, inspectorID, inspectionID, timeutil.NowUnix())
}

func (s *InspectionService) ListItems(ctx context.Context, inspectorID, inspectionID string) ([]model.InspectionItem, error) {
	if _, err := s.Get(ctx, inspectorID, inspectionID); err != nil {
		return nil, err
	}
	return s.items.ListByInspection(ctx, inspectorID, inspectionID)
}

func (s *InspectionService) ReplaceItems(ctx context.Context, inspectorID, inspectionID string, inputs []ItemInput) ([]model.InspectionItem, error) {
	if _, err := s.Get(ctx, inspectorID, inspectionID); err != nil {
		return nil, err
	}
	if len(inputs) > maxChecklistItems {
		return nil, appErr.ErrInvalid
	}
	current, err := s.items.ListByInspection(ctx, inspectorID, inspectionID)
	if err != nil {
		return nil, err
	}
	ctimes := make(map[string]int64, len(current))
	for _, item := range current {
		ctimes[item.ID] = item.Ctime
	}
	now := timeutil.NowUnix()
	items := make([]model.InspectionItem, 0, len(inputs))
	used := make(map[string]bool, len(inputs))
	for i, in := range inputs {
		room := strings.TrimSpace(in.Room)
		label := strings.TrimSpace(in.Label)
		result := strings.ToLower(strings.TrimSpace(in.Result))
		if room == "" || label == "" || !model.IsValidItemResult(result) {
			return nil, appErr.ErrInvalid
		}
		id, ctime := newID(), now
		if existing, ok := ctimes[in.ID]; ok && !used[in.ID] {
			id, ctime = in.ID, existing
		}
		used[id] = true
		items = append(items, model.InspectionItem{
			ID:           id,
			InspectionID: inspectionID,
			InspectorID:  inspectorID,
			Room:         room,
			Label:        label,
			Result:       result,
			Note:         in.Note,
			Sort:         i,
			Ctime:        ctime,
			Mtime:        now,
		})
	}
	if err := s.items.ReplaceByInspection(ctx, inspectorID, inspectionID, items); err != nil {
		return nil, err
	}
	return items, nil
}
