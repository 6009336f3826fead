package service

import (
	"github.com/xxxsen/propinspect/internal/model"
)

type SharedInspection struct {
	Inspection SharedInspectionInfo `json:"inspection"`
	Rooms      []SharedRoom         `json:"rooms"`
	Progress   Progress             `json:"progress"`
	Photos     []SharedPhoto        `json:"photos"`
}

type SharedInspectionInfo struct {
	ID              string `json:"id"`
	PropertyName    string `json:"property_name"`
	PropertyAddress string `json:"property_address"`
	InspectionDate  int64  `json:"inspection_date"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	Mtime           int64  `json:"mtime"`
}

type SharedRoom struct {
	Name     string       `json:"name"`
	Items    []SharedItem `json:"items"`
	Progress Progress     `json:"progress"`
}

type SharedItem struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Result string `json:"result"`
	Note   string `json:"note"`
}

type SharedPhoto struct {
	ID          string `json:"id"`
	ItemID      string `json:"item_id,omitempty"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Progress struct {
	Answered int `json:"answered"`
	Total    int `json:"total"`
	Percent  int `json:"percent"`
}

func (p *Progress) add(result string) {
	p.Total++
	if result != model.ItemResultPending {
		p.Answered++
	}
	p.Percent = p.Answered * 100 / p.Total
}

// buildSharedInspection groups items by room in first-seen order and drops
// everything that identifies the owner or the share state.
func buildSharedInspection(insp *model.Inspection, items []model.InspectionItem, photos []model.Photo) *SharedInspection {
	view := &SharedInspection{
		Inspection: SharedInspectionInfo{
			ID:              insp.ID,
			PropertyName:    insp.PropertyName,
			PropertyAddress: insp.PropertyAddress,
			InspectionDate:  insp.InspectionDate,
			Status:          insp.Status,
			Notes:           insp.Notes,
			Mtime:           insp.Mtime,
		},
		Rooms:  make([]SharedRoom, 0),
		Photos: make([]SharedPhoto, 0, len(photos)),
	}
	index := make(map[string]int)
	for _, item := range items {
		pos, ok := index[item.Room]
		if !ok {
			pos = len(view.Rooms)
			index[item.Room] = pos
			view.Rooms = append(view.Rooms, SharedRoom{Name: item.Room, Items: make([]SharedItem, 0)})
		}
		room := &view.Rooms[pos]
		room.Items = append(room.Items, SharedItem{
			ID:     item.ID,
			Label:  item.Label,
			Result: item.Result,
			Note:   item.Note,
		})
		room.Progress.add(item.Result)
		view.Progress.add(item.Result)
	}
	for _, photo := range photos {
		view.Photos = append(view.Photos, SharedPhoto{
			ID:          photo.ID,
			ItemID:      photo.ItemID,
			ContentType: photo.ContentType,
			Size:        photo.Size,
		})
	}
	return view
}
