package model

type Photo struct {
	ID           string `json:"id"`
	InspectionID string `json:"inspection_id"`
	InspectorID  string `json:"-"`
	ItemID       string `json:"item_id,omitempty"`
	FileKey      string `json:"-"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Ctime        int64  `json:"ctime"`
}
