package model

const (
	InspectionStatusDraft     = "draft"
	InspectionStatusCompleted = "completed"
)

type Inspection struct {
	ID              string `json:"id"`
	InspectorID     string `json:"inspector_id"`
	PropertyName    string `json:"property_name"`
	PropertyAddress string `json:"property_address"`
	InspectionDate  int64  `json:"inspection_date"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	// ShareToken is kept after a revoke; only ShareEnabled decides whether it resolves.
	ShareToken   string `json:"-"`
	ShareEnabled bool   `json:"share_enabled"`
	SharedAt     int64  `json:"shared_at,omitempty"`
	State        int    `json:"-"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}
