package model

const (
	ItemResultPending = ""
	ItemResultPass    = "pass"
	ItemResultFail    = "fail"
	ItemResultNA      = "na"
)

type InspectionItem struct {
	ID           string `json:"id"`
	InspectionID string `json:"inspection_id"`
	InspectorID  string `json:"-"`
	Room         string `json:"room"`
	Label        string `json:"label"`
	Result       string `json:"result"`
	Note         string `json:"note"`
	Sort         int    `json:"sort"`
	Ctime        int64  `json:"ctime"`
	Mtime        int64  `json:"mtime"`
}

func IsValidItemResult(result string) bool {
	switch result {
	case ItemResultPending, ItemResultPass, ItemResultFail, ItemResultNA:
		return true
	}
	return false
}
