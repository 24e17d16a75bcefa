package models

import "time"

// MasterListRow is the simple (non-enhanced) master list projection.
type MasterListRow struct {
	SeqNo     int64     `json:"sNo"`
	ItemType  string    `json:"itemType"`
	RefID     string    `json:"refId"`
	CreatedAt time.Time `json:"createdAt"`
	DisplayID string    `json:"displayId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Supplier  string    `json:"supplier"`
	Location  string    `json:"location"`
}
