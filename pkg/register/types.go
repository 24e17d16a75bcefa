// Package register implements the unified master-register aggregation
// engine: it merges tools, measurement devices and assets/consumables into
// one computed list view, annotated with availability status derived from
// the allocation ledger and next-service-due dates derived from the
// maintenance ledger and per-item frequency.
package register

import (
	"context"
	"strings"
	"time"
)

// ItemType tags a master-register entry with the table its ref id lives in.
type ItemType string

const (
	ItemTypeTool       ItemType = "Tool"
	ItemTypeMMD        ItemType = "MMD"
	ItemTypeAsset      ItemType = "Asset"
	ItemTypeConsumable ItemType = "Consumable"
)

// ParseItemType normalizes a caller-supplied type string.
func ParseItemType(s string) (ItemType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tool":
		return ItemTypeTool, true
	case "mmd":
		return ItemTypeMMD, true
	case "asset":
		return ItemTypeAsset, true
	case "consumable":
		return ItemTypeConsumable, true
	}
	return "", false
}

// Key identifies one item. Ref ids are unique only within a type.
type Key struct {
	Type ItemType
	ID   string
}

// IndexEntry is one master-register row. Entries are never physically
// removed; deactivation flips Active.
type IndexEntry struct {
	SeqNo     int64
	Type      ItemType
	RefID     string
	CreatedAt time.Time
	Active    bool
}

// Record is the uniform projection of a type-specific master record
// (ToolsMaster / MmdsMaster / AssetsConsumables). Display fields are empty
// strings rather than omitted when the source column is NULL.
type Record struct {
	ItemID         string
	Name           string
	Vendor         string
	Location       string
	Team           string
	Frequency      string
	NextServiceDue *time.Time
}

// MaintenanceEvent is a maintenance-ledger row, reduced to the fields the
// engine needs for latest-record resolution and due-date computation.
type MaintenanceEvent struct {
	ID             int64
	Key            Key
	ServiceDate    *time.Time
	NextServiceDue *time.Time
	CreatedAt      time.Time
}

// AllocationEvent is an allocation-ledger row. A nil ActualReturnDate means
// the item is still out; Status is the optional free-text label recorded at
// issue/return time.
type AllocationEvent struct {
	ID               int64
	Key              Key
	IssuedDate       *time.Time
	ActualReturnDate *time.Time
	Status           *string
	CreatedAt        time.Time
}

// Row is one computed line of the enhanced master list. Rows are rebuilt on
// every query and never persisted.
type Row struct {
	ItemID             string     `json:"itemId"`
	ItemType           string     `json:"itemType"`
	ItemName           string     `json:"itemName"`
	Vendor             string     `json:"vendor"`
	CreatedAt          time.Time  `json:"createdAt"`
	ResponsibleTeam    string     `json:"responsibleTeam"`
	StorageLocation    string     `json:"storageLocation"`
	NextServiceDue     *time.Time `json:"nextServiceDue"`
	AvailabilityStatus string     `json:"availabilityStatus"`
}

// Source supplies the engine with a snapshot of the registry and the two
// ledgers. Implementations read straight from the store on every call; the
// engine holds no cross-request state.
type Source interface {
	ActiveEntries(ctx context.Context) ([]IndexEntry, error)
	Records(ctx context.Context) (map[Key]Record, error)
	MaintenanceHistory(ctx context.Context) ([]MaintenanceEvent, error)
	AllocationHistory(ctx context.Context) ([]AllocationEvent, error)
}
