package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item type keys inside assets_consumables; the table holds both kinds.
const (
	ItemTypeKeyAsset      = 1
	ItemTypeKeyConsumable = 2
)

// AssetConsumable is one row of assets_consumables.
type AssetConsumable struct {
	AssetID              string          `json:"assetId"`
	ItemTypeKey          int             `json:"itemTypeKey"`
	Category             string          `json:"category,omitempty"`
	AssetName            string          `json:"assetName"`
	Product              string          `json:"product,omitempty"`
	Vendor               string          `json:"vendor,omitempty"`
	Specifications       string          `json:"specifications,omitempty"`
	Quantity             int             `json:"quantity,omitempty"`
	StorageLocation      string          `json:"storageLocation,omitempty"`
	PoNumber             string          `json:"poNumber,omitempty"`
	PoDate               *time.Time      `json:"poDate,omitempty"`
	InvoiceNumber        string          `json:"invoiceNumber,omitempty"`
	InvoiceDate          *time.Time      `json:"invoiceDate,omitempty"`
	AssetCost            decimal.Decimal `json:"assetCost"`
	ExtraCharges         decimal.Decimal `json:"extraCharges"`
	TotalCost            decimal.Decimal `json:"totalCost"`
	DepreciationPeriod   string          `json:"depreciationPeriod,omitempty"`
	MaintenanceFrequency string          `json:"maintenanceFrequency,omitempty"`
	ResponsibleTeam      string          `json:"responsibleTeam,omitempty"`
	MsiTeam              string          `json:"msiTeam,omitempty"`
	Remarks              string          `json:"remarks,omitempty"`
	CreatedBy            string          `json:"createdBy,omitempty"`
	UpdatedBy            string          `json:"updatedBy,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            *time.Time      `json:"updatedAt,omitempty"`
	NextServiceDue       *time.Time      `json:"nextServiceDue,omitempty"`
	IsActive             bool            `json:"isActive"`
}

// ItemType returns the master-register type label for the row.
func (a AssetConsumable) ItemType() string {
	if a.ItemTypeKey == ItemTypeKeyConsumable {
		return "Consumable"
	}
	return "Asset"
}

// AssetFullDetail bundles a master record with its complete maintenance and
// allocation history for the full-details endpoint.
type AssetFullDetail struct {
	MasterDetails      interface{}        `json:"masterDetails"`
	MaintenanceRecords []MaintenanceEvent `json:"maintenanceRecords"`
	AllocationRecords  []AllocationEvent  `json:"allocationRecords"`
}
