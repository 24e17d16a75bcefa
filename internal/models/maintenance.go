package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaintenanceEvent is one row of the append-only maintenance ledger.
type MaintenanceEvent struct {
	ID                int64           `json:"id"`
	ItemType          string          `json:"itemType"`
	ItemID            string          `json:"itemId"`
	ItemName          string          `json:"itemName,omitempty"`
	ServiceDate       *time.Time      `json:"serviceDate,omitempty"`
	ServiceProvider   string          `json:"serviceProvider,omitempty"`
	ServiceEngineer   string          `json:"serviceEngineer,omitempty"`
	ServiceType       string          `json:"serviceType,omitempty"`
	NextServiceDue    *time.Time      `json:"nextServiceDue,omitempty"`
	ServiceNotes      string          `json:"serviceNotes,omitempty"`
	MaintenanceStatus string          `json:"maintenanceStatus,omitempty"`
	Cost              decimal.Decimal `json:"cost"`
	ResponsibleTeam   string          `json:"responsibleTeam,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}
