package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tool is one row of tools_master.
type Tool struct {
	ToolID               string          `json:"toolId"`
	ToolName             string          `json:"toolName"`
	ToolType             string          `json:"toolType,omitempty"`
	AssociatedProduct    string          `json:"associatedProduct,omitempty"`
	ArticleCode          string          `json:"articleCode,omitempty"`
	Vendor               string          `json:"vendor,omitempty"`
	Specifications       string          `json:"specifications,omitempty"`
	StorageLocation      string          `json:"storageLocation,omitempty"`
	PoNumber             string          `json:"poNumber,omitempty"`
	PoDate               *time.Time      `json:"poDate,omitempty"`
	InvoiceNumber        string          `json:"invoiceNumber,omitempty"`
	InvoiceDate          *time.Time      `json:"invoiceDate,omitempty"`
	ToolCost             decimal.Decimal `json:"toolCost"`
	ExtraCharges         decimal.Decimal `json:"extraCharges"`
	TotalCost            decimal.Decimal `json:"totalCost"`
	Lifespan             string          `json:"lifespan,omitempty"`
	MaintenanceFrequency string          `json:"maintenanceFrequency,omitempty"`
	HandlingCertificate  bool            `json:"handlingCertificate"`
	AuditInterval        string          `json:"auditInterval,omitempty"`
	MaxOutput            int             `json:"maxOutput,omitempty"`
	LastAuditDate        *time.Time      `json:"lastAuditDate,omitempty"`
	LastAuditNotes       string          `json:"lastAuditNotes,omitempty"`
	ResponsibleTeam      string          `json:"responsibleTeam,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	MsiAsset             string          `json:"msiAsset,omitempty"`
	KernAsset            string          `json:"kernAsset,omitempty"`
	CreatedBy            string          `json:"createdBy,omitempty"`
	UpdatedBy            string          `json:"updatedBy,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            *time.Time      `json:"updatedAt,omitempty"`
	NextServiceDue       *time.Time      `json:"nextServiceDue,omitempty"`
	IsActive             bool            `json:"isActive"`
}
