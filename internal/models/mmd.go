package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MMD is one row of mmds_master (measurement and monitoring devices).
// Calibration plays the role maintenance frequency plays for tools.
type MMD struct {
	MmdID                string          `json:"mmdId"`
	MmdName              string          `json:"mmdName"`
	BrandName            string          `json:"brandName,omitempty"`
	ModelNumber          string          `json:"modelNumber,omitempty"`
	SerialNumber         string          `json:"serialNumber,omitempty"`
	AccuracyClass        string          `json:"accuracyClass,omitempty"`
	Vendor               string          `json:"vendor,omitempty"`
	CalibratedBy         string          `json:"calibratedBy,omitempty"`
	Specifications       string          `json:"specifications,omitempty"`
	Quantity             int             `json:"quantity,omitempty"`
	CalibrationCertNo    string          `json:"calibrationCertNo,omitempty"`
	StorageLocation      string          `json:"storageLocation,omitempty"`
	PoNumber             string          `json:"poNumber,omitempty"`
	PoDate               *time.Time      `json:"poDate,omitempty"`
	InvoiceNumber        string          `json:"invoiceNumber,omitempty"`
	InvoiceDate          *time.Time      `json:"invoiceDate,omitempty"`
	TotalCost            decimal.Decimal `json:"totalCost"`
	CalibrationFrequency string          `json:"calibrationFrequency,omitempty"`
	LastCalibration      *time.Time      `json:"lastCalibration,omitempty"`
	NextCalibration      *time.Time      `json:"nextCalibration,omitempty"`
	WarrantyYears        int             `json:"warrantyYears,omitempty"`
	CalibrationStatus    string          `json:"calibrationStatus,omitempty"`
	ResponsibleTeam      string          `json:"responsibleTeam,omitempty"`
	ManualLink           string          `json:"manualLink,omitempty"`
	StockMsi             string          `json:"stockMsi,omitempty"`
	Remarks              string          `json:"remarks,omitempty"`
	CreatedBy            string          `json:"createdBy,omitempty"`
	UpdatedBy            string          `json:"updatedBy,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            *time.Time      `json:"updatedAt,omitempty"`
	IsActive             bool            `json:"isActive"`
}
