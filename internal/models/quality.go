package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lookup rows for the QC templating screens.
type QCLookup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// QCMaterial is a material belonging to a final product.
type QCMaterial struct {
	ID             int64  `json:"id"`
	FinalProductID int64  `json:"finalProductId"`
	Name           string `json:"name"`
}

// QCTemplate is a quality-control template tying a validation type to a
// final product and optionally one of its materials.
type QCTemplate struct {
	ID                  int64     `json:"qcTemplateId"`
	TemplateName        string    `json:"templateName"`
	ValidationTypeID    int64     `json:"validationTypeId"`
	FinalProductID      int64     `json:"finalProductId"`
	MaterialID          *int64    `json:"materialId,omitempty"`
	ToolsToQualityCheck *string   `json:"toolsToQualityCheck,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

// QCControlPoint is one measured/checked point within a template.
type QCControlPoint struct {
	ID                 int64            `json:"qcControlPointId"`
	TemplateID         int64            `json:"qcTemplateId"`
	ControlPointTypeID int64            `json:"controlPointTypeId"`
	ControlPointName   string           `json:"controlPointName"`
	TargetValue        *decimal.Decimal `json:"targetValue,omitempty"`
	Unit               string           `json:"unit,omitempty"`
	Tolerance          *decimal.Decimal `json:"tolerance,omitempty"`
	Instructions       string           `json:"instructions,omitempty"`
	ImagePath          string           `json:"imagePath,omitempty"`
	SequenceOrder      int              `json:"sequenceOrder"`
}
