package models

import "time"

// AllocationEvent is one row of the append-only allocation ledger. A nil
// ActualReturnDate means the item is still out with the employee.
type AllocationEvent struct {
	ID                 int64      `json:"id"`
	ItemType           string     `json:"itemType"`
	ItemID             string     `json:"itemId"`
	ItemName           string     `json:"itemName,omitempty"`
	EmployeeID         string     `json:"employeeId,omitempty"`
	EmployeeName       string     `json:"employeeName,omitempty"`
	TeamName           string     `json:"teamName,omitempty"`
	Purpose            string     `json:"purpose,omitempty"`
	IssuedDate         *time.Time `json:"issuedDate,omitempty"`
	ExpectedReturnDate *time.Time `json:"expectedReturnDate,omitempty"`
	ActualReturnDate   *time.Time `json:"actualReturnDate,omitempty"`
	AvailabilityStatus *string    `json:"availabilityStatus,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
}
