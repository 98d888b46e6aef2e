package models

import "github.com/google/uuid"

// DirectoryEntry is a code→id row of the carrier or customer directory.
type DirectoryEntry struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Code string    `json:"code" db:"code"`
	Name string    `json:"name" db:"name"`
}

// Directory kinds.
const (
	DirectoryCarrier  = "carrier"
	DirectoryCustomer = "customer"
)
