package models

import (
	"time"

	"github.com/google/uuid"
)

// HouseListFilter holds the optional, conjunctive filters of the house listing.
type HouseListFilter struct {
	HouseID      *uuid.UUID `json:"id,omitempty" query:"id"`
	Status       *string    `json:"status,omitempty" query:"status"`
	MasterNumber string     `json:"master_number,omitempty" query:"master_number"` // substring match
	HouseNumber  string     `json:"house_number,omitempty" query:"house_number"`   // substring match
	Limit        int        `json:"limit,omitempty" query:"limit"`
	Offset       int        `json:"offset,omitempty" query:"offset"`
}

// HouseListRow is a denormalized listing row enriched with directory names.
type HouseListRow struct {
	ID                  uuid.UUID  `json:"id"`
	HouseNumber         string     `json:"house_number"`
	MasterID            uuid.UUID  `json:"master_id"`
	MasterNumber        string     `json:"master_number"`
	Status              string     `json:"status"`
	CarrierName         *string    `json:"carrier_name"`
	CustomerName        *string    `json:"customer_name"`
	PortOfLoading       string     `json:"port_of_loading"`
	PortOfLoadingName   *string    `json:"port_of_loading_name"`
	PortOfDischarge     string     `json:"port_of_discharge"`
	PortOfDischargeName *string    `json:"port_of_discharge_name"`
	ETD                 *time.Time `json:"etd"`
	ETA                 *time.Time `json:"eta"`
	CreatedAt           time.Time  `json:"created_at"`
}
