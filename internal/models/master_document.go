package models

import (
	"time"

	"github.com/google/uuid"
)

// Document lifecycle statuses assigned by the engine. Other business statuses
// are written by downstream workflows.
const (
	DocumentStatusDraft = "draft"
)

// MasterDocument is the carrier-level bill of lading (MBL) that owns one or
// more house documents.
type MasterDocument struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	MasterNumber     string     `json:"master_number" db:"master_number"`
	CarrierID        *uuid.UUID `json:"carrier_id" db:"carrier_id"`
	VesselName       *string    `json:"vessel_name" db:"vessel_name"`
	VoyageNumber     *string    `json:"voyage_number" db:"voyage_number"`
	PlaceOfReceipt   *string    `json:"place_of_receipt" db:"place_of_receipt"`
	PortOfLoading    string     `json:"port_of_loading" db:"port_of_loading"`
	PortOfDischarge  string     `json:"port_of_discharge" db:"port_of_discharge"`
	PlaceOfDelivery  *string    `json:"place_of_delivery" db:"place_of_delivery"`
	FinalDestination *string    `json:"final_destination" db:"final_destination"`
	ETD              *time.Time `json:"etd" db:"etd"`
	ETA              *time.Time `json:"eta" db:"eta"`
	OnBoardDate      *time.Time `json:"on_board_date" db:"on_board_date"`
	ShipperName      *string    `json:"shipper_name" db:"shipper_name"`
	ConsigneeName    *string    `json:"consignee_name" db:"consignee_name"`
	NotifyPartyName  *string    `json:"notify_party_name" db:"notify_party_name"`
	TotalPackages    *int       `json:"total_packages" db:"total_packages"`
	TotalGrossWeight *float64   `json:"total_gross_weight" db:"total_gross_weight"`
	TotalMeasurement *float64   `json:"total_measurement" db:"total_measurement"`
	Status           string     `json:"status" db:"status"`
	Deleted          bool       `json:"deleted" db:"deleted"`
	CreatedBy        *uuid.UUID `json:"created_by" db:"created_by"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" db:"updated_at"`
}

// MasterSchedule carries the route, schedule, party and cargo fields that are
// copied onto a master when it is created or refreshed from its house.
type MasterSchedule struct {
	VesselName       *string
	VoyageNumber     *string
	PlaceOfReceipt   *string
	PortOfLoading    string
	PortOfDischarge  string
	PlaceOfDelivery  *string
	FinalDestination *string
	ETD              *time.Time
	ETA              *time.Time
	OnBoardDate      *time.Time
	ShipperName      *string
	ConsigneeName    *string
	NotifyPartyName  *string
	TotalPackages    *int
	TotalGrossWeight *float64
	TotalMeasurement *float64
}
