package models

import (
	"time"

	"github.com/google/uuid"
)

// HouseDocument is the bill of lading issued to an individual shipper (HBL).
// Route, schedule and cargo fields are copied at write time, never derived
// from the master.
type HouseDocument struct {
	ID                   uuid.UUID  `json:"id" db:"id"`
	HouseNumber          string     `json:"house_number" db:"house_number"`
	MasterID             uuid.UUID  `json:"master_id" db:"master_id"`
	ShipmentReference    *string    `json:"shipment_reference" db:"shipment_reference"`
	CustomerID           *uuid.UUID `json:"customer_id" db:"customer_id"`
	CarrierID            *uuid.UUID `json:"carrier_id" db:"carrier_id"`
	VesselName           *string    `json:"vessel_name" db:"vessel_name"`
	VoyageNumber         *string    `json:"voyage_number" db:"voyage_number"`
	PlaceOfReceipt       *string    `json:"place_of_receipt" db:"place_of_receipt"`
	PortOfLoading        string     `json:"port_of_loading" db:"port_of_loading"`
	PortOfDischarge      string     `json:"port_of_discharge" db:"port_of_discharge"`
	PlaceOfDelivery      *string    `json:"place_of_delivery" db:"place_of_delivery"`
	FinalDestination     *string    `json:"final_destination" db:"final_destination"`
	ETD                  *time.Time `json:"etd" db:"etd"`
	ETA                  *time.Time `json:"eta" db:"eta"`
	OnBoardDate          *time.Time `json:"on_board_date" db:"on_board_date"`
	ShipperName          *string    `json:"shipper_name" db:"shipper_name"`
	ConsigneeName        *string    `json:"consignee_name" db:"consignee_name"`
	NotifyPartyName      *string    `json:"notify_party_name" db:"notify_party_name"`
	Packages             *int       `json:"packages" db:"packages"`
	PackageUnit          *string    `json:"package_unit" db:"package_unit"`
	GrossWeight          *float64   `json:"gross_weight" db:"gross_weight"`
	Measurement          *float64   `json:"measurement" db:"measurement"`
	CommodityDescription *string    `json:"commodity_description" db:"commodity_description"`
	Status               string     `json:"status" db:"status"`
	Deleted              bool       `json:"deleted" db:"deleted"`
	CreatedBy            *uuid.UUID `json:"created_by" db:"created_by"`
	UpdatedBy            *uuid.UUID `json:"updated_by" db:"updated_by"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"`
}

// DeletedHouse identifies a house that a delete operation actually marked.
type DeletedHouse struct {
	ID          uuid.UUID `json:"id"`
	HouseNumber string    `json:"house_number"`
}

// HouseDetail is a house together with its active line items.
type HouseDetail struct {
	House      *HouseDocument       `json:"house"`
	Containers []*ContainerLineItem `json:"containers"`
	Charges    []*ChargeLineItem    `json:"charges"`
}

// HouseWriteResult is returned by register and update.
type HouseWriteResult struct {
	HouseID       uuid.UUID `json:"house_id"`
	HouseNumber   string    `json:"house_number"`
	MasterID      uuid.UUID `json:"master_id"`
	MasterNumber  string    `json:"master_number"`
	MasterCreated bool      `json:"master_created"`
}

// HouseDeleteResult reports the houses a delete operation affected.
type HouseDeleteResult struct {
	Count   int            `json:"count"`
	Deleted []DeletedHouse `json:"deleted"`
}
