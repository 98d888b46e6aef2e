package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HouseDocumentInput is the write payload for register and update. Optional
// fields are pointers: nil means "not supplied" and leaves the stored value
// untouched on update.
type HouseDocumentInput struct {
	HouseID  *uuid.UUID `json:"house_id,omitempty"`
	MasterID *uuid.UUID `json:"master_id,omitempty"`

	MasterNumber    string `json:"master_number"`
	HouseNumber     string `json:"house_number"`
	PortOfLoading   string `json:"port_of_loading"`
	PortOfDischarge string `json:"port_of_discharge"`

	ShipmentReference *string `json:"shipment_reference,omitempty"`
	CustomerCode      *string `json:"customer_code,omitempty"`
	CarrierCode       *string `json:"carrier_code,omitempty"`

	VesselName       *string    `json:"vessel_name,omitempty"`
	VoyageNumber     *string    `json:"voyage_number,omitempty"`
	PlaceOfReceipt   *string    `json:"place_of_receipt,omitempty"`
	PlaceOfDelivery  *string    `json:"place_of_delivery,omitempty"`
	FinalDestination *string    `json:"final_destination,omitempty"`
	ETD              *time.Time `json:"etd,omitempty"`
	ETA              *time.Time `json:"eta,omitempty"`
	OnBoardDate      *time.Time `json:"on_board_date,omitempty"`

	ShipperName     *string `json:"shipper_name,omitempty"`
	ConsigneeName   *string `json:"consignee_name,omitempty"`
	NotifyPartyName *string `json:"notify_party_name,omitempty"`

	Packages             *int     `json:"packages,omitempty"`
	PackageUnit          *string  `json:"package_unit,omitempty"`
	GrossWeight          *float64 `json:"gross_weight,omitempty"`
	Measurement          *float64 `json:"measurement,omitempty"`
	CommodityDescription *string  `json:"commodity_description,omitempty"`

	Containers []ContainerInput `json:"containers,omitempty"`
	Charges    []ChargeInput    `json:"charges,omitempty"`
}

type ContainerInput struct {
	ContainerNumber string   `json:"container_number"`
	SealNumber      *string  `json:"seal_number,omitempty"`
	TypeSize        *string  `json:"type_size,omitempty"`
	Packages        *int     `json:"packages,omitempty"`
	GrossWeight     *float64 `json:"gross_weight,omitempty"`
	Measurement     *float64 `json:"measurement,omitempty"`
}

type ChargeInput struct {
	ChargeCode    string          `json:"charge_code"`
	Description   *string         `json:"description,omitempty"`
	Currency      string          `json:"currency"`
	PrepaidAmount decimal.Decimal `json:"prepaid_amount"`
	CollectAmount decimal.Decimal `json:"collect_amount"`
}

// Schedule extracts the fields a master document inherits from its house.
func (in *HouseDocumentInput) Schedule() MasterSchedule {
	return MasterSchedule{
		VesselName:       in.VesselName,
		VoyageNumber:     in.VoyageNumber,
		PlaceOfReceipt:   in.PlaceOfReceipt,
		PortOfLoading:    in.PortOfLoading,
		PortOfDischarge:  in.PortOfDischarge,
		PlaceOfDelivery:  in.PlaceOfDelivery,
		FinalDestination: in.FinalDestination,
		ETD:              in.ETD,
		ETA:              in.ETA,
		OnBoardDate:      in.OnBoardDate,
		ShipperName:      in.ShipperName,
		ConsigneeName:    in.ConsigneeName,
		NotifyPartyName:  in.NotifyPartyName,
		TotalPackages:    in.Packages,
		TotalGrossWeight: in.GrossWeight,
		TotalMeasurement: in.Measurement,
	}
}
