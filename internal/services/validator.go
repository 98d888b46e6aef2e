package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"freightdesk/internal/models"
)

// Field names reported by validation errors.
const (
	FieldHouseID         = "house_id"
	FieldMasterID        = "master_id"
	FieldMasterNumber    = "master_number"
	FieldHouseNumber     = "house_number"
	FieldPortOfLoading   = "port_of_loading"
	FieldPortOfDischarge = "port_of_discharge"
	FieldCarrierCode     = "carrier_code"
	FieldCustomerCode    = "customer_code"
	FieldContainerNumber = "containers.container_number"
	FieldChargeCode      = "charges.charge_code"
	FieldChargeCurrency  = "charges.currency"
	FieldIDs             = "ids"
)

// Column widths of the bounded text columns, in characters.
const (
	maxDocumentNumber = 64
	maxPortCode       = 16
	maxDirectoryCode  = 32
	maxPlace          = 128
	maxPartyName      = 255
	maxContainerNo    = 16
	maxSealNumber     = 32
	maxTypeSize       = 8
	maxPackageUnit    = 16
	maxChargeCode     = 32
	maxChargeDesc     = 255
	currencyLength    = 3
)

type boundedField struct {
	field string
	value *string
	max   int
}

func tooLong(field string, max int) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf("must be at most %d characters", max)}
}

func checkLengths(fields []boundedField) error {
	for _, f := range fields {
		if f.value != nil && utf8.RuneCountInString(strings.TrimSpace(*f.value)) > f.max {
			return tooLong(f.field, f.max)
		}
	}
	return nil
}

// ValidateCreate checks the fields register requires and returns the first
// violation only.
func ValidateCreate(in *models.HouseDocumentInput) error {
	if in == nil {
		return &ValidationError{Field: "body", Message: "is required"}
	}

	required := []struct {
		field string
		value string
	}{
		{FieldMasterNumber, in.MasterNumber},
		{FieldHouseNumber, in.HouseNumber},
		{FieldPortOfLoading, in.PortOfLoading},
		{FieldPortOfDischarge, in.PortOfDischarge},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return requiredField(r.field)
		}
	}

	if err := checkLengths([]boundedField{
		{FieldMasterNumber, &in.MasterNumber, maxDocumentNumber},
		{FieldHouseNumber, &in.HouseNumber, maxDocumentNumber},
		{FieldPortOfLoading, &in.PortOfLoading, maxPortCode},
		{FieldPortOfDischarge, &in.PortOfDischarge, maxPortCode},
		{"shipment_reference", in.ShipmentReference, maxDocumentNumber},
		{FieldCustomerCode, in.CustomerCode, maxDirectoryCode},
		{FieldCarrierCode, in.CarrierCode, maxDirectoryCode},
		{"vessel_name", in.VesselName, maxPlace},
		{"voyage_number", in.VoyageNumber, maxDocumentNumber},
		{"place_of_receipt", in.PlaceOfReceipt, maxPlace},
		{"place_of_delivery", in.PlaceOfDelivery, maxPlace},
		{"final_destination", in.FinalDestination, maxPlace},
		{"shipper_name", in.ShipperName, maxPartyName},
		{"consignee_name", in.ConsigneeName, maxPartyName},
		{"notify_party_name", in.NotifyPartyName, maxPartyName},
		{"package_unit", in.PackageUnit, maxPackageUnit},
	}); err != nil {
		return err
	}

	for i := range in.Containers {
		c := &in.Containers[i]
		if strings.TrimSpace(c.ContainerNumber) == "" {
			return requiredField(FieldContainerNumber)
		}
		if err := checkLengths([]boundedField{
			{FieldContainerNumber, &c.ContainerNumber, maxContainerNo},
			{"containers.seal_number", c.SealNumber, maxSealNumber},
			{"containers.type_size", c.TypeSize, maxTypeSize},
		}); err != nil {
			return err
		}
	}
	for i := range in.Charges {
		c := &in.Charges[i]
		if strings.TrimSpace(c.ChargeCode) == "" {
			return requiredField(FieldChargeCode)
		}
		currency := strings.TrimSpace(c.Currency)
		if currency == "" {
			return requiredField(FieldChargeCurrency)
		}
		if utf8.RuneCountInString(currency) != currencyLength {
			return &ValidationError{Field: FieldChargeCurrency, Message: "must be a 3 letter currency code"}
		}
		if err := checkLengths([]boundedField{
			{FieldChargeCode, &c.ChargeCode, maxChargeCode},
			{"charges.description", c.Description, maxChargeDesc},
		}); err != nil {
			return err
		}
	}

	return nil
}

// ValidateUpdate is ValidateCreate plus the identifier of the house to update.
func ValidateUpdate(in *models.HouseDocumentInput) error {
	if in != nil && in.HouseID == nil {
		return requiredField(FieldHouseID)
	}
	return ValidateCreate(in)
}

// normalizeInput trims the business keys so lookups and uniqueness checks see
// the same value that is stored.
func normalizeInput(in *models.HouseDocumentInput) {
	in.MasterNumber = strings.TrimSpace(in.MasterNumber)
	in.HouseNumber = strings.TrimSpace(in.HouseNumber)
	in.PortOfLoading = strings.TrimSpace(in.PortOfLoading)
	in.PortOfDischarge = strings.TrimSpace(in.PortOfDischarge)
}
