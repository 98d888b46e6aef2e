package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ContainerLineItem struct {
	ID              uuid.UUID `json:"id" db:"id"`
	HouseID         uuid.UUID `json:"house_id" db:"house_id"`
	MasterID        uuid.UUID `json:"master_id" db:"master_id"`
	ContainerNumber string    `json:"container_number" db:"container_number"`
	SealNumber      *string   `json:"seal_number" db:"seal_number"`
	TypeSize        *string   `json:"type_size" db:"type_size"`
	Packages        *int      `json:"packages" db:"packages"`
	GrossWeight     *float64  `json:"gross_weight" db:"gross_weight"`
	Measurement     *float64  `json:"measurement" db:"measurement"`
	Deleted         bool      `json:"deleted" db:"deleted"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

type ChargeLineItem struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	HouseID       uuid.UUID       `json:"house_id" db:"house_id"`
	ChargeCode    string          `json:"charge_code" db:"charge_code"`
	Description   *string         `json:"description" db:"description"`
	Currency      string          `json:"currency" db:"currency"`
	PrepaidAmount decimal.Decimal `json:"prepaid_amount" db:"prepaid_amount"`
	CollectAmount decimal.Decimal `json:"collect_amount" db:"collect_amount"`
	Deleted       bool            `json:"deleted" db:"deleted"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}
