package property

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindApartment Kind = "apartment"
	KindDuplex    Kind = "duplex"
	KindBungalow  Kind = "bungalow"
	KindShortlet  Kind = "shortlet"
)

type Property struct {
	ID          string          `json:"id"`
	LandlordID  string          `json:"landlordId"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Kind        Kind            `json:"kind"`
	City        string          `json:"city"`
	Address     string          `json:"address"`
	Bedrooms    int             `json:"bedrooms"`
	AnnualRent  decimal.Decimal `json:"annualRent"`
	NightlyRate decimal.Decimal `json:"nightlyRate"`
	Listed      bool            `json:"listed"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}
