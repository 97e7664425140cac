package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CustomerType string

const (
	CustomerOffice CustomerType = "Office"
	CustomerOthers CustomerType = "Others"
)

func (t CustomerType) Valid() bool {
	return t == CustomerOffice || t == CustomerOthers
}

type PaymentMode string

const (
	PaymentCash PaymentMode = "Cash"
	PaymentUPI  PaymentMode = "UPI"
)

func (m PaymentMode) Valid() bool {
	return m == PaymentCash || m == PaymentUPI
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Entry is one saved credit transaction. Amount columns hold the per-category
// sums of the line items entered on the form.
type Entry struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	EntryDate    string          `gorm:"size:10;index;not null" json:"entry_date"`
	EntryTime    string          `gorm:"size:8;not null" json:"entry_time"`
	CustomerType CustomerType    `gorm:"size:16;not null" json:"customer_type"`
	CustomerName string          `gorm:"size:255;not null" json:"customer_name"`
	PaymentMode  PaymentMode     `gorm:"size:16;not null" json:"payment_mode"`
	BAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"b_amount"`
	BCharges     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"b_charges"`
	KAmount      decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"k_amount"`
	KCharges     decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"k_charges"`
	GrandCharges decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"grand_charges"`
	Remarks      string          `gorm:"type:text" json:"remarks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Entry) TableName() string {
	return "entries"
}

// DailyRow is the column subset shown in the "today" view and exported in reports.
type DailyRow struct {
	ID           uint            `json:"id"`
	EntryTime    string          `json:"entry_time"`
	CustomerName string          `json:"customer_name"`
	PaymentMode  PaymentMode     `json:"payment_mode"`
	BAmount      decimal.Decimal `json:"b_amount"`
	KAmount      decimal.Decimal `json:"k_amount"`
	GrandCharges decimal.Decimal `json:"grand_charges"`
}

func (e Entry) DailyRow() DailyRow {
	return DailyRow{
		ID:           e.ID,
		EntryTime:    e.EntryTime,
		CustomerName: e.CustomerName,
		PaymentMode:  e.PaymentMode,
		BAmount:      e.BAmount,
		KAmount:      e.KAmount,
		GrandCharges: e.GrandCharges,
	}
}
