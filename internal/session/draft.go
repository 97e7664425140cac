// Package session holds the unsaved new-entry form of each visitor.
package session

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"store-register/internal/charges"
	"store-register/internal/ledger"
	"store-register/internal/models"
)

type Category string

const (
	CategoryB Category = "b"
	CategoryK Category = "k"
)

var (
	ErrUnknownCategory = errors.New("unknown line item category")
	ErrLineOutOfRange  = errors.New("line item index out of range")
)

func ParseCategory(s string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryB:
		return CategoryB, nil
	case CategoryK:
		return CategoryK, nil
	}
	return "", ErrUnknownCategory
}

// Creator is the part of the ledger a draft needs to save itself.
type Creator interface {
	Create(ctx context.Context, in ledger.NewEntry) (*models.Entry, error)
}

type Draft struct {
	CustomerType models.CustomerType `json:"customer_type"`
	PaymentMode  models.PaymentMode  `json:"payment_mode"`
	CustomerName string              `json:"customer_name"`
	Remarks      string              `json:"remarks"`
	B            []charges.LineItem  `json:"b_lines"`
	K            []charges.LineItem  `json:"k_lines"`
	DefaultPct   decimal.Decimal     `json:"default_pct"`
}

// NewDraft returns a form with one empty line per category. New lines carry
// defaultPct as their charge percentage.
func NewDraft(defaultPct decimal.Decimal) *Draft {
	d := &Draft{DefaultPct: charges.Clamp(charges.LineItem{ChargePct: defaultPct}).ChargePct}
	d.Reset()
	return d
}

func (d *Draft) Reset() {
	d.CustomerType = models.CustomerOffice
	d.PaymentMode = models.PaymentCash
	d.CustomerName = ""
	d.Remarks = ""
	d.B = []charges.LineItem{d.blankLine()}
	d.K = []charges.LineItem{d.blankLine()}
}

func (d *Draft) blankLine() charges.LineItem {
	return charges.LineItem{Amount: decimal.Zero, ChargePct: d.DefaultPct}
}

func (d *Draft) lines(cat Category) (*[]charges.LineItem, error) {
	switch cat {
	case CategoryB:
		return &d.B, nil
	case CategoryK:
		return &d.K, nil
	}
	return nil, ErrUnknownCategory
}

// AddLine appends an empty line item. Lines are never removed.
func (d *Draft) AddLine(cat Category) error {
	l, err := d.lines(cat)
	if err != nil {
		return err
	}
	*l = append(*l, d.blankLine())
	return nil
}

// SetLine overwrites one line, clamping amount and percentage into range.
func (d *Draft) SetLine(cat Category, idx int, item charges.LineItem) error {
	l, err := d.lines(cat)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(*l) {
		return ErrLineOutOfRange
	}
	(*l)[idx] = charges.Clamp(item)
	return nil
}

type Fields struct {
	CustomerType *models.CustomerType `json:"customer_type"`
	PaymentMode  *models.PaymentMode  `json:"payment_mode"`
	CustomerName *string              `json:"customer_name"`
	Remarks      *string              `json:"remarks"`
}

// Apply copies the non-nil fields onto the draft.
func (d *Draft) Apply(f Fields) error {
	if f.CustomerType != nil {
		if !f.CustomerType.Valid() {
			return &ledger.ValidationError{Field: "customer_type", Message: "must be Office or Others"}
		}
		d.CustomerType = *f.CustomerType
	}
	if f.PaymentMode != nil {
		if !f.PaymentMode.Valid() {
			return &ledger.ValidationError{Field: "payment_mode", Message: "must be Cash or UPI"}
		}
		d.PaymentMode = *f.PaymentMode
	}
	if f.CustomerName != nil {
		d.CustomerName = *f.CustomerName
	}
	if f.Remarks != nil {
		d.Remarks = *f.Remarks
	}
	return nil
}

func (d *Draft) Totals() (b, k charges.Totals) {
	return charges.Compute(d.B), charges.Compute(d.K)
}

// Submit validates the draft, saves it and resets the form. On any error the
// draft is left as it was.
func (d *Draft) Submit(ctx context.Context, store Creator) (*models.Entry, error) {
	if strings.TrimSpace(d.CustomerName) == "" {
		return nil, &ledger.ValidationError{Field: "customer_name", Message: "customer name is required"}
	}
	b, k := d.Totals()
	entry, err := store.Create(ctx, ledger.NewEntry{
		CustomerType: d.CustomerType,
		CustomerName: d.CustomerName,
		PaymentMode:  d.PaymentMode,
		BAmount:      b.TotalAmount,
		BCharges:     b.TotalCharge,
		KAmount:      k.TotalAmount,
		KCharges:     k.TotalCharge,
		Remarks:      d.Remarks,
	})
	if err != nil {
		return nil, err
	}
	d.Reset()
	return entry, nil
}
