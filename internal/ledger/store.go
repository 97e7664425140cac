// Package ledger persists store entries and answers the daily queries.
package ledger

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"store-register/internal/models"
)

// MoneyScale is the number of decimal places the money columns keep.
const MoneyScale = 4

// MaxMoney bounds every stored amount and charge. Values below it keep all
// their digits when a driver hands numeric columns back as float64.
var MaxMoney = decimal.NewFromInt(1_000_000_000)

type Store struct {
	db  *gorm.DB
	now func() time.Time
	loc *time.Location
}

type Option func(*Store)

// WithClock replaces time.Now as the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(db *gorm.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewEntry is what a caller supplies on create. Date, time and grand charges
// are filled in by the store.
type NewEntry struct {
	CustomerType models.CustomerType
	CustomerName string
	PaymentMode  models.PaymentMode
	BAmount      decimal.Decimal
	BCharges     decimal.Decimal
	KAmount      decimal.Decimal
	KCharges     decimal.Decimal
	Remarks      string
}

// EntryUpdate carries the fields editable after creation.
type EntryUpdate struct {
	CustomerName string
	PaymentMode  models.PaymentMode
	BAmount      decimal.Decimal
	BCharges     decimal.Decimal
	KAmount      decimal.Decimal
	KCharges     decimal.Decimal
	Remarks      string
}

type Summary struct {
	Date         string          `json:"date"`
	Count        int64           `json:"count"`
	TotalB       decimal.Decimal `json:"total_b"`
	TotalK       decimal.Decimal `json:"total_k"`
	TotalCharges decimal.Decimal `json:"total_charges"`
}

// Today returns the current date label in the store's location.
func (s *Store) Today() string {
	return s.now().In(s.loc).Format(models.DateLayout)
}

func (s *Store) Create(ctx context.Context, in NewEntry) (*models.Entry, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, invalid("customer_name", "customer name is required")
	}
	if !in.CustomerType.Valid() {
		return nil, invalid("customer_type", "must be Office or Others")
	}
	if !in.PaymentMode.Valid() {
		return nil, invalid("payment_mode", "must be Cash or UPI")
	}
	if err := checkAmounts(in.BAmount, in.BCharges, in.KAmount, in.KCharges); err != nil {
		return nil, err
	}
	bAmount, bCharges := in.BAmount.Round(MoneyScale), in.BCharges.Round(MoneyScale)
	kAmount, kCharges := in.KAmount.Round(MoneyScale), in.KCharges.Round(MoneyScale)

	stamp := s.now().In(s.loc)
	entry := models.Entry{
		EntryDate:    stamp.Format(models.DateLayout),
		EntryTime:    stamp.Format(models.TimeLayout),
		CustomerType: in.CustomerType,
		CustomerName: name,
		PaymentMode:  in.PaymentMode,
		BAmount:      bAmount,
		BCharges:     bCharges,
		KAmount:      kAmount,
		KCharges:     kCharges,
		GrandCharges: bCharges.Add(kCharges),
		Remarks:      strings.TrimSpace(in.Remarks),
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, unavailable("create entry", err)
	}
	return &entry, nil
}

// ListByDate returns the entries saved on date, most recent first.
func (s *Store) ListByDate(ctx context.Context, date string) ([]models.Entry, error) {
	var entries []models.Entry
	err := s.db.WithContext(ctx).
		Where("entry_date = ?", date).
		Order("id desc").
		Find(&entries).Error
	if err != nil {
		return nil, unavailable("list entries by date", err)
	}
	return entries, nil
}

func (s *Store) ListAll(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	if err := s.db.WithContext(ctx).Order("id desc").Find(&entries).Error; err != nil {
		return nil, unavailable("list entries", err)
	}
	return entries, nil
}

func (s *Store) Get(ctx context.Context, id uint) (*models.Entry, error) {
	var entry models.Entry
	if err := s.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get entry", err)
	}
	return &entry, nil
}

// Update rewrites the editable fields of an entry and recomputes grand charges.
func (s *Store) Update(ctx context.Context, id uint, in EntryUpdate) (*models.Entry, error) {
	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, invalid("customer_name", "customer name is required")
	}
	if !in.PaymentMode.Valid() {
		return nil, invalid("payment_mode", "must be Cash or UPI")
	}
	if err := checkAmounts(in.BAmount, in.BCharges, in.KAmount, in.KCharges); err != nil {
		return nil, err
	}

	var entry models.Entry
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&entry, id).Error; err != nil {
			return err
		}
		entry.CustomerName = name
		entry.PaymentMode = in.PaymentMode
		entry.BAmount = in.BAmount.Round(MoneyScale)
		entry.BCharges = in.BCharges.Round(MoneyScale)
		entry.KAmount = in.KAmount.Round(MoneyScale)
		entry.KCharges = in.KCharges.Round(MoneyScale)
		entry.GrandCharges = entry.BCharges.Add(entry.KCharges)
		entry.Remarks = strings.TrimSpace(in.Remarks)
		return tx.Save(&entry).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("update entry", err)
	}
	return &entry, nil
}

func (s *Store) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Entry{}, id)
	if res.Error != nil {
		return unavailable("delete entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary aggregates the entries of one date. Sums are zero, not absent, when
// nothing matches.
func (s *Store) Summary(ctx context.Context, date string) (Summary, error) {
	entries, err := s.ListByDate(ctx, date)
	if err != nil {
		return Summary{}, err
	}
	sum := Summary{
		Date:         date,
		Count:        int64(len(entries)),
		TotalB:       decimal.Zero,
		TotalK:       decimal.Zero,
		TotalCharges: decimal.Zero,
	}
	for _, e := range entries {
		sum.TotalB = sum.TotalB.Add(e.BAmount)
		sum.TotalK = sum.TotalK.Add(e.KAmount)
		sum.TotalCharges = sum.TotalCharges.Add(e.GrandCharges)
	}
	return sum, nil
}

func checkAmounts(bAmount, bCharges, kAmount, kCharges decimal.Decimal) error {
	fields := []struct {
		name string
		v    decimal.Decimal
	}{
		{"b_amount", bAmount},
		{"b_charges", bCharges},
		{"k_amount", kAmount},
		{"k_charges", kCharges},
	}
	for _, f := range fields {
		if f.v.IsNegative() {
			return invalid(f.name, "must not be negative")
		}
		if f.v.GreaterThanOrEqual(MaxMoney) {
			return invalid(f.name, "must be below 1000000000")
		}
	}
	return nil
}
