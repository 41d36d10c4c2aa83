package repository

import (
	"context"
	"time"

	"portfee/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxRatesRepository stores rate schedules together with their port and
// disembarkment rates.
type TaxRatesRepository interface {
	Create(ctx context.Context, rates *model.TaxRates) error
	Update(ctx context.Context, rates *model.TaxRates) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRates, error)
	List(ctx context.Context, page, limit int) ([]model.TaxRates, int64, error)
	ListAll(ctx context.Context) ([]model.TaxRates, error)
	ListOverlapping(ctx context.Context, from, to time.Time) ([]model.TaxRates, error)
	UpdateEnd(ctx context.Context, id uuid.UUID, end *time.Time) error
	ReplaceRates(ctx context.Context, rates *model.TaxRates) error
	FindByStart(ctx context.Context, start *time.Time, excludeID *uuid.UUID) (int64, error)
}

type taxRatesRepository struct {
	db *gorm.DB
}

func NewTaxRatesRepository(db *gorm.DB) TaxRatesRepository {
	return &taxRatesRepository{db: db}
}

// open starts first
const scheduleOrder = "start_datetime IS NOT NULL, start_datetime ASC, created_at ASC"

func withRates(db *gorm.DB) *gorm.DB {
	return db.
		Preload("PortTaxRates", func(db *gorm.DB) *gorm.DB { return db.Order(entryOrder) }).
		Preload("PortTaxRates.Port").
		Preload("DisembarkmentTaxRates", func(db *gorm.DB) *gorm.DB { return db.Order(entryOrder) }).
		Preload("DisembarkmentTaxRates.DisembarkmentSite")
}

const entryOrder = "position ASC, created_at ASC, id ASC"

func (r *taxRatesRepository) Create(ctx context.Context, rates *model.TaxRates) error {
	for i := range rates.PortTaxRates {
		rates.PortTaxRates[i].Position = i
	}
	for i := range rates.DisembarkmentTaxRates {
		rates.DisembarkmentTaxRates[i].Position = i
	}
	return GetDB(ctx, r.db).Create(rates).Error
}

// Update saves the schedule's own columns. Child rates go through ReplaceRates.
func (r *taxRatesRepository) Update(ctx context.Context, rates *model.TaxRates) error {
	return GetDB(ctx, r.db).
		Model(&model.TaxRates{}).
		Where("id = ?", rates.ID).
		Select("pax_tax_rate", "start_datetime", "end_datetime", "updated_at").
		Updates(map[string]any{
			"pax_tax_rate":   rates.PaxTaxRate,
			"start_datetime": rates.StartDatetime,
			"end_datetime":   rates.EndDatetime,
			"updated_at":     time.Now(),
		}).Error
}

func (r *taxRatesRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("tax_rates_id = ?", id).Delete(&model.PortTaxRate{}).Error; err != nil {
		return err
	}
	if err := db.Where("tax_rates_id = ?", id).Delete(&model.DisembarkmentTaxRate{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.TaxRates{}).Error
}

func (r *taxRatesRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxRates, error) {
	var rates model.TaxRates
	if err := withRates(GetDB(ctx, r.db)).First(&rates, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rates, nil
}

func (r *taxRatesRepository) List(ctx context.Context, page, limit int) ([]model.TaxRates, int64, error) {
	var rates []model.TaxRates
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.TaxRates{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := withRates(db).Order(scheduleOrder).Offset(offset).Limit(limit).Find(&rates).Error; err != nil {
		return nil, 0, err
	}
	return rates, total, nil
}

// ListAll returns every schedule in start order with its rates loaded.
func (r *taxRatesRepository) ListAll(ctx context.Context) ([]model.TaxRates, error) {
	var rates []model.TaxRates
	if err := withRates(GetDB(ctx, r.db)).Order(scheduleOrder).Find(&rates).Error; err != nil {
		return nil, err
	}
	model.SortTaxRates(rates)
	return rates, nil
}

// ListOverlapping returns the schedules in force at some instant of [from, to].
func (r *taxRatesRepository) ListOverlapping(ctx context.Context, from, to time.Time) ([]model.TaxRates, error) {
	var rates []model.TaxRates
	if err := withRates(GetDB(ctx, r.db)).
		Where("start_datetime IS NULL OR start_datetime <= ?", to).
		Where("end_datetime IS NULL OR end_datetime > ?", from).
		Order(scheduleOrder).
		Find(&rates).Error; err != nil {
		return nil, err
	}
	model.SortTaxRates(rates)
	return rates, nil
}

func (r *taxRatesRepository) UpdateEnd(ctx context.Context, id uuid.UUID, end *time.Time) error {
	return GetDB(ctx, r.db).Model(&model.TaxRates{}).Where("id = ?", id).Update("end_datetime", end).Error
}

// ReplaceRates swaps the schedule's port and disembarkment rates for the ones
// on rates.
func (r *taxRatesRepository) ReplaceRates(ctx context.Context, rates *model.TaxRates) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("tax_rates_id = ?", rates.ID).Delete(&model.PortTaxRate{}).Error; err != nil {
		return err
	}
	if err := db.Where("tax_rates_id = ?", rates.ID).Delete(&model.DisembarkmentTaxRate{}).Error; err != nil {
		return err
	}
	for i := range rates.PortTaxRates {
		rates.PortTaxRates[i].ID = uuid.Nil
		rates.PortTaxRates[i].TaxRatesID = rates.ID
		rates.PortTaxRates[i].Position = i
	}
	for i := range rates.DisembarkmentTaxRates {
		rates.DisembarkmentTaxRates[i].ID = uuid.Nil
		rates.DisembarkmentTaxRates[i].TaxRatesID = rates.ID
		rates.DisembarkmentTaxRates[i].Position = i
	}
	if len(rates.PortTaxRates) > 0 {
		if err := db.Omit("Port").Create(&rates.PortTaxRates).Error; err != nil {
			return err
		}
	}
	if len(rates.DisembarkmentTaxRates) > 0 {
		if err := db.Omit("DisembarkmentSite").Create(&rates.DisembarkmentTaxRates).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByStart counts schedules starting at start. A nil start matches the
// open-ended schedule.
func (r *taxRatesRepository) FindByStart(ctx context.Context, start *time.Time, excludeID *uuid.UUID) (int64, error) {
	var count int64
	query := GetDB(ctx, r.db).Model(&model.TaxRates{})
	if start == nil {
		query = query.Where("start_datetime IS NULL")
	} else {
		query = query.Where("start_datetime = ?", *start)
	}
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
