package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"moviehouse/internal/domain"
)

// BookingRecordRepository persists the kiosk's local copies of submitted
// bookings. The cinema server stays the source of truth for the booking
// itself; these rows only back the redirect landings and support lookups.
type BookingRecordRepository struct {
	db *gorm.DB
}

func NewBookingRecordRepository(db *gorm.DB) *BookingRecordRepository {
	return &BookingRecordRepository{db: db}
}

type bookingRecordModel struct {
	BookingID    int64     `gorm:"column:booking_id;primaryKey"`
	SessionID    int64     `gorm:"column:session_id"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email"`
	Phone        string    `gorm:"column:phone"`
	SeatIDs      string    `gorm:"column:seat_ids;type:text"`
	TotalAmount  float64   `gorm:"column:total_amount"`
	PaymentState string    `gorm:"column:payment_state"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (bookingRecordModel) TableName() string { return "booking_records" }

// Migrate creates the local record table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&bookingRecordModel{})
}

func toModel(rec *domain.BookingRecord) (*bookingRecordModel, error) {
	seatIDs, err := json.Marshal(rec.SeatIDs)
	if err != nil {
		return nil, fmt.Errorf("encode seat ids: %w", err)
	}
	return &bookingRecordModel{
		BookingID:    rec.BookingID,
		SessionID:    rec.SessionID,
		Name:         rec.Name,
		Email:        rec.Email,
		Phone:        rec.Phone,
		SeatIDs:      string(seatIDs),
		TotalAmount:  rec.TotalAmount,
		PaymentState: string(rec.PaymentState),
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func toDomainRecord(m bookingRecordModel) *domain.BookingRecord {
	var seatIDs []int64
	// a corrupt row still resolves; the seat list is display-only here
	_ = json.Unmarshal([]byte(m.SeatIDs), &seatIDs)

	return &domain.BookingRecord{
		BookingID:    m.BookingID,
		SessionID:    m.SessionID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		SeatIDs:      seatIDs,
		TotalAmount:  m.TotalAmount,
		PaymentState: domain.PaymentState(m.PaymentState),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *BookingRecordRepository) Save(ctx context.Context, rec *domain.BookingRecord) error {
	m, err := toModel(rec)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *BookingRecordRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingRecord, error) {
	var m bookingRecordModel
	if err := r.db.WithContext(ctx).First(&m, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return toDomainRecord(m), nil
}

func (r *BookingRecordRepository) SetPaymentState(ctx context.Context, bookingID int64, state domain.PaymentState) (*domain.BookingRecord, error) {
	var m bookingRecordModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "booking_id = ?", bookingID).Error; err != nil {
			return err
		}
		if err := tx.Model(&m).Update("payment_state", string(state)).Error; err != nil {
			return err
		}
		m.PaymentState = string(state)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDomainRecord(m), nil
}
