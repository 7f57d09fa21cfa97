package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Env string

const (
	Local      Env = "local"
	Test       Env = "test"
	Production Env = "production"
)

type OrderStatus string

const (
	ORDER_PENDING   OrderStatus = "pending"
	ORDER_PAID      OrderStatus = "paid"
	ORDER_CANCELLED OrderStatus = "cancelled"
)

// Terminal reports whether no further transition out of the status is
// allowed. paid is terminal-success, cancelled is terminal-failure.
func (s OrderStatus) Terminal() bool {
	return s == ORDER_PAID || s == ORDER_CANCELLED
}

// Provider payment status vocabulary, as returned by the payment-detail
// fetch. Anything outside this set is treated as a no-op.
const (
	PAYMENT_APPROVED   = "approved"
	PAYMENT_PENDING    = "pending"
	PAYMENT_IN_PROCESS = "in_process"
	PAYMENT_REJECTED   = "rejected"
	PAYMENT_CANCELLED  = "cancelled"
)

type TransferStatus string

const (
	TRANSFER_PENDING   TransferStatus = "pending"
	TRANSFER_ACCEPTED  TransferStatus = "accepted"
	TRANSFER_CANCELLED TransferStatus = "cancelled"
)

type EventStatus string

const (
	EVENT_DRAFT     EventStatus = "draft"
	EVENT_PUBLISHED EventStatus = "published"
	EVENT_COMPLETED EventStatus = "completed"
)

type CreateEventRequestBody struct {
	Title    string `json:"title" binding:"required"`
	About    string `json:"about,omitempty"`
	Venue    string `json:"venue" binding:"required"`
	DateTime string `json:"date_time" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	Publish  bool   `json:"publish,omitempty"`
}

type CreateTicketTypeRequestBody struct {
	Name     string  `json:"name" binding:"required"`
	Price    float32 `json:"price"`
	Currency string  `json:"currency" binding:"required"`
	Capacity uint    `json:"capacity" binding:"required,min=1"`
}

type OrderLineItem struct {
	TicketTypeID uint `json:"ticket_type" binding:"required"`
	Qty          uint `json:"qty" binding:"required,min=1"`
}

type CreateOrderRequestBody struct {
	EventID uint            `json:"event" binding:"required"`
	Items   []OrderLineItem `json:"items" binding:"required,min=1,dive"`
}

type InitiateTransferRequestBody struct {
	ToEmail string `json:"to_email" binding:"required,email"`
}

type AcceptTransferRequestBody struct {
	Code string `json:"code" binding:"required,len=10"`
}

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

// Handler consumes one raw queue message body.
type Handler func(payload string)
