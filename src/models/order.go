package models

import "gatepass/src/types"

// Order groups one or more OrderItems for one event. Status moves
// pending→paid or pending→cancelled and never leaves a terminal state;
// every status write goes through the compare-and-set in utils so two
// concurrent webhook deliveries cannot both observe "not yet paid".
type Order struct {
	ID      uint              `gorm:"primarykey" json:"id"`
	UserID  uint              `json:"user_id,omitempty"`
	EventID uint              `json:"event_id,omitempty"`
	Status  types.OrderStatus `gorm:"default:'pending'" json:"status,omitempty"`
	// PaymentID is the provider's payment reference, unset until the first
	// notification resolves against the provider API.
	PaymentID *string `json:"payment_id,omitempty"`

	User  *User       `gorm:"foreignKey:user_id" json:"user,omitempty"`
	Event *Event      `gorm:"foreignKey:event_id" json:"event,omitempty"`
	Items []OrderItem `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`

	types.Timestamps
}

// OrderItem is immutable once created.
type OrderItem struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	OrderID      uint    `json:"order_id,omitempty"`
	TicketTypeID uint    `json:"ticket_type_id,omitempty"`
	Qty          uint    `json:"qty,omitempty"`
	UnitPrice    float32 `json:"unit_price,omitempty"`
	Subtotal     float32 `json:"subtotal,omitempty"`

	TicketType TicketType `json:"ticket_type,omitempty"`

	types.Timestamps
}
