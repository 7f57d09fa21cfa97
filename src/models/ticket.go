package models

import "gatepass/src/types"

// Ticket is one issued unit of admission. Rows are created only by the
// issuance engine, never twice for the same OrderItem unit.
type Ticket struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Code         string `gorm:"uniqueIndex;size:12" json:"code,omitempty"`
	OrderItemID  uint   `gorm:"index" json:"order_item_id,omitempty"`
	EventID      uint   `json:"event_id,omitempty"`
	TicketTypeID uint   `json:"ticket_type_id,omitempty"`
	OwnerID      uint   `gorm:"index" json:"owner_id,omitempty"`
	// TransferStatus mirrors the pending TicketTransfer for fast listing
	// queries. It is also the serialization point: initiating a transfer
	// compare-and-sets this from empty to pending, so at most one pending
	// transfer can ever exist per ticket.
	TransferStatus string `gorm:"default:''" json:"transfer_status,omitempty"`

	OrderItem  OrderItem  `json:"order_item,omitempty"`
	Event      Event      `json:"event,omitempty"`
	TicketType TicketType `json:"ticket_type,omitempty"`
	Owner      User       `gorm:"foreignKey:owner_id" json:"owner,omitempty"`

	types.Timestamps
}
