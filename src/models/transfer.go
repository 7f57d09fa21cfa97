package models

import "gatepass/src/types"

// TicketTransfer is a pending/accepted/cancelled request to reassign a
// ticket. pending is the only non-terminal state.
type TicketTransfer struct {
	ID         uint                 `gorm:"primarykey" json:"id"`
	TicketID   uint                 `gorm:"index" json:"ticket_id,omitempty"`
	FromUserID uint                 `json:"from_user_id,omitempty"`
	ToEmail    string               `json:"to_email,omitempty"`
	Code       string               `gorm:"uniqueIndex;size:10" json:"-"`
	Status     types.TransferStatus `gorm:"default:'pending'" json:"status,omitempty"`

	Ticket   Ticket `json:"ticket,omitempty"`
	FromUser User   `gorm:"foreignKey:from_user_id" json:"-"`

	types.Timestamps
}
