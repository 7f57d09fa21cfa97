package models

import (
	"time"

	"gatepass/src/types"
)

type Event struct {
	ID        uint              `gorm:"primarykey" json:"id"`
	Title     string            `json:"title,omitempty"`
	Slug      string            `gorm:"index" json:"slug,omitempty"`
	About     *string           `json:"about,omitempty"`
	Venue     string            `json:"venue,omitempty"`
	DateTime  time.Time         `json:"date_time,omitempty"`
	Status    types.EventStatus `gorm:"default:'draft'" json:"status,omitempty"`
	CreatedBy uint              `json:"created_by,omitempty"`

	Creator     User         `gorm:"foreignKey:created_by" json:"-"`
	TicketTypes []TicketType `json:"ticket_types,omitempty"`

	types.Timestamps
}
