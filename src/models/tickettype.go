package models

import "gatepass/src/types"

// TicketType is a purchasable category with finite capacity. QuantitySold
// only ever grows, and only through the issuance engine's atomic increment;
// it must never exceed Capacity.
type TicketType struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	EventID      uint    `json:"event_id,omitempty"`
	Name         string  `json:"name,omitempty"`
	Price        float32 `json:"price"`
	Currency     string  `json:"currency,omitempty"`
	Capacity     uint    `json:"capacity"`
	QuantitySold uint    `json:"quantity_sold"`

	Event Event `json:"event,omitempty"`

	types.Timestamps
}

func (t *TicketType) Remaining() uint {
	if t.QuantitySold >= t.Capacity {
		return 0
	}
	return t.Capacity - t.QuantitySold
}
