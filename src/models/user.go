package models

import "gatepass/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	UID   string `gorm:"uniqueIndex" json:"uid,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	Role  string `gorm:"default:'user'" json:"role,omitempty"`

	types.Timestamps
}
