package utils

import (
	"errors"
	"fmt"
	"log"

	"gatepass/src/db"
	"gatepass/src/models"
	"gatepass/src/types"

	"gorm.io/gorm"
)

// CreateOrder admits a purchase intent against remaining capacity and
// records it as a pending order. This is the only place capacity is
// checked; issuance later trusts the admission and never re-checks.
func CreateOrder(userId uint, params *types.CreateOrderRequestBody) (uint, error) {
	conn := db.GetDb()
	var orderId uint
	err := conn.Transaction(func(tx *gorm.DB) error {
		var event models.Event
		if err := tx.
			Model(&models.Event{}).
			Where("id = ?", params.EventID).
			First(&event).
			Error; err != nil {
			return err
		}

		order := models.Order{
			UserID:  userId,
			EventID: event.ID,
			Status:  types.ORDER_PENDING,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range params.Items {
			var tt models.TicketType
			if err := tx.
				Model(&models.TicketType{}).
				Where("id = ? AND event_id = ?", item.TicketTypeID, event.ID).
				First(&tt).
				Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("ticket type %d not found for event %d", item.TicketTypeID, event.ID)
				}
				return err
			}
			if tt.Remaining() < item.Qty {
				return fmt.Errorf("not enough capacity for %s: %d left", tt.Name, tt.Remaining())
			}
			orderItem := models.OrderItem{
				OrderID:      order.ID,
				TicketTypeID: tt.ID,
				Qty:          item.Qty,
				UnitPrice:    tt.Price,
				Subtotal:     tt.Price * float32(item.Qty),
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
		}
		orderId = order.ID
		return nil
	})
	if err != nil {
		log.Printf("Error creating order for user %d: %s\n", userId, err.Error())
		return 0, err
	}
	return orderId, nil
}

func GetOwnOrders(userId uint) ([]models.Order, error) {
	conn := db.GetDb()
	orders := make([]models.Order, 0)
	err := conn.
		Model(&models.Order{}).
		Preload("Items").
		Preload("Event").
		Where("user_id = ?", userId).
		Order("created_at DESC").
		Find(&orders).
		Error
	return orders, err
}

func GetOrder(orderId uint, userId uint) (*models.Order, error) {
	conn := db.GetDb()
	var order models.Order
	if err := conn.
		Model(&models.Order{}).
		Preload("Items").
		Preload("Items.TicketType").
		Preload("Event").
		Where("id = ? AND user_id = ?", orderId, userId).
		First(&order).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}
