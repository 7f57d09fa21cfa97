package utils

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gatepass/src/db"
	"gatepass/src/lib"
	"gatepass/src/models"
	"gatepass/src/types"

	"gorm.io/gorm"
)

// NotificationResult reports what a webhook delivery did. Applied is false
// for duplicates, unknown provider statuses and races lost to a concurrent
// delivery.
type NotificationResult struct {
	OrderID uint              `json:"order_id"`
	Status  types.OrderStatus `json:"status"`
	Applied bool              `json:"applied"`
}

// MapPaymentStatus maps the provider vocabulary onto order statuses. The
// second return is false for statuses the pipeline does not act on.
func MapPaymentStatus(provider string) (types.OrderStatus, bool) {
	switch provider {
	case types.PAYMENT_APPROVED:
		return types.ORDER_PAID, true
	case types.PAYMENT_PENDING, types.PAYMENT_IN_PROCESS:
		return types.ORDER_PENDING, true
	case types.PAYMENT_REJECTED, types.PAYMENT_CANCELLED:
		return types.ORDER_CANCELLED, true
	}
	return "", false
}

// TransitionOrderStatus is the compare-and-set every order status write
// goes through: the row is updated only if its status still equals
// expected. The boolean reports whether the write applied, which is the
// idempotency guard for concurrent and redelivered webhooks.
func TransitionOrderStatus(conn *gorm.DB, orderId uint, expected, next types.OrderStatus, paymentId *string) (bool, error) {
	updates := map[string]any{"status": next}
	if paymentId != nil {
		updates["payment_id"] = *paymentId
	}
	res := conn.
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderId, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ProcessPaymentNotification turns a provider webhook into a durable order
// transition. The webhook body is untrusted; the payment is re-fetched from
// the provider and only the fetched status drives the transition. A first
// transition into paid triggers issuance; everything else is a no-op.
func ProcessPaymentNotification(ctx context.Context, paymentId string) (*NotificationResult, error) {
	detail, err := lib.FetchPaymentDetail(ctx, paymentId)
	if err != nil {
		return nil, err
	}

	orderId, err := strconv.Atoi(detail.ExternalReference)
	if err != nil {
		log.Printf("[Payments] Payment %s carries malformed reference %q\n", paymentId, detail.ExternalReference)
		return nil, types.ErrOrderNotFound
	}

	conn := db.GetDb()
	var order models.Order
	if err := conn.
		Model(&models.Order{}).
		Where("id = ?", orderId).
		First(&order).
		Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("[Payments] Payment %s references unknown order %d\n", paymentId, orderId)
			return nil, types.ErrOrderNotFound
		}
		return nil, err
	}

	result := &NotificationResult{OrderID: order.ID, Status: order.Status}

	next, ok := MapPaymentStatus(detail.Status)
	if !ok {
		log.Printf("[Payments] Ignoring payment %s with status %q\n", paymentId, detail.Status)
		return result, nil
	}

	if next == order.Status {
		// Duplicate delivery. The CAS below already decided this payment's
		// outcome on the first delivery; redeliveries only refresh the
		// processed marker. Issuance gaps from a partial failure are an
		// operator reconciliation, never a webhook side effect.
		log.Printf("[Payments] Duplicate delivery for payment %s, order %d already %s\n", paymentId, order.ID, order.Status)
		markPaymentProcessed(ctx, paymentId, detail.Status)
		return result, nil
	}

	if order.Status.Terminal() {
		// Includes a late "approved" for a cancelled order: cancelled is
		// terminal, the payment is left for operator reconciliation.
		log.Printf("[Payments] Payment %s wants %s -> %s on order %d; refusing to leave terminal state\n",
			paymentId, order.Status, next, order.ID)
		return result, nil
	}

	applied, err := TransitionOrderStatus(conn, order.ID, order.Status, next, &detail.ID)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent delivery moved the order first.
		log.Printf("[Payments] Lost transition race for order %d, payment %s\n", order.ID, paymentId)
		if err := conn.Model(&models.Order{}).Where("id = ?", order.ID).First(&order).Error; err == nil {
			result.Status = order.Status
		}
		markPaymentProcessed(ctx, paymentId, detail.Status)
		return result, nil
	}

	result.Status = next
	result.Applied = true
	log.Printf("[Payments] Order %d: %s -> %s (payment %s)\n", order.ID, order.Status, next, paymentId)

	if next == types.ORDER_PAID {
		if _, err := IssueTickets(order.ID); err != nil {
			return result, err
		}
		// Post-commit side effect: a lost email never reverses the order.
		go func(orderId uint) {
			if err := SendOrderConfirmation(orderId); err != nil {
				log.Printf("[Payments] Confirmation email for order %d failed: %s\n", orderId, err.Error())
			}
		}(order.ID)
	}
	markPaymentProcessed(ctx, paymentId, detail.Status)
	return result, nil
}

// markPaymentProcessed drops a short-lived marker into redis so operators
// can see duplicate deliveries. Purely observational: the CAS above is what
// makes redelivery safe.
func markPaymentProcessed(ctx context.Context, paymentId string, status string) {
	rd := lib.GetRedisClient()
	if rd == nil {
		return
	}
	key := fmt.Sprintf("payments:processed:%s", paymentId)
	if err := rd.SetEx(ctx, key, status, 24*time.Hour).Err(); err != nil {
		log.Printf("[Payments] Could not record processed marker for %s: %s\n", paymentId, err.Error())
	}
}
