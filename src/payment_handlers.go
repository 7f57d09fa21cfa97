package main

import (
	"errors"
	"io"
	"log"
	"net/http"

	"gatepass/src/types"
	"gatepass/src/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// paymentWebhookRoute receives provider notifications. Deliveries are
// at-least-once and may arrive duplicated or in parallel; every outcome
// that should stop redelivery answers 200, and only transient failures
// answer 5xx so the provider retries.
func paymentWebhookRoute(g *gin.Engine) *gin.RouterGroup {
	apiv1 := apiv1Group(g)
	apiv1.POST("/webhook/payments", func(ctx *gin.Context) {
		requestID := uuid.New()
		payload, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading request body: %s\n", err.Error())
			ctx.Status(http.StatusServiceUnavailable)
			return
		}
		eventType := gjson.GetBytes(payload, "type").String()
		paymentId := gjson.GetBytes(payload, "data.id").String()
		log.Printf("[PaymentEvent] %s type=%s id=%s\n", requestID, eventType, paymentId)

		if eventType != "payment" || paymentId == "" {
			// Not a payment notification; acknowledge so the sender stops.
			ctx.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		result, err := utils.ProcessPaymentNotification(ctx.Request.Context(), paymentId)
		if err != nil {
			switch {
			case errors.Is(err, types.ErrUpstreamUnavailable):
				ctx.Status(http.StatusServiceUnavailable)
			case errors.Is(err, types.ErrOrderNotFound):
				// Stale or malformed reference: acknowledging prevents a
				// redelivery storm; an operator can find it in the logs.
				ctx.JSON(http.StatusOK, gin.H{"received": true})
			default:
				// Includes issuance and persistence failures: retryable.
				log.Printf("[PaymentEvent] Processing failed for %s: %s\n", paymentId, err.Error())
				ctx.Status(http.StatusInternalServerError)
			}
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"received": true, "status": result.Status})
	})
	return apiv1
}
