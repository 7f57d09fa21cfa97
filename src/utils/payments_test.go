package utils

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gatepass/src/lib"
	"gatepass/src/models"
	"gatepass/src/types"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubProvider serves a fixed payment detail for every payment id.
func stubProvider(t *testing.T, status string, orderRef string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"pay_1","status":%q,"external_reference":%q}`, status, orderRef)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("PAYMENT_API_URL", srv.URL)
	t.Setenv("PAYMENT_API_TOKEN", "test-token")
	return srv
}

func TestMapPaymentStatus(t *testing.T) {
	cases := []struct {
		provider string
		want     types.OrderStatus
		ok       bool
	}{
		{types.PAYMENT_APPROVED, types.ORDER_PAID, true},
		{types.PAYMENT_PENDING, types.ORDER_PENDING, true},
		{types.PAYMENT_IN_PROCESS, types.ORDER_PENDING, true},
		{types.PAYMENT_REJECTED, types.ORDER_CANCELLED, true},
		{types.PAYMENT_CANCELLED, types.ORDER_CANCELLED, true},
		{"charged_back", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, ok := MapPaymentStatus(c.provider)
		assert.Equal(t, c.ok, ok, c.provider)
		assert.Equal(t, c.want, got, c.provider)
	}
}

func TestProcessPaymentNotificationApprovedIssuesTickets(t *testing.T) {
	conn := newTestDB(t)
	user := seedUser(t, conn, "buyer@example.com")
	event := seedEvent(t, conn, 72*time.Hour)
	tt := seedTicketType(t, conn, event.ID, 100, 10)
	order := seedOrder(t, conn, user.ID, event.ID, types.ORDER_PENDING, map[uint]uint{tt.ID: 3})
	stubProvider(t, types.PAYMENT_APPROVED, fmt.Sprint(order.ID))

	result, err := ProcessPaymentNotification(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, types.ORDER_PAID, result.Status)

	var fresh models.Order
	require.NoError(t, conn.First(&fresh, order.ID).Error)
	assert.Equal(t, types.ORDER_PAID, fresh.Status)
	require.NotNil(t, fresh.PaymentID)
	assert.Equal(t, "pay_1", *fresh.PaymentID)

	var tickets int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&tickets).Error)
	assert.EqualValues(t, 3, tickets)

	var freshType models.TicketType
	require.NoError(t, conn.First(&freshType, tt.ID).Error)
	assert.Equal(t, uint(13), freshType.QuantitySold)
}

func TestProcessPaymentNotificationDuplicateDeliveryNeverIssues(t *testing.T) {
	conn := newTestDB(t)
	user := seedUser(t, conn, "buyer@example.com")
	event := seedEvent(t, conn, 72*time.Hour)
	tt := seedTicketType(t, conn, event.ID, 100, 10)
	// An order that is already paid, e.g. after a delivery whose issuance
	// failed mid-way. Redelivery must not issue; the gap is an operator
	// reconciliation.
	order := seedOrder(t, conn, user.ID, event.ID, types.ORDER_PAID, map[uint]uint{tt.ID: 3})
	stubProvider(t, types.PAYMENT_APPROVED, fmt.Sprint(order.ID))

	result, err := ProcessPaymentNotification(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, types.ORDER_PAID, result.Status)

	var tickets int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&tickets).Error)
	assert.Zero(t, tickets, "a redelivery must do nothing beyond acknowledging")

	var freshType models.TicketType
	require.NoError(t, conn.First(&freshType, tt.ID).Error)
	assert.Equal(t, uint(10), freshType.QuantitySold)
}

func TestProcessPaymentNotificationDuplicateDelivery(t *testing.T) {
	conn := newTestDB(t)
	user := seedUser(t, conn, "buyer@example.com")
	event := seedEvent(t, conn, 72*time.Hour)
	tt := seedTicketType(t, conn, event.ID, 100, 10)
	order := seedOrder(t, conn, user.ID, event.ID, types.ORDER_PENDING, map[uint]uint{tt.ID: 3})
	stubProvider(t, types.PAYMENT_APPROVED, fmt.Sprint(order.ID))

	first, err := ProcessPaymentNotification(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.True(t, first.Applied)

	second, err := ProcessPaymentNotification(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Equal(t, types.ORDER_PAID, second.Status)

	var tickets int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&tickets).Error)
	assert.EqualValues(t, 3, tickets, "redelivery must not mint more tickets")

	var freshType models.TicketType
	require.NoError(t, conn.First(&freshType, tt.ID).Error)
	assert.Equal(t, uint(13), freshType.QuantitySold)
}

func TestProcessPaymentNotificationConcurrentDeliveries(t *testing.T) {
	conn := newTestDB(t)
	user := seedUser(t, conn, "buyer@example.com")
	event := seedEvent(t, conn, 72*time.Hour)
	tt := seedTicketType(t, conn, event.ID, 100, 0)
	order := seedOrder(t, conn, user.ID, event.ID, types.ORDER_PENDING, map[uint]uint{tt.ID: 2})
	stubProvider(t, types.PAYMENT_APPROVED, fmt.Sprint(order.ID))

	const deliveries = 4
	var wg sync.WaitGroup
	results := make([]*NotificationResult, deliveries)
	errs := make([]error, deliveries)
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = ProcessPaymentNotification(context.Background(), "pay_1")
		}(i)
	}
	wg.Wait()

	applied := 0
	for i := 0; i < deliveries; i++ {
		require.NoError(t, errs[i])
		if results[i].Applied {
			applied++
		}
	}
	assert.Equal(t, 1, applied, "exactly one delivery wins the transition")

	var tickets int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&tickets).Error)
	assert.EqualValues(t, 2, tickets)

	var freshType models.TicketType
	require.NoError(t, conn.First(&freshType, tt.ID).Error)
	assert.Equal(t, uint(2), freshType.QuantitySold)
}

func TestProcessPaymentNotificationLostRaceRecordsMarker(t *testing.T) {
	conn := newTestDB(t)
	user := seedUser(t, conn, "buyer@example.com")
	event := seedEvent(t, conn, 72*time.Hour)
	tt := seedTicketType(t, conn, event.ID, 100, 0)
	order := seedOrder(t, conn, user.ID, event.ID, types.ORDER_PENDING, map[uint]uint{tt.ID: 1})
	stubProvider(t, types.PAYMENT_APPROVED, fmt.Sprint(order.ID))

	rdb, rmock := redismock.NewClientMock()
	lib.NewRedisClient(rdb)
	t.Cleanup(func() { lib.NewRedisClient(nil) })
	rmock.ExpectSetEx("payments:processed:pay_1", types.PAYMENT_APPROVED, 24*time.Hour).SetVal("OK")

	// A concurrent delivery lands between the order read and the status
	// write: flip the row right after the processor loads it so the
	// compare-and-set misses.
	flipped := false
	err := conn.Callback().Query().After("gorm:query").Register("flip_order_status", func(d *gorm.DB) {
		if flipped || d.Statement.Table != "orders" {
			return
		}
		flipped = true
		conn.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE orders SET status = ? WHERE id = ?", types.ORDER_PAID, order.ID)
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Callback().Query().Remove("flip_order_status") })

	result, err := ProcessPaymentNotification(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, types.ORDER_PAID, result.Status)
	assert.NoError(t, rmock.ExpectationsWereMet(), "the processed marker is recorded for lost races too")

	var tickets int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&tickets).Error)
	assert.Zero(t, tickets, "the losing delivery must not issue")
}

func TestProcessPaymentNotificationRejectedCancelsOrder(t *testing.T) {
	conn := newTestDB(t)
	user := seedUser(t, conn, "buyer@example.com")
	event := seedEvent(t, conn, 72*time.Hour)
	tt := seedTicketType(t, conn, event.ID, 100, 0)
	order := seedOrder(t, conn, user.ID, event.ID, types.ORDER_PENDING, map[uint]uint{tt.ID: 1})
	stubProvider(t, types.PAYMENT_REJECTED, fmt.Sprint(order.ID))

	result, err := ProcessPaymentNotification(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, types.ORDER_CANCELLED, result.Status)

	var tickets int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&tickets).Error)
	assert.Zero(t, tickets)
}

func TestProcessPaymentNotificationLateApprovalOnCancelled(t *testing.T) {
	conn := newTestDB(t)
	user := seedUser(t, conn, "buyer@example.com")
	event := seedEvent(t, conn, 72*time.Hour)
	tt := seedTicketType(t, conn, event.ID, 100, 0)
	order := seedOrder(t, conn, user.ID, event.ID, types.ORDER_CANCELLED, map[uint]uint{tt.ID: 1})
	stubProvider(t, types.PAYMENT_APPROVED, fmt.Sprint(order.ID))

	result, err := ProcessPaymentNotification(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, types.ORDER_CANCELLED, result.Status)

	var fresh models.Order
	require.NoError(t, conn.First(&fresh, order.ID).Error)
	assert.Equal(t, types.ORDER_CANCELLED, fresh.Status, "cancelled is terminal")

	var tickets int64
	require.NoError(t, conn.Model(&models.Ticket{}).Count(&tickets).Error)
	assert.Zero(t, tickets)
}

func TestProcessPaymentNotificationUnknownStatusIsIgnored(t *testing.T) {
	conn := newTestDB(t)
	user := seedUser(t, conn, "buyer@example.com")
	event := seedEvent(t, conn, 72*time.Hour)
	tt := seedTicketType(t, conn, event.ID, 100, 0)
	order := seedOrder(t, conn, user.ID, event.ID, types.ORDER_PENDING, map[uint]uint{tt.ID: 1})
	stubProvider(t, "charged_back", fmt.Sprint(order.ID))

	result, err := ProcessPaymentNotification(context.Background(), "pay_1")
	require.NoError(t, err)
	assert.False(t, result.Applied)
	assert.Equal(t, types.ORDER_PENDING, result.Status)
}

func TestProcessPaymentNotificationUnknownOrder(t *testing.T) {
	newTestDB(t)
	stubProvider(t, types.PAYMENT_APPROVED, "424242")

	_, err := ProcessPaymentNotification(context.Background(), "pay_1")
	assert.ErrorIs(t, err, types.ErrOrderNotFound)
}

func TestProcessPaymentNotificationMalformedReference(t *testing.T) {
	newTestDB(t)
	stubProvider(t, types.PAYMENT_APPROVED, "not-a-number")

	_, err := ProcessPaymentNotification(context.Background(), "pay_1")
	assert.ErrorIs(t, err, types.ErrOrderNotFound)
}

func TestProcessPaymentNotificationProviderDown(t *testing.T) {
	newTestDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("PAYMENT_API_URL", srv.URL)

	_, err := ProcessPaymentNotification(context.Background(), "pay_1")
	assert.ErrorIs(t, err, types.ErrUpstreamUnavailable)
}
