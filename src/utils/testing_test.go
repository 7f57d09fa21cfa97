package utils

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"gatepass/src/db"
	"gatepass/src/models"
	"gatepass/src/types"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a throwaway sqlite database and points the package
// singleton at it. The busy timeout lets concurrent writers queue instead
// of failing, which the webhook race tests rely on.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	t.Setenv("API_ENV", "local")
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", filepath.Join(t.TempDir(), "gatepass_test.db"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.TicketType{},
		&models.Order{},
		&models.OrderItem{},
		&models.Ticket{},
		&models.TicketTransfer{},
	))
	db.NewDB(conn)
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{UID: email, Name: "Test User", Email: email}
	require.NoError(t, conn.Create(&user).Error)
	return &user
}

func seedEvent(t *testing.T, conn *gorm.DB, startsIn time.Duration) *models.Event {
	t.Helper()
	event := models.Event{
		Title:    "Gatepass Live",
		Slug:     "gatepass-live",
		Venue:    "Main Hall",
		DateTime: time.Now().Add(startsIn),
		Status:   types.EVENT_PUBLISHED,
	}
	require.NoError(t, conn.Create(&event).Error)
	return &event
}

func seedTicketType(t *testing.T, conn *gorm.DB, eventId uint, capacity, sold uint) *models.TicketType {
	t.Helper()
	tt := models.TicketType{
		EventID:      eventId,
		Name:         "General Admission",
		Price:        25,
		Currency:     "USD",
		Capacity:     capacity,
		QuantitySold: sold,
	}
	require.NoError(t, conn.Create(&tt).Error)
	return &tt
}

func seedOrder(t *testing.T, conn *gorm.DB, userId, eventId uint, status types.OrderStatus, items map[uint]uint) *models.Order {
	t.Helper()
	order := models.Order{UserID: userId, EventID: eventId, Status: status}
	require.NoError(t, conn.Create(&order).Error)
	for ttId, qty := range items {
		item := models.OrderItem{OrderID: order.ID, TicketTypeID: ttId, Qty: qty}
		require.NoError(t, conn.Create(&item).Error)
	}
	require.NoError(t, conn.Preload("Items").First(&order, order.ID).Error)
	return &order
}

func seedTicket(t *testing.T, conn *gorm.DB, eventId, ttId, ownerId uint) *models.Ticket {
	t.Helper()
	code, err := GenerateCode(TicketCodeLength)
	require.NoError(t, err)
	ticket := models.Ticket{
		Code:         code,
		EventID:      eventId,
		TicketTypeID: ttId,
		OwnerID:      ownerId,
	}
	require.NoError(t, conn.Create(&ticket).Error)
	return &ticket
}
