package boot

import (
	"log"

	"gatepass/src/common"
	"gatepass/src/config"
	"gatepass/src/db"
	"gatepass/src/lib"
	"gatepass/src/models"
	"gatepass/src/types"
	"gatepass/src/utils"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	conn := db.GetDb()

	err := conn.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.TicketType{},
		&models.Order{},
		&models.OrderItem{},
		&models.Ticket{},
		&models.TicketTransfer{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
	return conn
}

// InitScheduler starts the stale-transfer sweep. The coordinator itself
// never expires transfers; this job drives its cancel primitive on a timer.
func InitScheduler() {
	ttl := config.TransferTTL()
	if ttl == 0 {
		log.Println("[Scheduler] TRANSFER_TTL_HOURS not set, sweep disabled")
		return
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	id, err := lib.CreateCronJob(func() {
		if _, err := utils.CancelStaleTransfers(ttl); err != nil {
			log.Printf("[Scheduler] Transfer sweep failed: %s\n", err.Error())
		}
	}, ttl/4)
	if err != nil {
		log.Printf("[Scheduler] Could not schedule transfer sweep: %s\n", err.Error())
		return
	}
	log.Printf("[Scheduler] Transfer sweep scheduled: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		return
	}
	if err := sched.Shutdown(); err != nil {
		log.Printf("[Scheduler] Error shutting down: %s\n", err.Error())
	}
}

// InitConsumers drains the deployed email queue. Locally emails ride the
// kafka topic and an external worker delivers them.
func InitConsumers() {
	if config.API_ENV == string(types.Local) {
		return
	}
	common.EmailQueueConsumer()
}
