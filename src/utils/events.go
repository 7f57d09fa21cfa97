package utils

import (
	"log"
	"time"

	"gatepass/src/config"
	"gatepass/src/db"
	"gatepass/src/models"
	"gatepass/src/types"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

func CreateNewEvent(params *types.CreateEventRequestBody, creatorId uint) (uint, error) {
	dateTime, err := time.Parse(config.TIME_PARSE_FORMAT, params.DateTime)
	if err != nil {
		log.Printf("Error parsing date_time: %s\n", err.Error())
		return 0, err
	}

	status := types.EVENT_DRAFT
	if params.Publish {
		status = types.EVENT_PUBLISHED
	}
	event := models.Event{
		Title:     params.Title,
		Slug:      slug.Make(params.Title),
		Venue:     params.Venue,
		DateTime:  dateTime,
		Status:    status,
		CreatedBy: creatorId,
	}
	if params.About != "" {
		event.About = &params.About
	}

	conn := db.GetDb()
	err = conn.Transaction(func(tx *gorm.DB) error {
		return tx.Create(&event).Error
	})
	if err != nil {
		log.Printf("Error creating event: %s\n", err.Error())
		return 0, err
	}
	return event.ID, nil
}

func CreateTicketType(eventId uint, params *types.CreateTicketTypeRequestBody) (uint, error) {
	tt := models.TicketType{
		EventID:  eventId,
		Name:     params.Name,
		Price:    params.Price,
		Currency: params.Currency,
		Capacity: params.Capacity,
	}
	conn := db.GetDb()
	if err := conn.Create(&tt).Error; err != nil {
		log.Printf("Error creating ticket type for event %d: %s\n", eventId, err.Error())
		return 0, err
	}
	return tt.ID, nil
}

func GetEvents() ([]models.Event, error) {
	conn := db.GetDb()
	events := make([]models.Event, 0)
	err := conn.
		Model(&models.Event{}).
		Preload("TicketTypes").
		Where("status = ?", types.EVENT_PUBLISHED).
		Order("date_time ASC").
		Find(&events).
		Error
	return events, err
}
