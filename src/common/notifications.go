package common

import (
	"encoding/json"
	"log"
	"os"

	"gatepass/src/lib"
	awslib "gatepass/src/lib/aws"
)

// EmailQueueConsumer drains the transactional email queue and delivers
// over SES when configured, SMTP otherwise. Delivery failures are logged
// and the message is dropped; senders already treat email as best effort.
func EmailQueueConsumer() {
	queue := os.Getenv("EMAIL_QUEUE")
	if queue == "" {
		log.Println("[Email] EMAIL_QUEUE not set, consumer disabled")
		return
	}
	consumer := awslib.NewSQSConsumer(queue, func(payload string) {
		var input lib.SendMailInput
		if err := json.Unmarshal([]byte(payload), &input); err != nil {
			log.Printf("[Email] Discarding malformed message: %s\n", err.Error())
			return
		}
		if os.Getenv("SES_ENABLED") == "true" {
			if err := awslib.SESSendMessage(input.From, input.To, input.Subject, input.Body, input.Html); err != nil {
				log.Printf("[Email] SES delivery failed: %s\n", err.Error())
			}
			return
		}
		if err := lib.SendMail(&input); err != nil {
			log.Printf("[Email] SMTP delivery failed: %s\n", err.Error())
		}
	})
	consumer.Listen()
}
