package mailer

import (
	"encoding/json"
	"fmt"
	"os"

	"gatepass/src/lib"
	"gatepass/src/types"
)

// NewMailerMessage enqueues a transactional email. Locally messages go to
// the kafka email topic; deployed environments use the SQS email queue
// drained by common.EmailQueueConsumer. Callers treat failures as
// best-effort: a lost email never rolls back state.
func NewMailerMessage(input *lib.SendMailInput) error {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	apiEnv := os.Getenv("API_ENV")
	emailBody := map[string]any{
		"from":      input.From,
		"from-name": input.FromName,
		"to":        input.To,
		"reply-to":  input.ReplyTo,
		"body":      input.Body,
		"html":      input.Html,
		"subject":   input.Subject,
	}
	if apiEnv == string(types.Local) {
		if err := lib.KafkaProduceMessage("emails", emailQueue, emailBody); err != nil {
			return fmt.Errorf("error sending message to queue: %s", err.Error())
		}
		return nil
	}
	body, err := json.Marshal(&emailBody)
	if err != nil {
		return err
	}
	if err := lib.SQSProduceMessage(emailQueue, string(body)); err != nil {
		return fmt.Errorf("error sending message to queue: %s", err.Error())
	}
	return nil
}
