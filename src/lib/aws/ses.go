package aws

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

func GetSESClient() *ses.Client {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Could not load default config: %s\n", err.Error())
		return nil
	}
	svc := ses.NewFromConfig(cfg)
	return svc
}

func SESSendMessage(from string, to []string, subject string, body string, html bool) error {
	c := GetSESClient()
	content := &types.Content{Data: aws.String(body)}
	msgBody := &types.Body{Text: content}
	if html {
		msgBody = &types.Body{Html: content}
	}
	input := &ses.SendEmailInput{
		Destination: &types.Destination{ToAddresses: to},
		Source:      aws.String(from),
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body:    msgBody,
		},
	}
	out, err := c.SendEmail(context.TODO(), input)
	if err != nil {
		log.Printf("Error sending email: %s\n", err.Error())
		return err
	}
	log.Printf("Sent email with id: %s\n", *out.MessageId)
	return nil
}
