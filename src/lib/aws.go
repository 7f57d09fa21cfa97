package lib

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqsTypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

var sqsClient *sqs.Client

func AWSGetSQSClient() *sqs.Client {
	if sqsClient != nil {
		return sqsClient
	}
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Printf("Failed to initialize SQS client: %s\n", err.Error())
		return nil
	}
	sqsClient = sqs.NewFromConfig(cfg)
	return sqsClient
}

func SQSProduceMessage(queue string, body string) error {
	client := AWSGetSQSClient()
	qurl, err := client.GetQueueUrl(context.TODO(), &sqs.GetQueueUrlInput{
		QueueName: aws.String(queue),
	})
	if err != nil {
		log.Printf("Failed to retrieve queue URL for %s: %s\n", queue, err.Error())
		return err
	}
	out, err := client.SendMessage(context.TODO(), &sqs.SendMessageInput{
		QueueUrl:    qurl.QueueUrl,
		MessageBody: aws.String(body),
	})
	if err != nil {
		log.Printf("Could not send message to queue %s: %s\n", queue, err.Error())
		return err
	}
	log.Printf("Message sent to queue %s: %s\n", queue, *out.MessageId)
	return nil
}

func SQSDeleteMessage(c *sqs.Client, qurl *string, msg *sqsTypes.Message) {
	_, err := c.DeleteMessage(context.TODO(), &sqs.DeleteMessageInput{
		QueueUrl:      qurl,
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		log.Printf("Error deleting message from queue: %s\n", err.Error())
		return
	}
}
