package lib

import (
	"encoding/json"
	"log"
	"os"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// KafkaProduceMessage publishes a JSON payload to a topic. Used for the
// local email queue; deployed environments go through SQS instead.
func KafkaProduceMessage(clientId string, topic string, payload map[string]any) error {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": os.Getenv("KAFKA_BROKER"),
		"client.id":         clientId,
		"acks":              "all",
	})
	if err != nil {
		log.Printf("[kafka] Error creating producer: %s\n", err.Error())
		return err
	}
	defer p.Close()

	value, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[kafka] Error marshalling payload: %s\n", err.Error())
		return err
	}

	err = p.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          value,
	}, nil)
	if err != nil {
		log.Printf("[kafka] Error producing to %s: %s\n", topic, err.Error())
		return err
	}
	return nil
}
