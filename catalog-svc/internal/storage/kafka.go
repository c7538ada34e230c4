package storage

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"hotelmenu/catalog-svc/internal/domain"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
}

func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

func (p *KafkaPublisher) PublishEvent(ctx context.Context, event domain.CatalogEvent) error {
	payload, _ := json.Marshal(event)
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.HotelID + ":" + event.BranchID),
		Value: payload,
	})
}
