package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/DianaLeoTang/DT-Study-Companion/internal/dto"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService runs ingest requests published over the in-process event
// bus, so HTTP-triggered rebuilds return immediately while indexing happens in
// the background.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	ingestService IIngestService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestService IIngestService,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		ingestService: ingestService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestBookMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing ingest request: %s v%s (force=%v)",
		payload.BookName, payload.Version, payload.Force)

	report := cs.ingestService.IngestBook(ctx, payload.BookName, payload.Version, payload.Force)
	if report.Error != "" {
		// Ingest failures are terminal per request; retrying the same broken
		// document would loop forever.
		log.Printf("[ERROR] Ingest failed for %s v%s: %s", payload.BookName, payload.Version, report.Error)
		msg.Ack()
		return
	}

	log.Printf("[SUCCESS] Collection %s ready with %d chunks", report.Collection, report.ChunkCount)
	msg.Ack()
}
