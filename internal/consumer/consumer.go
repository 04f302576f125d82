package consumer

import (
	"context"
	"encoding/json"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/Kiranbanna12/xrozen-chat/internal/service"
)

// ingestType marks records other product surfaces put on the chat topic
// to have a system message appended (version uploaded, feedback
// resolved, and so on). Everything else on the topic is this service's
// own journal and is skipped.
const ingestType = "message.ingest"

type ingestRecord struct {
	Type       string `json:"type"`
	ProjectID  string `json:"project_id"`
	SystemType string `json:"system_type"`
	SystemData string `json:"system_data"`
	Content    string `json:"content"`
}

type ChatConsumer struct {
	messages service.IMessageService
	logger   *zap.Logger
}

func NewChatConsumer(messages service.IMessageService, logger *zap.Logger) *ChatConsumer {
	return &ChatConsumer{
		messages: messages,
		logger:   logger,
	}
}

// Setup is run at the beginning of a new session, before ConsumeClaim.
func (c *ChatConsumer) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

// Cleanup is run at the end of a session, once all ConsumeClaim goroutines have exited.
func (c *ChatConsumer) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim processes one partition's records until the session ends.
func (c *ChatConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for record := range claim.Messages() {
		var req ingestRecord
		if err := json.Unmarshal(record.Value, &req); err != nil {
			c.logger.Warn("failed to decode record",
				zap.String("topic", record.Topic),
				zap.Int64("offset", record.Offset),
				zap.Error(err))
			session.MarkMessage(record, "")
			continue
		}

		if req.Type != ingestType {
			// Our own journal events flow through here too.
			session.MarkMessage(record, "")
			continue
		}

		if _, err := c.messages.AppendSystem(session.Context(), req.ProjectID, req.SystemType, req.SystemData, req.Content); err != nil {
			c.logger.Error("failed to append system message",
				zap.String("project_id", req.ProjectID),
				zap.String("system_type", req.SystemType),
				zap.Error(err))
			// Marked anyway so a poison record cannot wedge the partition.
			session.MarkMessage(record, "")
			continue
		}

		session.MarkMessage(record, "")
	}
	return nil
}

// StartConsumer joins the consumer group and keeps consuming until the
// context is cancelled.
func StartConsumer(ctx context.Context, brokers []string, groupID, topic string, consumer *ChatConsumer, logger *zap.Logger) error {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.Strategy = sarama.NewBalanceStrategyRoundRobin()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest

	client, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return err
	}

	go func() {
		defer client.Close()
		for {
			if err := client.Consume(ctx, []string{topic}, consumer); err != nil {
				logger.Error("consumer error", zap.Error(err))
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return nil
}
