package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelJobProgress = "optimization_progress"
)

// ProgressMessage 进度消息
type ProgressMessage struct {
	Type           string `json:"type"`
	UserID         int64  `json:"user_id"`
	JobID          int64  `json:"job_id"`
	Status         string `json:"status"`
	ItemsTotal     int    `json:"items_total"`
	ItemsProcessed int    `json:"items_processed"`
	Progress       int    `json:"progress"`
	Message        string `json:"message,omitempty"`
	Error          string `json:"error,omitempty"`
}

// 状态对应的消息
var StatusMessages = map[string]string{
	"pending":  "任务排队中",
	"running":  "正在计算补货参数",
	"complete": "优化完成",
	"failed":   "优化失败",
}

// Publisher Redis 发布者
type Publisher struct {
	client *redis.Client
}

// NewPublisher 创建发布者
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// PublishProgress 发布进度消息
func (p *Publisher) PublishProgress(ctx context.Context, msg *ProgressMessage) error {
	msg.Type = "job_progress"

	// 自动填充进度和消息
	if msg.Progress == 0 && msg.ItemsTotal > 0 {
		msg.Progress = msg.ItemsProcessed * 100 / msg.ItemsTotal
	}
	if msg.Message == "" && msg.Status != "" {
		if message, ok := StatusMessages[msg.Status]; ok {
			msg.Message = message
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal progress message: %w", err)
	}

	return p.client.Publish(ctx, ChannelJobProgress, data).Err()
}

// Subscriber Redis 订阅者
type Subscriber struct {
	client *redis.Client
}

// NewSubscriber 创建订阅者
func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe 订阅进度消息
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*ProgressMessage)) error {
	pubsub := s.client.Subscribe(ctx, ChannelJobProgress)
	defer pubsub.Close()

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var progressMsg ProgressMessage
			if err := json.Unmarshal([]byte(msg.Payload), &progressMsg); err != nil {
				continue // 忽略解析错误
			}

			handler(&progressMsg)
		}
	}
}
