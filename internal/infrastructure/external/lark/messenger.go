package lark

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkIm "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"
)

// receiveIDEmail addresses a Lark user by the email on their account
const receiveIDEmail = "email"

// MessageSender delivers one IM message
type MessageSender interface {
	SendMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error)
}

// SDKSender sends messages through the Lark IM API
type SDKSender struct {
	client *lark.Client
	logger *zap.Logger
}

// NewSDKSender creates a new SDKSender
func NewSDKSender(client *lark.Client, logger *zap.Logger) *SDKSender {
	return &SDKSender{
		client: client,
		logger: logger,
	}
}

// SendMessage sends a message and returns its id
func (s *SDKSender) SendMessage(ctx context.Context, receiveIDType, receiveID, msgType, content string) (string, error) {
	req := larkIm.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDType).
		Body(larkIm.NewCreateMessageReqBodyBuilder().
			ReceiveId(receiveID).
			MsgType(msgType).
			Content(content).
			Build()).
		Build()

	resp, err := s.client.Im.Message.Create(ctx, req)
	if err != nil {
		s.logger.Error("Failed to send message",
			zap.String("receive_id", receiveID),
			zap.Error(err))
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		s.logger.Error("API returned failure",
			zap.String("receive_id", receiveID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return "", fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	messageID := ""
	if resp.Data != nil && resp.Data.MessageId != nil {
		messageID = *resp.Data.MessageId
	}
	return messageID, nil
}

// Messenger sends plain text messages addressed by email
type Messenger struct {
	sender MessageSender
	logger *zap.Logger
}

// NewMessenger creates a new Messenger
func NewMessenger(sender MessageSender, logger *zap.Logger) *Messenger {
	return &Messenger{
		sender: sender,
		logger: logger,
	}
}

// SendText sends text to the Lark user registered with email
func (m *Messenger) SendText(ctx context.Context, email, text string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if text == "" {
		return fmt.Errorf("text cannot be empty")
	}

	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to marshal message content: %w", err)
	}

	id, err := m.sender.SendMessage(ctx, receiveIDEmail, email, "text", string(content))
	if err != nil {
		return err
	}

	m.logger.Debug("Message sent", zap.String("email", email), zap.String("message_id", id))
	return nil
}
