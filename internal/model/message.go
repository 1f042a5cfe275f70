package model

import "time"

// Message is an immutable record belonging to exactly one chat.
type Message struct {
	ID           string    `json:"messageId"`
	ChatID       string    `json:"-"`
	SenderID     string    `json:"senderId"`
	SenderName   string    `json:"senderName"`
	ReceiverID   string    `json:"receiverId"`
	ReceiverName string    `json:"receiverName"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"`
	IsRead       bool      `json:"isRead"`
}
