package domain

import "time"

// Channel is a community chat channel. "General" is created on first use.
type Channel struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// GeneralChannelName is the default community channel
const GeneralChannelName = "General"

// Message is a community message joined with its sender's profile
type Message struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	UserID       string    `json:"user_id"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	SenderName   string    `json:"sender_name,omitempty"`
	SenderAvatar *string   `json:"sender_avatar,omitempty"`
}
