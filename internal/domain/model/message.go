package model

// MessageTypeText is the default message type when the client omits one.
const MessageTypeText = "text"

// Message is the persisted chat message returned by the messaging store.
// The fanout layer treats it as opaque payload for new_message events.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	SenderName     string `json:"senderName,omitempty"`
	Content        string `json:"content"`
	Type           string `json:"type"`
	FileURL        string `json:"fileUrl,omitempty"`
	FileName       string `json:"fileName,omitempty"`
	CreatedAt      int64  `json:"createdAt"`
}
