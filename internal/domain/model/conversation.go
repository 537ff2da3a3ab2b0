package model

// Conversation is the membership view returned by the conversation store.
// Only the member identities matter to the presence and fanout logic.
type Conversation struct {
	ID      string `json:"id"`
	Name    string `json:"name,omitempty"`
	Type    string `json:"type"`
	Members []User `json:"members"`
}
