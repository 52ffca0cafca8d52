package ws

import "encoding/json"

// Envelope is the wire frame for every event in both directions:
// a name plus a JSON payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound event names.
const (
	EventPrivateMessage = "privateMessage"
	EventGetMessages    = "getMessages"
	EventTyping         = "typing"
)

// Outbound event names (EventPrivateMessage and EventTyping are reused;
// userOnline/userOffline come from the presence package).
const EventMessageHistory = "messageHistory"

type privateMessageRequest struct {
	RecipientID string `json:"recipientId"`
	Message     string `json:"message"`
}

type getMessagesRequest struct {
	OtherUserID string `json:"otherUserId"`
}

type typingRequest struct {
	RecipientID string `json:"recipientId"`
	IsTyping    bool   `json:"isTyping"`
}

func marshalEnvelope(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
