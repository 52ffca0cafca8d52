package models

// User is an account record. Password holds the bcrypt hash and is never
// serialized. Online mirrors the presence table and is maintained by it.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"-"`
	Online   bool   `json:"online"`
}

// Contact is the projection of a user shown in another user's contact list.
type Contact struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Online   bool   `json:"online"`
}

// Message is a single private message. Immutable once created; it belongs to
// exactly one conversation. Timestamp is an ISO-8601 UTC string so the copy
// echoed to the sender and the copy delivered to the recipient are
// byte-identical on the wire.
type Message struct {
	ID             string `json:"id"`
	SenderID       string `json:"senderId"`
	SenderUsername string `json:"senderUsername"`
	RecipientID    string `json:"recipientId"`
	Body           string `json:"message"`
	Timestamp      string `json:"timestamp"`
}
