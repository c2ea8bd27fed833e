package events

import "time"

// ItemCreated is published after every durable transaction write. Edits
// reuse the same tag; subscribers cannot currently tell the two apart.
const ItemCreated = "ITEM_CREATED"

// TransactionStream is the redis stream all transaction events go to.
const TransactionStream = "transaction.events"

// Event is the envelope written to the stream. Data carries the persisted
// transaction record as stored, id included.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
