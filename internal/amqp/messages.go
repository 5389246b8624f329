package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"cassa/internal/core"
)

// EventSaleRecorded is the routing key of SaleRecordedMessage.
const EventSaleRecorded = "sale.recorded"

// SaleRecordedMessage announces a sale appended to the ledger. It carries the sale
// id and a summary; consumers load the full record from the ledger.
type SaleRecordedMessage struct {
	Event       string    `json:"event"`
	SaleID      string    `json:"sale_id"`
	TotalCents  int64     `json:"total_cents"`
	Lines       int       `json:"lines"`
	RecordedAt  time.Time `json:"recorded_at"`
	PublishedAt time.Time `json:"published_at"`
}

func NewSaleRecordedMessage(sale core.Sale) *SaleRecordedMessage {
	return &SaleRecordedMessage{
		Event:       EventSaleRecorded,
		SaleID:      sale.ID,
		TotalCents:  sale.Total.Cents,
		Lines:       len(sale.Lines),
		RecordedAt:  sale.Timestamp,
		PublishedAt: time.Now().UTC(),
	}
}

func (m *SaleRecordedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SaleRecordedMessageFromJSON decodes a message and rejects ones without a sale id.
func SaleRecordedMessageFromJSON(data []byte) (*SaleRecordedMessage, error) {
	var msg SaleRecordedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.SaleID == "" {
		return nil, fmt.Errorf("message has no sale id")
	}
	return &msg, nil
}
