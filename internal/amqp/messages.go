package amqp

import (
	"encoding/json"
	"time"
)

// SpendRecordMessage carries one provider billing line into the ingestion
// queue. Dates travel as YYYY-MM-DD strings so the payload stays readable
// in queue tooling.
type SpendRecordMessage struct {
	OrgID       string    `json:"orgId"`
	AccountID   string    `json:"accountId,omitempty"`
	Provider    string    `json:"provider"`
	Service     string    `json:"service"`
	Date        string    `json:"date"`
	AmountCents int64     `json:"amountCents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewSpendRecordMessage(orgID, accountID, provider, service, date string, amountCents int64) *SpendRecordMessage {
	return &SpendRecordMessage{
		OrgID:       orgID,
		AccountID:   accountID,
		Provider:    provider,
		Service:     service,
		Date:        date,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *SpendRecordMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SpendRecordMessageFromJSON creates a message from JSON bytes
func SpendRecordMessageFromJSON(data []byte) (*SpendRecordMessage, error) {
	var msg SpendRecordMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// AnomalyAlertMessage is emitted when a daily spend total crosses the
// detection threshold. Downstream consumers decide how to notify.
type AnomalyAlertMessage struct {
	OrgID       string    `json:"orgId"`
	Date        string    `json:"date"`
	AmountCents int64     `json:"amountCents"`
	MeanCents   int64     `json:"meanCents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewAnomalyAlertMessage(orgID, date string, amountCents, meanCents int64) *AnomalyAlertMessage {
	return &AnomalyAlertMessage{
		OrgID:       orgID,
		Date:        date,
		AmountCents: amountCents,
		MeanCents:   meanCents,
		Timestamp:   time.Now(),
	}
}

func (m *AnomalyAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func AnomalyAlertMessageFromJSON(data []byte) (*AnomalyAlertMessage, error) {
	var msg AnomalyAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
