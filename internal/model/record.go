package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryState tracks an upload record through the sender.
type DeliveryState string

const (
	DeliveryPending    DeliveryState = "pending"
	DeliveryAttempting DeliveryState = "attempting"
	DeliverySent       DeliveryState = "sent"
	DeliveryFailed     DeliveryState = "failed"
)

// UploadRecord pairs a snapshot with its recommendation for transmission.
// The loop creates it Pending; the upload client owns it until it reaches
// a terminal state (Sent or Failed) and it is then discarded.
//
// Delivery is at-least-once: a retry after a half-delivered request can
// produce a duplicate row. The record ID is included in the row so the
// spreadsheet side can deduplicate.
type UploadRecord struct {
	ID             string          `json:"id"`
	Snapshot       ReadingSnapshot `json:"snapshot"`
	Recommendation Recommendation  `json:"recommendation"`
	State          DeliveryState   `json:"state"`
	Attempts       int             `json:"attempts"`
	CreatedAt      time.Time       `json:"created_at"`
}

func NewUploadRecord(s ReadingSnapshot, r Recommendation) *UploadRecord {
	return &UploadRecord{
		ID:             uuid.New().String(),
		Snapshot:       s,
		Recommendation: r,
		State:          DeliveryPending,
		CreatedAt:      time.Now().UTC(),
	}
}
