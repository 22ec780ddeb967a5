package entities

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// DatasetChannel is the pub/sub channel dataset refreshes are announced on
const DatasetChannel = "medlookup:dataset"

// DatasetEvent announces that a replica loaded a new dataset version
type DatasetEvent struct {
	ID        string    `json:"id"`
	Version   string    `json:"version"`
	Source    string    `json:"source"`
	Records   int       `json:"records"`
	Publisher string    `json:"publisher,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDatasetEvent describes ds as published by publisher
func NewDatasetEvent(ds *Dataset, publisher string) *DatasetEvent {
	return &DatasetEvent{
		ID:        generateEventID(),
		Version:   ds.Version,
		Source:    ds.Source,
		Records:   ds.Len(),
		Publisher: publisher,
		Timestamp: time.Now(),
	}
}

func generateEventID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return time.Now().Format("20060102150405.000")
	}
	return time.Now().Format("20060102150405") + "-" + hex.EncodeToString(b)
}
