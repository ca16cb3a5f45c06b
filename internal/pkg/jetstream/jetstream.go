// Package jetstream has helpers for consuming JetStream messages.
package jetstream

import (
	"strconv"

	"github.com/nats-io/nats.go"
)

const (
	// SyncStreamName is the work queue stream holding user sync tasks.
	SyncStreamName = "runclub-sync"

	// SyncSubjectPrefix is followed by the sync mode, e.g. "SYNC.incremental".
	SyncSubjectPrefix = "SYNC."
)

// Delivery describes where a message sits in its stream, for logging.
type Delivery struct {
	MessageID    string
	Subject      string
	NumDelivered uint64
}

// DeliveryOf reads the delivery metadata of msg. Messages that did not come
// from a JetStream consumer only carry their subject.
func DeliveryOf(msg *nats.Msg) Delivery {
	d := Delivery{Subject: msg.Subject}
	meta, err := msg.Metadata()
	if err != nil {
		return d
	}
	d.MessageID = "seq:" + strconv.FormatUint(meta.Sequence.Stream, 10)
	d.NumDelivered = meta.NumDelivered
	return d
}
