// Package events publishes record store events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/chainprofile/internal/chain"
	"github.com/nats-io/nats.go"
)

// ProfileUpdated is emitted after a block containing a successful upsert
// commits.
type ProfileUpdated struct {
	Event       string        `json:"event"`
	Address     chain.Address `json:"address"`
	TxHash      chain.Hash    `json:"tx_hash"`
	BlockNumber uint64        `json:"block_number"`
	Profile     chain.Profile `json:"profile"`
}

type Publisher interface {
	PublishProfileUpdated(ctx context.Context, ev ProfileUpdated) error
	Close() error
}

// natsConn is the part of *nats.Conn the publisher needs.
type natsConn interface {
	Publish(subj string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

var natsConnect = func(url string, opts ...nats.Option) (natsConn, error) {
	return nats.Connect(url, opts...)
}

type NATSPublisher struct {
	conn    natsConn
	subject string
}

// NewNATSPublisher connects to url. Reconnects are retried forever so a NATS
// restart does not take the node down.
func NewNATSPublisher(url, subject string) (*NATSPublisher, error) {
	conn, err := natsConnect(url,
		nats.Name("chainprofile-node"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSPublisher{conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) PublishProfileUpdated(ctx context.Context, ev ProfileUpdated) error {
	ev.Event = chain.EventProfileUpdated
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	return p.conn.FlushWithContext(ctx)
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// Nop drops every event. Used when no NATS URL is configured.
type Nop struct{}

func (Nop) PublishProfileUpdated(context.Context, ProfileUpdated) error { return nil }
func (Nop) Close() error                                                { return nil }
