//
// Copyright 2019 Insolar Technologies GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package broker

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/app/indexer"
)

const (
	DefaultExchange   = "hook"
	DefaultRoutingKey = "hook.whale.transfer"
	contentType       = "application/json"
)

// Message is the wire form of a whale transfer. Amounts are decimal strings so
// consumers never lose precision on large values.
type Message struct {
	ID                 string    `json:"id"`
	Slot               uint64    `json:"slot"`
	TxID               string    `json:"tx_id"`
	Index              int       `json:"index"`
	ProgramID          string    `json:"program_id"`
	OriginatingAddress string    `json:"originating_address"`
	TransferAmount     string    `json:"transfer_amount"`
	ObservedAt         time.Time `json:"observed_at"`
}

func NewMessage(t *indexer.WhaleTransfer) *Message {
	return &Message{
		ID:                 t.ID.String(),
		Slot:               t.Slot,
		TxID:               t.TxID.String(),
		Index:              t.Index,
		ProgramID:          t.ProgramID.String(),
		OriginatingAddress: t.OriginatingAddress.String(),
		TransferAmount:     strconv.FormatUint(t.TransferAmount, 10),
		ObservedAt:         t.ObservedAt,
	}
}

// channel is the part of *amqp.Channel the publisher needs.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type Publisher struct {
	log        *logrus.Entry
	ch         channel
	exchange   string
	routingKey string
}

// NewPublisher opens a channel on conn and declares a durable topic exchange.
func NewPublisher(log *logrus.Logger, conn *amqp.Connection, exchange, routingKey string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open amqp channel")
	}
	p, err := newPublisher(log, ch, exchange, routingKey)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(log *logrus.Logger, ch channel, exchange, routingKey string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if routingKey == "" {
		routingKey = DefaultRoutingKey
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(err, "failed to declare exchange %s", exchange)
	}
	return &Publisher{
		log:        log.WithField("component", "broker"),
		ch:         ch,
		exchange:   exchange,
		routingKey: routingKey,
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, transfers []*indexer.WhaleTransfer) error {
	for _, t := range transfers {
		body, err := json.Marshal(NewMessage(t))
		if err != nil {
			return errors.Wrap(err, "failed to marshal whale transfer")
		}
		err = p.ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, amqp.Publishing{
			ContentType:  contentType,
			DeliveryMode: amqp.Persistent,
			MessageId:    t.ID.String(),
			Timestamp:    t.ObservedAt,
			Body:         body,
		})
		if err != nil {
			return errors.Wrapf(err, "failed to publish whale transfer %s", t.ID)
		}
		p.log.WithField("slot", t.Slot).Debugf("published whale transfer %s", t.ID)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// Noop drops every transfer. It stands in when no broker is configured.
type Noop struct {
	log *logrus.Entry
}

func NewNoop(log *logrus.Logger) *Noop {
	return &Noop{log: log.WithField("component", "broker")}
}

func (n *Noop) Publish(_ context.Context, transfers []*indexer.WhaleTransfer) error {
	if len(transfers) > 0 {
		n.log.Debugf("no broker configured, dropped %d whale transfers", len(transfers))
	}
	return nil
}

func (n *Noop) Close() error {
	return nil
}
