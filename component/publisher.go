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

package component

import (
	"context"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/configuration"
	"github.com/insolar/transferhook/connectivity"
	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/app/indexer/broker"
	"github.com/insolar/transferhook/observability"
)

type publisherBackend interface {
	indexer.Publisher
	Close() error
}

func makePublisherBackend(cfg *configuration.Hook, obs *observability.Observability, conn *connectivity.Connectivity) publisherBackend {
	log := obs.Log()
	if conn.AMQP() == nil {
		return broker.NewNoop(log)
	}
	p, err := broker.NewPublisher(log, conn.AMQP(), cfg.Broker.Exchange, cfg.Broker.RoutingKey)
	if err != nil {
		log.Error(errors.Wrap(err, "failed to set up broker publisher"))
		return broker.NewNoop(log)
	}
	return p
}

// makePublisher broadcasts stored transfers. Delivery is at most once: a failed
// batch is counted and dropped, it stays available through the storage.
func makePublisher(obs *observability.Observability, publisher indexer.Publisher) func(context.Context, *batch) {
	log := obs.Log()
	metrics := observability.MakeIndexerMetrics(obs, "published")
	common := observability.MakeCommonMetrics(obs)

	return func(ctx context.Context, b *batch) {
		if b == nil || len(b.transfers) == 0 {
			return
		}
		if err := publisher.Publish(ctx, b.transfers); err != nil {
			common.PublishFailures.Inc()
			log.Error(errors.Wrap(err, "failed to publish whale transfers"))
			return
		}
		metrics.WhaleTransfers.Add(float64(len(b.transfers)))
	}
}
