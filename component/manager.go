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
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/configuration"
	"github.com/insolar/transferhook/connectivity"
	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
	"github.com/insolar/transferhook/observability"
)

// Manager runs the indexing pipeline: fetch receipts after the last stored slot,
// collect whale transfers, store them, then publish what was stored.
type Manager struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	log     *logrus.Logger
	init    func() *state
	fetch   func(context.Context, *state) *raw
	collect func(*raw) *batch
	store   func(*batch, *state) bool
	publish func(context.Context, *batch)
	stop    func()
	sleep   sleepCounter

	router *Router
}

func Prepare(
	cfg *configuration.Hook,
	obs *observability.Observability,
	conn *connectivity.Connectivity,
	receipts indexer.ReceiptFetcher,
	program pubkey.PublicKey,
) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	router := NewRouter(cfg.Listen, obs)
	publisher := makePublisherBackend(cfg, obs, conn)
	m := &Manager{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		log:    obs.Log(),
		stop:   makeStopper(obs, conn, publisher, router),
		router: router,
	}
	if !cfg.Indexer.Enabled {
		return m
	}
	m.init = makeIniter(obs, conn.PG())
	m.fetch = makeFetcher(cfg, obs, receipts)
	m.collect = makeCollector(obs, program)
	m.store = makeStorer(cfg, obs, conn.PG())
	m.publish = makePublisher(obs, publisher)
	m.sleep = NewSleepManager(cfg)
	return m
}

func (m *Manager) Start() {
	m.router.Start()
	if m.init == nil {
		m.log.Info("indexer is disabled")
		close(m.done)
		return
	}
	go func() {
		defer close(m.done)

		s := m.init()
		for m.ctx.Err() == nil {
			m.run(m.ctx, s)
		}
	}()
}

func (m *Manager) Stop() {
	m.cancel()
	<-m.done
	m.stop()
}

func (m *Manager) run(ctx context.Context, s *state) {
	start := time.Now()
	raw := m.fetch(ctx, s)
	b := m.collect(raw)
	if m.store(b, s) {
		m.publish(ctx, b)
	}

	sleepTime := m.sleep.Count(raw, time.Since(start))
	m.log.Debug("Sleep: ", sleepTime)
	select {
	case <-ctx.Done():
	case <-time.After(sleepTime):
	}
}

type raw struct {
	receipts []*ledger.Receipt
}

type batch struct {
	slots     []*indexer.Slot
	transfers []*indexer.WhaleTransfer
}

type state struct {
	last uint64
}
