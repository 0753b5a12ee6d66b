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

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/component"
	"github.com/insolar/transferhook/configuration"
	"github.com/insolar/transferhook/connectivity"
	"github.com/insolar/transferhook/internal/app/api"
	"github.com/insolar/transferhook/internal/app/hook"
	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/app/indexer/postgres"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/sandbox"
	"github.com/insolar/transferhook/internal/dbconn"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
	"github.com/insolar/transferhook/observability"
)

var stop = make(chan os.Signal, 1)

func main() {
	cfg := configuration.Hook{}.Default()
	if err := configuration.Load(configuration.Params{EnvPrefix: "hook"}, cfg); err != nil {
		panic(err)
	}
	obs := observability.Make(cfg.Log)
	log := obs.Log()
	configuration.PrintConfig(log, cfg)

	deriver, err := pubkey.NewDeriver(cfg.Program.CacheSize)
	if err != nil {
		log.Fatal(err)
	}
	program, err := makeProgram(cfg.Program, deriver)
	if err != nil {
		log.Fatal(err)
	}
	log.WithFields(logrus.Fields{
		"program": program.ID(),
		"policy":  program.Options().Policy,
		"scope":   program.Options().Scope,
	}).Info("transfer hook deployed")

	rent := ledger.Rent{
		LamportsPerByteYear: cfg.Ledger.LamportsPerByteYear,
		ExemptionThreshold:  cfg.Ledger.ExemptionThreshold,
	}
	bank := sandbox.NewBank(log, rent, program, deriver)
	client := sandbox.NewClient(bank, program, deriver, log)

	var demo *sandbox.Demo
	if cfg.Ledger.Bootstrap {
		demo, err = client.Bootstrap(context.Background(), cfg.Ledger.Decimals, cfg.Ledger.Supply)
		if err != nil {
			log.Fatal(errors.Wrap(err, "failed to bootstrap sandbox"))
		}
	}

	conn := connectivity.Make(cfg, obs)
	var transfers indexer.WhaleTransferStorage
	if cfg.Indexer.Enabled {
		if err := dbconn.Ping(conn.PG(), cfg.DB, log); err != nil {
			log.Fatal(errors.Wrap(err, "database is unreachable"))
		}
		// The ledger lives in memory, so slots stored by a previous run mean nothing.
		if err := postgres.NewSlotStorage(log, conn.PG()).Reset(); err != nil {
			log.Fatal(err)
		}
		transfers = postgres.NewWhaleTransferStorage(log, conn.PG())
	}

	manager := component.Prepare(cfg, obs, conn, indexer.NewBankFetcher(bank), program.ID())
	manager.Start()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	api.RegisterHandlers(e, api.NewHookServer(log, client, transfers, cfg.API.MaxEvents, demo))
	go func() {
		if err := e.Start(cfg.API.Listen); err != nil && err != http.ErrServerClosed {
			log.Fatal(errors.Wrap(err, "api server failed"))
		}
	}()

	graceful(log, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.Shutdown(ctx); err != nil {
			log.Error(errors.Wrap(err, "failed to stop api server"))
		}
		manager.Stop()
	})
}

func makeProgram(cfg configuration.Program, deriver *pubkey.Deriver) (*hook.Program, error) {
	opts := hook.DefaultOptions()
	var err error
	if opts.Policy, err = hook.ParsePolicy(cfg.Policy); err != nil {
		return nil, err
	}
	if opts.Scope, err = hook.ParseScope(cfg.Scope); err != nil {
		return nil, err
	}
	opts.WhaleUnits = cfg.WhaleUnits

	var id pubkey.PublicKey
	if cfg.ID != "" {
		id, err = pubkey.FromString(cfg.ID)
	} else {
		id, err = pubkey.NewRandom()
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to set program id")
	}
	return hook.NewProgram(id, opts, deriver)
}

func graceful(log *logrus.Logger, that func()) {
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Infof("gracefully stopping...")
	that()
}
