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

package configuration

import (
	"time"

	"github.com/insolar/transferhook/internal/pkg/cycle"
)

type Hook struct {
	Log     Log
	Program Program
	Ledger  Ledger
	Indexer Indexer
	DB      DB
	Broker  Broker
	API     API
	// Metrics and health check.
	Listen string
}

type Log struct {
	Level  string
	Format string
}

type Program struct {
	// Base58 program id. A random id is generated when empty.
	ID         string
	Policy     string
	Scope      string
	WhaleUnits uint64
	// Size of the derived address cache.
	CacheSize int
}

type Ledger struct {
	LamportsPerByteYear uint64
	ExemptionThreshold  float64
	// Creates a hooked demo mint with two holders on start.
	Bootstrap bool
	Decimals  uint8
	Supply    uint64
}

type Indexer struct {
	Enabled   bool
	BatchSize int
	// Interval between fetching receipts
	AttemptInterval time.Duration
	// Used while catching up on a backlog
	FastForwardInterval time.Duration
}

type DB struct {
	URL      string
	PoolSize int
	Attempts cycle.Limit
	// Interval between store in db failed attempts
	AttemptInterval time.Duration
}

type Broker struct {
	// Empty URL disables publishing.
	URL        string
	Exchange   string
	RoutingKey string
}

type API struct {
	Listen string
	// Upper bound of the events page.
	MaxEvents int
}

type Migrate struct {
	Log Log
	DB  DB
}

func (Hook) Default() *Hook {
	return &Hook{
		Log: Log{
			Level:  "debug",
			Format: "text",
		},
		Program: Program{
			Policy:     "threshold",
			Scope:      "global",
			WhaleUnits: 1000,
			CacheSize:  10000,
		},
		Ledger: Ledger{
			LamportsPerByteYear: 3480,
			ExemptionThreshold:  2.0,
			Bootstrap:           true,
			Decimals:            9,
			Supply:              10000000 * 1000000000,
		},
		Indexer: Indexer{
			Enabled:             true,
			BatchSize:           500,
			AttemptInterval:     time.Second,
			FastForwardInterval: time.Second / 10,
		},
		DB: DB{
			URL:             "postgres://postgres@localhost/postgres?sslmode=disable",
			PoolSize:        20,
			Attempts:        5,
			AttemptInterval: 3 * time.Second,
		},
		Broker: Broker{
			Exchange:   "hook",
			RoutingKey: "hook.whale.transfer",
		},
		API: API{
			Listen:    ":8080",
			MaxEvents: 1000,
		},
		Listen: ":8888",
	}
}

func (Migrate) Default() *Migrate {
	d := Hook{}.Default()
	return &Migrate{Log: d.Log, DB: d.DB}
}
