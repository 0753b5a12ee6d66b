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

package connectivity

import (
	"github.com/go-pg/pg"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/insolar/transferhook/configuration"
	"github.com/insolar/transferhook/internal/dbconn"
	"github.com/insolar/transferhook/observability"
)

func Make(cfg *configuration.Hook, obs *observability.Observability) *Connectivity {
	log := obs.Log()
	return &Connectivity{
		pg: func() *pg.DB {
			db, err := dbconn.Connect(cfg.DB)
			if err != nil {
				log.Fatal(err.Error())
			}
			return db
		}(),
		amqp: func() *amqp.Connection {
			if cfg.Broker.URL == "" {
				log.Info("broker url is empty, whale transfers will not be published")
				return nil
			}
			conn, err := amqp.Dial(cfg.Broker.URL)
			if err != nil {
				log.Error(errors.Wrap(err, "failed to connect to broker, whale transfers will not be published"))
				return nil
			}
			return conn
		}(),
	}
}

type Connectivity struct {
	pg   *pg.DB
	amqp *amqp.Connection
}

func (c *Connectivity) PG() *pg.DB {
	return c.pg
}

// AMQP is nil when no broker is configured or reachable.
func (c *Connectivity) AMQP() *amqp.Connection {
	return c.amqp
}

func (c *Connectivity) Close() error {
	var result error
	if err := c.pg.Close(); err != nil {
		result = errors.Wrap(err, "failed to close db")
	}
	if c.amqp != nil {
		if err := c.amqp.Close(); err != nil && result == nil {
			result = errors.Wrap(err, "failed to close broker connection")
		}
	}
	return result
}
