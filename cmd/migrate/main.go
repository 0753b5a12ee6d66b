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
	"github.com/go-pg/migrations"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/insolar/transferhook/configuration"
	"github.com/insolar/transferhook/internal/dbconn"
	"github.com/insolar/transferhook/observability"
)

var (
	migrationDir = pflag.String("dir", "scripts/migrations", "directory with migrations")
	doInit       = pflag.Bool("init", false, "perform db init (for empty db)")
)

func main() {
	cfg := configuration.Migrate{}.Default()
	params := configuration.Params{
		EnvPrefix: "migrate",
		Flags:     pflag.CommandLine,
	}
	if err := configuration.Load(params, cfg); err != nil {
		panic(err)
	}
	log := observability.Make(cfg.Log).Log()
	configuration.PrintConfig(log, cfg)

	db, err := dbconn.Connect(cfg.DB)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer db.Close()
	if err := dbconn.Ping(db, cfg.DB, log); err != nil {
		log.Fatal(errors.Wrap(err, "database is unreachable"))
	}

	migrationCollection := migrations.NewCollection()
	if *doInit {
		_, _, err := migrationCollection.Run(db, "init")
		if err != nil {
			log.Fatal(errors.Wrap(err, "Could not init migrations"))
		}
	}

	err = migrationCollection.DiscoverSQLMigrations(*migrationDir)
	if err != nil {
		log.Fatal(errors.Wrap(err, "Failed to read migrations"))
	}

	oldVersion, newVersion, err := migrationCollection.Run(db, "up")
	if err != nil {
		log.Fatal(errors.Wrap(err, "Could not migrate"))
	}
	log.Infof("migrated successfully from version %d to %d", oldVersion, newVersion)
}
