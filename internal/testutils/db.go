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

package testutils

import (
	"fmt"
	"testing"

	"github.com/go-pg/migrations"
	"github.com/go-pg/pg"
	"github.com/ory/dockertest/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const (
	postgresImage = "postgres"
	postgresTag   = "11"
)

var pgOptions = &pg.Options{
	Addr:            "localhost",
	Database:        "transferhook_test_db",
	User:            "postgres",
	Password:        "secret",
	ApplicationName: "transferhook",
}

// SetupDB starts a disposable postgres container and applies every migration
// found in migrationsDir. The returned func stops the container.
func SetupDB(migrationsDir string) (*pg.DB, pg.Options, func()) {
	log := logrus.WithField("component", "testutils")

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not connect to docker: %s", err)
	}

	resource, err := pool.Run(
		postgresImage, postgresTag,
		[]string{
			"POSTGRES_DB=" + pgOptions.Database,
			"POSTGRES_PASSWORD=" + pgOptions.Password,
		},
	)
	if err != nil {
		log.Panicf("Could not start resource: %s", err)
	}

	purge := func() {
		log.Info("removing container")
		if err := pool.Purge(resource); err != nil {
			log.Errorf("failed to purge docker pool: %s", err)
		}
	}

	options := *pgOptions
	options.Addr = fmt.Sprintf("%s:%s", options.Addr, resource.GetPort("5432/tcp"))

	var db *pg.DB
	err = pool.Retry(func() error {
		db = pg.Connect(&options)
		_, err := db.Exec("select 1")
		return err
	})
	if err != nil {
		purge()
		log.Panicf("Could not start postgres: %s", err)
	}

	cleaner := func() {
		log.Info("shutting down db")
		if err := db.Close(); err != nil {
			log.Errorf("failed to close db: %s", err)
		}
		purge()
	}

	if err := migrate(db, migrationsDir); err != nil {
		cleaner()
		log.Panic(err)
	}
	return db, options, cleaner
}

func migrate(db *pg.DB, dir string) error {
	collection := migrations.NewCollection()
	if _, _, err := collection.Run(db, "init"); err != nil {
		return errors.Wrap(err, "could not init migrations")
	}
	if err := collection.DiscoverSQLMigrations(dir); err != nil {
		return errors.Wrap(err, "failed to read migrations")
	}
	if _, _, err := collection.Run(db, "up"); err != nil {
		return errors.Wrap(err, "could not migrate")
	}
	return nil
}

func TruncateTables(t *testing.T, db *pg.DB, models []interface{}) {
	for _, m := range models {
		_, err := db.Model(m).Exec("TRUNCATE TABLE ?TableName CASCADE")
		require.NoError(t, err)
	}
}
