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
	"github.com/go-pg/pg/orm"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/app/indexer/postgres"
	"github.com/insolar/transferhook/observability"
)

func makeIniter(obs *observability.Observability, db orm.DB) func() *state {
	logger := obs.Log()
	return func() *state {
		st := &state{last: MustKnowSlot(logger, db)}
		logger.Debugf("State restored: %+v", *st)
		return st
	}
}

// MustKnowSlot returns the last stored slot, or 0 on an empty database.
func MustKnowSlot(log *logrus.Logger, db orm.DB) uint64 {
	slots := postgres.NewSlotStorage(log, db)
	s, err := slots.Last()
	if err == indexer.ErrNotFound {
		return 0
	}
	if err != nil {
		panic(errors.Wrap(err, "Something wrong with slots in DB or DB itself"))
	}
	return s.Number
}
