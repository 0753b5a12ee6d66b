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
	"sync"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/connectivity"
	"github.com/insolar/transferhook/observability"
)

type closer interface {
	Close() error
}

func makeStopper(obs *observability.Observability, conn *connectivity.Connectivity, publisher closer, router *Router) func() {
	log := obs.Log()
	return func() {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := publisher.Close(); err != nil {
				log.Error(errors.Wrapf(err, "failed to close publisher"))
			}
			if err := conn.Close(); err != nil {
				log.Error(err)
			}
		}()

		go func() {
			defer wg.Done()
			router.Stop()
		}()
		wg.Wait()
	}
}
