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
	"time"

	"github.com/insolar/transferhook/configuration"
)

type sleepCounter interface {
	Count(raw *raw, timeExecuted time.Duration) time.Duration
}

type SleepManager struct {
	cfg *configuration.Hook
}

func NewSleepManager(cfg *configuration.Hook) *SleepManager {
	return &SleepManager{
		cfg: cfg,
	}
}

func (sm *SleepManager) Count(raw *raw, timeExecuted time.Duration) time.Duration {
	if raw == nil {
		return sm.cfg.Indexer.AttemptInterval
	}

	// a full batch means there is a backlog
	if len(raw.receipts) >= sm.cfg.Indexer.BatchSize {
		return sm.cfg.Indexer.FastForwardInterval
	}

	// reducing sleep time by execution time
	sleepTime := sm.cfg.Indexer.AttemptInterval - timeExecuted
	if sleepTime < 0 {
		return 0
	}
	return sleepTime
}
