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

package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/insolar/transferhook/configuration"
)

func TestMake(t *testing.T) {
	obs := Make(configuration.Log{Level: "warn", Format: "json"})
	require.Equal(t, logrus.WarnLevel, obs.Log().Level)
	require.IsType(t, &logrus.JSONFormatter{}, obs.Log().Formatter)

	obs = Make(configuration.Log{Level: "loud"})
	require.Equal(t, logrus.InfoLevel, obs.Log().Level)
}

func TestMakeIndexerMetrics(t *testing.T) {
	obs := Make(configuration.Hook{}.Default().Log)
	metrics := MakeIndexerMetrics(obs, "stored")
	require.NotNil(t, metrics.WhaleTransfers)

	again := MakeIndexerMetrics(obs, "stored")
	require.True(t, metrics.Slots == again.Slots)

	metrics.WhaleTransfers.Add(2)
	families, err := obs.Metrics().Gather()
	require.NoError(t, err)
	names := map[string]float64{}
	for _, f := range families {
		names[f.GetName()] = f.GetMetric()[0].GetCounter().GetValue()
	}
	require.Contains(t, names, "hook_receipts_stored_total")
	require.Equal(t, float64(2), names["hook_whale_transfers_stored_total"])
}

func TestObservability_Gauge(t *testing.T) {
	obs := Make(configuration.Log{Level: "debug"})
	opts := prometheus.GaugeOpts{Name: "hook_test_gauge", Help: "test"}
	g := obs.Gauge(opts)
	require.True(t, g == obs.Gauge(opts))
	require.NotNil(t, MakeCommonMetrics(obs).LastSlot)
}
