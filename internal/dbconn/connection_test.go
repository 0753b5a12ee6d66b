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

package dbconn

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/insolar/transferhook/configuration"
)

func TestConnect(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		cfg := configuration.Hook{}.Default()
		db, err := Connect(cfg.DB)
		require.NoError(t, err)
		require.NotNil(t, db)
		require.Equal(t, cfg.DB.PoolSize, db.Options().PoolSize)
		require.NoError(t, db.Close())
	})

	t.Run("bad_url_hides_password", func(t *testing.T) {
		_, err := Connect(configuration.DB{URL: "postgres://user:secret@%zz/db"})
		require.Error(t, err)
		require.NotContains(t, err.Error(), "secret")
	})
}
