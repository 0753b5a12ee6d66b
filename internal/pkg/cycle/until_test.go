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

package cycle

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestUntilConnectionError(t *testing.T) {
	log := logrus.New()

	t.Run("retries_connection_errors", func(t *testing.T) {
		calls := 0
		err := UntilConnectionError(func() error {
			calls++
			if calls < 3 {
				return errors.New("dial tcp: connection refused")
			}
			return nil
		}, time.Nanosecond, 5, log)
		require.NoError(t, err)
		require.Equal(t, 3, calls)
	})

	t.Run("gives_up", func(t *testing.T) {
		calls := 0
		err := UntilConnectionError(func() error {
			calls++
			return errors.New("unexpected EOF")
		}, time.Nanosecond, 2, log)
		require.Error(t, err)
		require.Equal(t, 2, calls)
	})

	t.Run("other_errors_are_final", func(t *testing.T) {
		calls := 0
		err := UntilConnectionError(func() error {
			calls++
			return errors.New("duplicate key value violates unique constraint")
		}, time.Nanosecond, INFINITY, log)
		require.Error(t, err)
		require.Equal(t, 1, calls)
	})
}
