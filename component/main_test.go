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

// +build slowtest

package component

import (
	"os"
	"testing"

	"github.com/go-pg/pg"

	"github.com/insolar/transferhook/internal/testutils"
)

var db *pg.DB

func TestMain(t *testing.M) {
	var cleaner func()
	db, _, cleaner = testutils.SetupDB("../scripts/migrations")
	retCode := t.Run()
	cleaner()
	os.Exit(retCode)
}
