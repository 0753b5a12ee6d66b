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

package ledger

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

const (
	LogPrefix     = "Program log: "
	DataLogPrefix = "Program data: "
)

// ProgramData returns the payload of every "Program data:" line written by the given
// program itself, in log order. Lines written by programs it invoked are skipped.
// Chunks of a single line are concatenated.
func ProgramData(logs []string, program pubkey.PublicKey) ([][]byte, error) {
	var (
		stack []string
		out   [][]byte
	)
	target := program.String()
	for _, line := range logs {
		switch {
		case strings.HasPrefix(line, DataLogPrefix):
			if len(stack) == 0 || stack[len(stack)-1] != target {
				continue
			}
			var payload []byte
			for _, chunk := range strings.Fields(strings.TrimPrefix(line, DataLogPrefix)) {
				raw, err := base64.StdEncoding.DecodeString(chunk)
				if err != nil {
					return nil, errors.Wrapf(err, "malformed program data %q", chunk)
				}
				payload = append(payload, raw...)
			}
			out = append(out, payload)
		case strings.HasPrefix(line, LogPrefix):
			continue
		case strings.HasPrefix(line, "Program "):
			fields := strings.Fields(line)
			if len(fields) < 3 {
				continue
			}
			switch {
			case fields[2] == "invoke":
				stack = append(stack, fields[1])
			case fields[2] == "success" || fields[2] == "failed:":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			}
		}
	}
	return out, nil
}
