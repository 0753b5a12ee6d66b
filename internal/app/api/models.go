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

package api

import (
	"time"
)

type ResponsesWhale struct {
	Address            string `json:"address"`
	Mint               string `json:"mint,omitempty"`
	OriginatingAddress string `json:"originating_address"`
	TransferAmount     string `json:"transfer_amount"`
	// Present when the mint, and therefore its decimals, is known.
	UIAmount string `json:"ui_amount,omitempty"`
}

type ResponsesRegistry struct {
	Address     string               `json:"address"`
	Mint        string               `json:"mint"`
	Program     string               `json:"program"`
	Policy      string               `json:"policy"`
	Scope       string               `json:"scope"`
	Decimals    uint8                `json:"decimals"`
	Threshold   string               `json:"threshold,omitempty"`
	ThresholdUI string               `json:"threshold_ui,omitempty"`
	Observation string               `json:"observation,omitempty"`
	Metas       []SchemasAccountMeta `json:"extra_account_metas"`
}

type SchemasAccountMeta struct {
	Kind       string   `json:"kind"`
	Address    string   `json:"address,omitempty"`
	Program    *int     `json:"program_index,omitempty"`
	Seeds      []string `json:"seeds,omitempty"`
	IsSigner   bool     `json:"is_signer"`
	IsWritable bool     `json:"is_writable"`
}

type SchemasWhaleTransfer struct {
	ID                 string    `json:"id"`
	Slot               uint64    `json:"slot"`
	TxID               string    `json:"tx_id"`
	Index              int       `json:"index"`
	ProgramID          string    `json:"program_id"`
	OriginatingAddress string    `json:"originating_address"`
	TransferAmount     string    `json:"transfer_amount"`
	ObservedAt         time.Time `json:"observed_at"`
}

type ResponsesEvents []SchemasWhaleTransfer

type RequestsTransfer struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Owner       string `json:"owner"`
	Amount      string `json:"amount"`
}

type ResponsesTransfer struct {
	Slot    uint64   `json:"slot"`
	TxID    string   `json:"tx_id"`
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	Logs    []string `json:"logs"`
	Whale   bool     `json:"whale"`
}

type GetEventsParams struct {
	Limit *int `json:"limit,omitempty"`
}
