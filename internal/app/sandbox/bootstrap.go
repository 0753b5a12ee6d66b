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

package sandbox

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/app/hook"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/app/token"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

const payerLamports = 100 * 1000000000

// NewBank returns a ledger with the token program and the hook program deployed.
func NewBank(log *logrus.Logger, rent ledger.Rent, program *hook.Program, finder resolution.AddressFinder) *ledger.Bank {
	bank := ledger.NewBank(log, rent)
	bank.RegisterProgram(token.ProgramID, token.NewProgram(finder))
	bank.RegisterProgram(program.ID(), program)
	return bank
}

// Demo holds the keys of a ready-to-use hooked mint with two funded holders.
type Demo struct {
	Payer     pubkey.PublicKey `json:"payer"`
	Authority pubkey.PublicKey `json:"authority"`
	Mint      pubkey.PublicKey `json:"mint"`
	Decimals  uint8            `json:"decimals"`
	Alice     pubkey.PublicKey `json:"alice"`
	AliceATA  pubkey.PublicKey `json:"alice_holding"`
	Bob       pubkey.PublicKey `json:"bob"`
	BobATA    pubkey.PublicKey `json:"bob_holding"`
}

// Bootstrap creates a hooked mint, registers it with the hook and gives Alice the
// whole supply.
func (c *Client) Bootstrap(ctx context.Context, decimals uint8, supply uint64) (*Demo, error) {
	keys := make([]pubkey.PublicKey, 4)
	for i := range keys {
		k, err := pubkey.NewRandom()
		if err != nil {
			return nil, err
		}
		keys[i] = k
	}
	d := &Demo{Payer: keys[0], Authority: keys[1], Alice: keys[2], Bob: keys[3], Decimals: decimals}
	c.bank.Airdrop(d.Payer, payerLamports)

	var err error
	if d.Mint, err = c.CreateMint(ctx, d.Payer, d.Authority, decimals); err != nil {
		return nil, err
	}
	if _, err = c.InitializeHook(ctx, d.Payer, d.Mint); err != nil {
		return nil, errors.Wrap(err, "failed to initialize hook")
	}
	if d.AliceATA, err = c.CreateHolding(ctx, d.Payer, d.Mint, d.Alice); err != nil {
		return nil, err
	}
	if d.BobATA, err = c.CreateHolding(ctx, d.Payer, d.Mint, d.Bob); err != nil {
		return nil, err
	}
	if err = c.MintTo(ctx, d.Mint, d.AliceATA, d.Authority, supply); err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"mint":     d.Mint,
		"decimals": decimals,
		"alice":    d.AliceATA,
		"bob":      d.BobATA,
	}).Info("sandbox mint is ready")
	return d, nil
}
