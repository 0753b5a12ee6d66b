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

package token

import (
	"encoding/binary"
	"math/bits"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/app/instruction"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

// Program keeps mints and holding accounts. Transfers of a mint that carries a
// transfer hook call the hook's Execute with the resolved extra accounts.
type Program struct {
	finder resolution.AddressFinder
}

func NewProgram(finder resolution.AddressFinder) *Program {
	return &Program{finder: finder}
}

func (p *Program) Process(host ledger.Host, programID pubkey.PublicKey, accounts []*ledger.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return ErrInvalidInstruction
	}
	args := data[1:]
	switch data[0] {
	case tagTransferHookExtension:
		if len(args) != 1+2*pubkey.Size || args[0] != transferHookInitialize {
			return ErrInvalidInstruction
		}
		var authority, hookProgram pubkey.PublicKey
		copy(authority[:], args[1:33])
		copy(hookProgram[:], args[33:65])
		return p.initializeTransferHook(programID, accounts, authority, hookProgram)
	case tagInitializeMint2:
		if len(args) < 2+pubkey.Size {
			return ErrInvalidInstruction
		}
		var authority, freeze pubkey.PublicKey
		copy(authority[:], args[1:33])
		if args[33] == 1 {
			if len(args) != 2+2*pubkey.Size {
				return ErrInvalidInstruction
			}
			copy(freeze[:], args[34:66])
		}
		return p.initializeMint(programID, accounts, args[0], authority, freeze)
	case tagInitializeAccount3:
		if len(args) != pubkey.Size {
			return ErrInvalidInstruction
		}
		var owner pubkey.PublicKey
		copy(owner[:], args)
		return p.initializeAccount(programID, accounts, owner)
	case tagMintTo:
		if len(args) != 8 {
			return ErrInvalidInstruction
		}
		return p.mintTo(programID, accounts, binary.LittleEndian.Uint64(args))
	case tagTransferChecked:
		if len(args) != 9 {
			return ErrInvalidInstruction
		}
		return p.transferChecked(host, programID, accounts, binary.LittleEndian.Uint64(args[:8]), args[8])
	default:
		return ErrInvalidInstruction
	}
}

func (p *Program) initializeTransferHook(programID pubkey.PublicKey, accounts []*ledger.AccountInfo, authority, hookProgram pubkey.PublicKey) error {
	if len(accounts) < 1 {
		return ledger.ErrNotEnoughAccountKeys
	}
	mintInfo := accounts[0]
	if mintInfo.Owner != programID {
		return ErrIncorrectProgramID
	}
	if len(mintInfo.Data) != MintWithHookSize {
		return errors.Wrapf(ErrInvalidAccountData, "mint %s has no room for the transfer hook extension", mintInfo.Key)
	}
	mint, err := UnpackMint(mintInfo.Data)
	if err != nil {
		return err
	}
	if mint.IsInitialized {
		return ErrAlreadyInUse
	}
	mint.TransferHookAuthority = authority
	mint.TransferHookProgram = hookProgram
	return mint.Pack(mintInfo.Data)
}

func (p *Program) initializeMint(programID pubkey.PublicKey, accounts []*ledger.AccountInfo, decimals uint8, authority, freeze pubkey.PublicKey) error {
	if len(accounts) < 1 {
		return ledger.ErrNotEnoughAccountKeys
	}
	mintInfo := accounts[0]
	if mintInfo.Owner != programID {
		return ErrIncorrectProgramID
	}
	mint, err := UnpackMint(mintInfo.Data)
	if err != nil {
		return err
	}
	if mint.IsInitialized {
		return ErrAlreadyInUse
	}
	mint.MintAuthority = authority
	mint.FreezeAuthority = freeze
	mint.Decimals = decimals
	mint.IsInitialized = true
	return mint.Pack(mintInfo.Data)
}

func (p *Program) initializeAccount(programID pubkey.PublicKey, accounts []*ledger.AccountInfo, owner pubkey.PublicKey) error {
	if len(accounts) < 2 {
		return ledger.ErrNotEnoughAccountKeys
	}
	accInfo, mintInfo := accounts[0], accounts[1]
	if accInfo.Owner != programID || mintInfo.Owner != programID {
		return ErrIncorrectProgramID
	}
	acc, err := UnpackAccount(accInfo.Data)
	if err != nil {
		return err
	}
	if acc.State != AccountUninitialized {
		return ErrAlreadyInUse
	}
	mint, err := UnpackMint(mintInfo.Data)
	if err != nil {
		return err
	}
	if !mint.IsInitialized {
		return errors.Wrapf(ErrUninitializedState, "mint %s", mintInfo.Key)
	}
	acc = &Account{
		Mint:  mintInfo.Key,
		Owner: owner,
		State: AccountInitialized,
	}
	return acc.Pack(accInfo.Data)
}

func (p *Program) mintTo(programID pubkey.PublicKey, accounts []*ledger.AccountInfo, amount uint64) error {
	if len(accounts) < 3 {
		return ledger.ErrNotEnoughAccountKeys
	}
	mintInfo, destInfo, authority := accounts[0], accounts[1], accounts[2]
	if mintInfo.Owner != programID || destInfo.Owner != programID {
		return ErrIncorrectProgramID
	}
	mint, err := UnpackMint(mintInfo.Data)
	if err != nil {
		return err
	}
	dest, err := UnpackAccount(destInfo.Data)
	if err != nil {
		return err
	}
	if !mint.IsInitialized || dest.State == AccountUninitialized {
		return ErrUninitializedState
	}
	if dest.State == AccountFrozen {
		return ErrAccountFrozen
	}
	if dest.Mint != mintInfo.Key {
		return ErrMintMismatch
	}
	if mint.MintAuthority.IsZero() || authority.Key != mint.MintAuthority {
		return ErrOwnerMismatch
	}
	if !authority.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}

	supply, carry := bits.Add64(mint.Supply, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	balance, carry := bits.Add64(dest.Amount, amount, 0)
	if carry != 0 {
		return ErrOverflow
	}
	mint.Supply, dest.Amount = supply, balance
	if err := mint.Pack(mintInfo.Data); err != nil {
		return err
	}
	return dest.Pack(destInfo.Data)
}

func (p *Program) transferChecked(
	host ledger.Host,
	programID pubkey.PublicKey,
	accounts []*ledger.AccountInfo,
	amount uint64,
	decimals uint8,
) error {
	if len(accounts) < 4 {
		return ledger.ErrNotEnoughAccountKeys
	}
	sourceInfo, mintInfo, destInfo, authority := accounts[0], accounts[1], accounts[2], accounts[3]
	for _, info := range []*ledger.AccountInfo{sourceInfo, mintInfo, destInfo} {
		if info.Owner != programID {
			return errors.Wrapf(ErrIncorrectProgramID, "account %s", info.Key)
		}
	}

	source, err := UnpackAccount(sourceInfo.Data)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	dest, err := UnpackAccount(destInfo.Data)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	mint, err := UnpackMint(mintInfo.Data)
	if err != nil {
		return errors.Wrap(err, "mint")
	}
	if source.State == AccountUninitialized || dest.State == AccountUninitialized || !mint.IsInitialized {
		return ErrUninitializedState
	}
	if source.State == AccountFrozen || dest.State == AccountFrozen {
		return ErrAccountFrozen
	}
	if source.Mint != mintInfo.Key || dest.Mint != mintInfo.Key {
		return ErrMintMismatch
	}
	if decimals != mint.Decimals {
		return ErrMintDecimalsMismatch
	}
	if authority.Key != source.Owner {
		return ErrOwnerMismatch
	}
	if !authority.IsSigner {
		return ledger.ErrMissingRequiredSignature
	}
	if source.Amount < amount {
		return ErrInsufficientFunds
	}

	if sourceInfo.Key != destInfo.Key {
		balance, carry := bits.Add64(dest.Amount, amount, 0)
		if carry != 0 {
			return ErrOverflow
		}
		source.Amount -= amount
		dest.Amount = balance
		if err := source.Pack(sourceInfo.Data); err != nil {
			return err
		}
		if err := dest.Pack(destInfo.Data); err != nil {
			return err
		}
	}

	if !mint.HasTransferHook() {
		return nil
	}
	return p.invokeHook(host, mint.TransferHookProgram, accounts, amount)
}

// invokeHook calls Execute on the hook program. The transfer accounts are passed
// read-only. Extra accounts keep the privileges the registry asks for, limited to
// what the caller granted.
func (p *Program) invokeHook(host ledger.Host, hookProgram pubkey.PublicKey, accounts []*ledger.AccountInfo, amount uint64) error {
	source, mint, dest, authority := accounts[0], accounts[1], accounts[2], accounts[3]
	extras := accounts[4:]

	if find(extras, hookProgram) == nil {
		return errors.Wrapf(ErrMissingHookAccount, "hook program %s", hookProgram)
	}
	registryKey, _, err := p.finder.Find(instruction.RegistrySeeds(mint.Key), hookProgram)
	if err != nil {
		return errors.Wrap(err, "failed to derive extra account metas address")
	}
	registry := find(extras, registryKey)
	if registry == nil {
		return errors.Wrapf(ErrMissingHookAccount, "extra account metas %s", registryKey)
	}

	ix := instruction.NewExecute(hookProgram, source.Key, mint.Key, dest.Key, authority.Key, registryKey, amount)
	if len(registry.Data) > 0 {
		metas, err := resolution.Unpack(registry.Data, instruction.ExecuteDiscriminator)
		if err != nil {
			return errors.Wrap(err, "failed to read extra account metas")
		}
		resolver := resolution.NewResolver(p.finder, resolution.InfoData(accounts))
		resolved, err := resolver.Resolve(metas, ix.Data, hookProgram, ix.Accounts)
		if err != nil {
			return err
		}
		for _, meta := range resolved {
			info := find(extras, meta.Key)
			if info == nil {
				return errors.Wrapf(ErrMissingHookAccount, "extra account %s", meta.Key)
			}
			meta.IsSigner = meta.IsSigner && info.IsSigner
			meta.IsWritable = meta.IsWritable && info.IsWritable
			ix.Accounts = append(ix.Accounts, meta)
		}
	}
	return host.InvokeSigned(ix, accounts)
}

func find(infos []*ledger.AccountInfo, key pubkey.PublicKey) *ledger.AccountInfo {
	for _, info := range infos {
		if info.Key == key {
			return info
		}
	}
	return nil
}
