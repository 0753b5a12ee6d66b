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
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

var NativeLoaderID = pubkey.MustFromString("NativeLoader1111111111111111111111111111111")

type Transaction struct {
	ID           uuid.UUID
	Signers      []pubkey.PublicKey
	Instructions []Instruction
}

func NewTransaction(signers []pubkey.PublicKey, instructions ...Instruction) *Transaction {
	return &Transaction{
		ID:           uuid.New(),
		Signers:      signers,
		Instructions: instructions,
	}
}

// Receipt is the outcome of one processed transaction. Failed transactions keep
// their logs, but none of their account changes.
type Receipt struct {
	Slot uint64
	TxID uuid.UUID
	Logs []string
	Err  error
}

func (r *Receipt) Success() bool {
	return r.Err == nil
}

// Bank holds committed account state and executes transactions one at a time.
// Each transaction runs against a private working set that is committed only when
// every instruction succeeds.
type Bank struct {
	mu       sync.RWMutex
	log      *logrus.Logger
	rent     Rent
	accounts map[pubkey.PublicKey]*Account
	programs map[pubkey.PublicKey]Program
	receipts []*Receipt
}

func NewBank(log *logrus.Logger, rent Rent) *Bank {
	b := &Bank{
		log:      log,
		rent:     rent,
		accounts: make(map[pubkey.PublicKey]*Account),
		programs: make(map[pubkey.PublicKey]Program),
	}
	b.RegisterProgram(SystemProgramID, systemProgram{})
	return b
}

func (b *Bank) Rent() Rent {
	return b.rent
}

func (b *Bank) RegisterProgram(id pubkey.PublicKey, program Program) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.programs[id] = program
	b.accounts[id] = &Account{
		Lamports:   1,
		Owner:      NativeLoaderID,
		Executable: true,
	}
}

// Airdrop credits lamports out of thin air. It exists to fund payers.
func (b *Bank) Airdrop(key pubkey.PublicKey, lamports uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acc, ok := b.accounts[key]
	if !ok {
		acc = &Account{Owner: SystemProgramID}
		b.accounts[key] = acc
	}
	acc.Lamports += lamports
}

// SetAccount overwrites committed state directly, bypassing every program.
func (b *Bank) SetAccount(key pubkey.PublicKey, acc *Account) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.accounts[key] = acc.clone()
}

func (b *Bank) Account(key pubkey.PublicKey) (*Account, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	acc, ok := b.accounts[key]
	if !ok {
		return nil, false
	}
	return acc.clone(), true
}

func (b *Bank) Slot() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return uint64(len(b.receipts))
}

// Receipts returns up to limit receipts with slots greater than after.
func (b *Bank) Receipts(after uint64, limit int) []*Receipt {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if after >= uint64(len(b.receipts)) {
		return nil
	}
	tail := b.receipts[after:]
	if limit > 0 && len(tail) > limit {
		tail = tail[:limit]
	}
	out := make([]*Receipt, len(tail))
	copy(out, tail)
	return out
}

func (b *Bank) Process(ctx context.Context, tx *Transaction) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	t := &txn{
		bank:     b,
		accounts: make(map[pubkey.PublicKey]*Account),
		signers:  make(map[pubkey.PublicKey]bool, len(tx.Signers)),
	}
	for _, s := range tx.Signers {
		t.signers[s] = true
	}

	err := t.execute(tx.Instructions)
	if err != nil {
		err = errors.Wrapf(err, "transaction %s failed", tx.ID)
	} else {
		for key, acc := range t.accounts {
			if !acc.InUse() {
				delete(b.accounts, key)
				continue
			}
			b.accounts[key] = acc
		}
	}

	receipt := &Receipt{
		Slot: uint64(len(b.receipts)) + 1,
		TxID: tx.ID,
		Logs: t.logs,
		Err:  err,
	}
	b.receipts = append(b.receipts, receipt)

	logger := b.log.WithFields(logrus.Fields{
		"tx":   tx.ID,
		"slot": receipt.Slot,
	})
	if err != nil {
		logger.WithError(err).Debug("transaction rejected")
	} else {
		logger.Debug("transaction committed")
	}
	return receipt, err
}

type txn struct {
	bank     *Bank
	accounts map[pubkey.PublicKey]*Account
	signers  map[pubkey.PublicKey]bool
	logs     []string
}

func (t *txn) execute(instructions []Instruction) error {
	for i, ix := range instructions {
		for _, meta := range ix.Accounts {
			if meta.IsSigner && !t.signers[meta.Key] {
				return errors.Wrapf(ErrMissingRequiredSignature, "instruction %d: account %s", i, meta.Key)
			}
		}
		if err := t.invoke(ix, 1); err != nil {
			return errors.Wrapf(err, "instruction %d", i)
		}
	}
	return nil
}

func (t *txn) invoke(ix Instruction, depth int) error {
	if depth > MaxInvokeDepth {
		return ErrCallDepth
	}
	t.logf("Program %s invoke [%d]", ix.ProgramID, depth)
	if err := t.run(ix, depth); err != nil {
		t.logf("Program %s failed: %s", ix.ProgramID, err)
		return err
	}
	t.logf("Program %s success", ix.ProgramID)
	return nil
}

func (t *txn) run(ix Instruction, depth int) error {
	program, ok := t.bank.programs[ix.ProgramID]
	if !ok {
		return errors.Wrapf(ErrProgramNotFound, "program %s", ix.ProgramID)
	}

	// Repeated keys share one view with merged privileges.
	infos := make([]*AccountInfo, len(ix.Accounts))
	byKey := make(map[pubkey.PublicKey]*AccountInfo, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		if info, ok := byKey[meta.Key]; ok {
			info.IsSigner = info.IsSigner || meta.IsSigner
			info.IsWritable = info.IsWritable || meta.IsWritable
			infos[i] = info
			continue
		}
		info := newAccountInfo(meta, t.load(meta.Key))
		byKey[meta.Key] = info
		infos[i] = info
	}

	inv := &invocation{txn: t, program: ix.ProgramID, depth: depth}
	if err := program.Process(inv, ix.ProgramID, infos, ix.Data); err != nil {
		return err
	}
	return t.store(ix.ProgramID, infos)
}

func (t *txn) load(key pubkey.PublicKey) *Account {
	if acc, ok := t.accounts[key]; ok {
		return acc
	}
	acc, ok := t.bank.accounts[key]
	if ok {
		acc = acc.clone()
	} else {
		acc = &Account{Owner: SystemProgramID}
	}
	t.accounts[key] = acc
	return acc
}

// store checks what the program did to its accounts and applies it to the working
// set. Nothing is applied if any account fails the checks.
func (t *txn) store(program pubkey.PublicKey, infos []*AccountInfo) error {
	seen := make(map[pubkey.PublicKey]bool, len(infos))
	unique := make([]*AccountInfo, 0, len(infos))
	for _, info := range infos {
		if seen[info.Key] {
			continue
		}
		seen[info.Key] = true
		unique = append(unique, info)
	}

	var before, after uint64
	for _, info := range unique {
		pre := t.load(info.Key)
		before += pre.Lamports
		after += info.Lamports
		if err := verify(program, pre, info); err != nil {
			return errors.Wrapf(err, "account %s", info.Key)
		}
	}
	if before != after {
		return ErrUnbalancedInstruction
	}

	for _, info := range unique {
		t.accounts[info.Key] = &Account{
			Lamports:   info.Lamports,
			Data:       append([]byte(nil), info.Data...),
			Owner:      info.Owner,
			Executable: info.Executable,
		}
	}
	return nil
}

func verify(program pubkey.PublicKey, pre *Account, post *AccountInfo) error {
	dataChanged := !bytes.Equal(pre.Data, post.Data)
	ownerChanged := pre.Owner != post.Owner
	lamportsChanged := pre.Lamports != post.Lamports

	if !post.IsWritable && (dataChanged || ownerChanged || lamportsChanged) {
		return ErrReadonlyDataModified
	}
	if ownerChanged && pre.Owner != program {
		return ErrModifiedProgramID
	}
	if dataChanged && pre.Owner != program {
		return ErrExternalDataModified
	}
	if post.Lamports < pre.Lamports && pre.Owner != program {
		return ErrExternalLamportSpend
	}
	return nil
}

func (t *txn) logf(format string, args ...interface{}) {
	t.logs = append(t.logs, fmt.Sprintf(format, args...))
}

type invocation struct {
	txn     *txn
	program pubkey.PublicKey
	depth   int
}

func (inv *invocation) Rent() Rent {
	return inv.txn.bank.rent
}

func (inv *invocation) Log(format string, args ...interface{}) {
	inv.txn.logf("Program log: "+format, args...)
}

func (inv *invocation) LogData(data ...[]byte) {
	chunks := make([]string, len(data))
	for i, d := range data {
		chunks[i] = base64.StdEncoding.EncodeToString(d)
	}
	inv.txn.logf("%s%s", DataLogPrefix, strings.Join(chunks, " "))
}

func (inv *invocation) InvokeSigned(ix Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error {
	derivedSigners := make(map[pubkey.PublicKey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := pubkey.CreateProgramAddress(seeds, inv.program)
		if err != nil {
			return errors.Wrap(err, "failed to derive invocation signer")
		}
		derivedSigners[addr] = true
	}

	byKey := make(map[pubkey.PublicKey]*AccountInfo, len(accounts))
	for _, info := range accounts {
		if _, ok := byKey[info.Key]; !ok {
			byKey[info.Key] = info
		}
	}
	for _, meta := range ix.Accounts {
		info, ok := byKey[meta.Key]
		if !ok {
			return errors.Wrapf(ErrMissingAccount, "account %s", meta.Key)
		}
		if meta.IsWritable && !info.IsWritable {
			return errors.Wrapf(ErrPrivilegeEscalation, "account %s is not writable", meta.Key)
		}
		if meta.IsSigner && !info.IsSigner && !derivedSigners[meta.Key] {
			return errors.Wrapf(ErrPrivilegeEscalation, "account %s did not sign", meta.Key)
		}
	}

	// The callee must observe everything the caller did so far.
	if err := inv.txn.store(inv.program, accounts); err != nil {
		return err
	}
	if err := inv.txn.invoke(ix, inv.depth+1); err != nil {
		return err
	}
	for _, info := range accounts {
		acc := inv.txn.load(info.Key)
		info.Lamports = acc.Lamports
		info.Data = append([]byte(nil), acc.Data...)
		info.Owner = acc.Owner
	}
	return nil
}
