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
	"math/big"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/app/hook"
	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/app/sandbox"
	"github.com/insolar/transferhook/internal/app/token"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

const defaultEventsLimit = 100

type HookServer struct {
	log       *logrus.Entry
	client    *sandbox.Client
	transfers indexer.WhaleTransferStorage
	maxEvents int
	demo      *sandbox.Demo
}

// NewHookServer serves the sandbox ledger and the stored whale transfers. transfers
// may be nil when the indexer is disabled; demo may be nil when nothing was
// bootstrapped.
func NewHookServer(
	log *logrus.Logger,
	client *sandbox.Client,
	transfers indexer.WhaleTransferStorage,
	maxEvents int,
	demo *sandbox.Demo,
) *HookServer {
	return &HookServer{
		log:       log.WithField("component", "api"),
		client:    client,
		transfers: transfers,
		maxEvents: maxEvents,
		demo:      demo,
	}
}

func (s *HookServer) GetWhale(ctx echo.Context) error {
	if s.client.Program().Options().Scope == hook.AssetScope {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("whale accounts are kept per mint, use /api/whale/{mint}"))
	}
	address, state, err := s.client.Observation(pubkey.Zero)
	if err != nil {
		return s.accountError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ResponsesWhale{
		Address:            address.String(),
		OriginatingAddress: state.WhaleAddress.String(),
		TransferAmount:     strconv.FormatUint(state.TransferAmount, 10),
	})
}

func (s *HookServer) GetWhaleByMint(ctx echo.Context, mint string) error {
	key, err := pubkey.FromString(mint)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("mint wrong format"))
	}
	m, err := s.client.Mint(key)
	if err != nil {
		return s.accountError(ctx, err)
	}
	address, state, err := s.client.Observation(key)
	if err != nil {
		return s.accountError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, ResponsesWhale{
		Address:            address.String(),
		Mint:               key.String(),
		OriginatingAddress: state.WhaleAddress.String(),
		TransferAmount:     strconv.FormatUint(state.TransferAmount, 10),
		UIAmount:           uiAmount(state.TransferAmount, m.Decimals),
	})
}

func (s *HookServer) GetRegistry(ctx echo.Context, mint string) error {
	key, err := pubkey.FromString(mint)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("mint wrong format"))
	}
	m, err := s.client.Mint(key)
	if err != nil {
		return s.accountError(ctx, err)
	}
	address, metas, err := s.client.Registry(key)
	if err != nil {
		return s.accountError(ctx, err)
	}

	program := s.client.Program()
	opts := program.Options()
	res := ResponsesRegistry{
		Address:  address.String(),
		Mint:     key.String(),
		Program:  program.ID().String(),
		Policy:   opts.Policy.String(),
		Scope:    opts.Scope.String(),
		Decimals: m.Decimals,
		Metas:    make([]SchemasAccountMeta, 0, len(metas)),
	}
	if opts.Policy == hook.Threshold {
		threshold, err := hook.WhaleThreshold(opts.WhaleUnits, m.Decimals)
		if err != nil {
			s.log.WithError(err).Warn("failed to compute threshold")
		} else {
			res.Threshold = strconv.FormatUint(threshold, 10)
			res.ThresholdUI = uiAmount(threshold, m.Decimals)
		}
		observation, _, err := program.Addresses().Observation(opts.Scope, key)
		if err != nil {
			s.log.Error(err)
			return ctx.JSON(http.StatusInternalServerError, struct{}{})
		}
		res.Observation = observation.String()
	}
	for _, meta := range metas {
		described, err := describeMeta(meta)
		if err != nil {
			s.log.WithError(err).Errorf("registry %s holds a malformed meta", address)
			return ctx.JSON(http.StatusInternalServerError, struct{}{})
		}
		res.Metas = append(res.Metas, described)
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *HookServer) GetEvents(ctx echo.Context, params GetEventsParams) error {
	if s.transfers == nil {
		return ctx.JSON(http.StatusServiceUnavailable, NewSingleMessageError("event storage is not configured"))
	}
	limit := defaultEventsLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	if limit > s.maxEvents {
		limit = s.maxEvents
	}
	if limit <= 0 {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("`limit` should be positive"))
	}

	transfers, err := s.transfers.List(limit)
	if err != nil {
		s.log.Error(err)
		return ctx.JSON(http.StatusInternalServerError, struct{}{})
	}
	res := make(ResponsesEvents, 0, len(transfers))
	for _, t := range transfers {
		res = append(res, SchemasWhaleTransfer{
			ID:                 t.ID.String(),
			Slot:               t.Slot,
			TxID:               t.TxID.String(),
			Index:              t.Index,
			ProgramID:          t.ProgramID.String(),
			OriginatingAddress: t.OriginatingAddress.String(),
			TransferAmount:     strconv.FormatUint(t.TransferAmount, 10),
			ObservedAt:         t.ObservedAt,
		})
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *HookServer) PostTransfers(ctx echo.Context) error {
	var req RequestsTransfer
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError("request body wrong format"))
	}
	var keys [3]pubkey.PublicKey
	for i, field := range []struct{ name, value string }{
		{"source", req.Source},
		{"destination", req.Destination},
		{"owner", req.Owner},
	} {
		k, err := pubkey.FromString(field.value)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(field.name+" wrong format"))
		}
		keys[i] = k
	}
	source, destination, owner := keys[0], keys[1], keys[2]

	holding, err := s.client.Holding(source)
	if err != nil {
		return s.accountError(ctx, err)
	}
	m, err := s.client.Mint(holding.Mint)
	if err != nil {
		return s.accountError(ctx, err)
	}
	amount, err := parseAmount(req.Amount, m.Decimals)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}

	receipt, err := s.client.Transfer(ctx.Request().Context(), source, destination, owner, amount)
	if receipt == nil {
		return s.accountError(ctx, err)
	}
	res := ResponsesTransfer{
		Slot:    receipt.Slot,
		TxID:    receipt.TxID.String(),
		Success: receipt.Success(),
		Logs:    receipt.Logs,
	}
	if !receipt.Success() {
		res.Error = errors.Cause(receipt.Err).Error()
		return ctx.JSON(http.StatusUnprocessableEntity, res)
	}
	events, err := hook.ParseEvents(receipt.Logs, s.client.Program().ID())
	if err != nil {
		s.log.WithError(err).Warnf("failed to parse events of %s", receipt.TxID)
	}
	res.Whale = len(events) > 0
	return ctx.JSON(http.StatusOK, res)
}

func (s *HookServer) GetSandbox(ctx echo.Context) error {
	if s.demo == nil {
		return ctx.JSON(http.StatusNotFound, NewSingleMessageError("sandbox was not bootstrapped"))
	}
	return ctx.JSON(http.StatusOK, s.demo)
}

func (s *HookServer) accountError(ctx echo.Context, err error) error {
	switch errors.Cause(err) {
	case sandbox.ErrAccountNotFound:
		return ctx.JSON(http.StatusNotFound, NewSingleMessageError(err.Error()))
	case token.ErrInvalidAccountData:
		return ctx.JSON(http.StatusBadRequest, NewSingleMessageError(err.Error()))
	}
	s.log.Error(err)
	return ctx.JSON(http.StatusInternalServerError, struct{}{})
}

func describeMeta(meta resolution.ExtraAccountMeta) (SchemasAccountMeta, error) {
	res := SchemasAccountMeta{IsSigner: meta.IsSigner, IsWritable: meta.IsWritable}
	switch {
	case meta.Discriminator == resolution.FixedDiscriminator:
		res.Kind = "fixed"
		res.Address = pubkey.PublicKey(meta.AddressConfig).String()
		return res, nil
	case meta.Discriminator == resolution.PDADiscriminator:
		res.Kind = "pda"
	case meta.Discriminator >= resolution.ExternalPDAOffset:
		res.Kind = "external_pda"
		index := int(meta.Discriminator - resolution.ExternalPDAOffset)
		res.Program = &index
	default:
		return res, errors.Errorf("unknown meta discriminator %d", meta.Discriminator)
	}
	seeds, err := meta.Seeds()
	if err != nil {
		return res, err
	}
	for _, seed := range seeds {
		res.Seeds = append(res.Seeds, seed.String())
	}
	return res, nil
}

func uiAmount(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}

// parseAmount accepts base units ("1500000") or a UI amount ("1.5") that must fit
// the mint decimals exactly.
func parseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.New("amount wrong format")
	}
	if d.Exponent() < 0 {
		d = d.Shift(int32(decimals))
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, errors.Errorf("amount has more than %d decimals", decimals)
	}
	if d.Sign() <= 0 {
		return 0, errors.New("amount should be positive")
	}
	raw := d.BigInt()
	if !raw.IsUint64() {
		return 0, errors.New("amount is too large")
	}
	return raw.Uint64(), nil
}
