// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/raywall/kudos-ledger/dyndb"
	"github.com/raywall/kudos-ledger/pkg/events"
	"github.com/raywall/kudos-ledger/pkg/metrics"
	"github.com/raywall/kudos-ledger/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = &dyndb.UnavailableError{Op: "put", Table: "WALLETS", Err: errors.New("timeout")}

type memWallets struct {
	mu       sync.Mutex
	balances map[string]int64
	// failSave[walletID] = n faz as próximas n gravações na carteira falharem.
	failSave map[string]int
	failRead map[string]error
	// lateFail grava e depois devolve errDown, como um timeout após o commit.
	lateFail map[string]bool
	reject   map[string]error
}

func newWallets(balances map[string]int64) *memWallets {
	return &memWallets{
		balances: balances,
		failSave: map[string]int{},
		failRead: map[string]error{},
		lateFail: map[string]bool{},
		reject:   map[string]error{},
	}
}

func (m *memWallets) total() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, b := range m.balances {
		sum += b
	}
	return sum
}

func (m *memWallets) FindByWalletID(_ context.Context, id string) (*repository.Wallet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failRead[id]; err != nil {
		return nil, err
	}
	b, ok := m.balances[id]
	if !ok {
		return nil, repository.ErrWalletNotFound
	}
	return &repository.Wallet{WalletID: id, Balance: b}, nil
}

func (m *memWallets) Save(_ context.Context, w *repository.Wallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave[w.WalletID] > 0 {
		m.failSave[w.WalletID]--
		return errDown
	}
	if err := m.reject[w.WalletID]; err != nil {
		return err
	}
	m.balances[w.WalletID] = w.Balance
	if m.lateFail[w.WalletID] {
		delete(m.lateFail, w.WalletID)
		return errDown
	}
	return nil
}

type memTokens struct {
	tokens map[string]repository.Token
	err    error
}

func (m *memTokens) Consume(_ context.Context, id, code string) (*repository.Token, error) {
	if m.err != nil {
		return nil, m.err
	}
	tok, ok := m.tokens[id]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	if tok.Status != repository.TokenCreated {
		return nil, repository.ErrTokenAlreadyUsed
	}
	tok.Status, tok.ProcessingCode = repository.TokenProcessed, code
	m.tokens[id] = tok
	return &tok, nil
}

type memTransactions struct {
	history []repository.Status
	last    repository.Transaction
	failAt  int // 1-based index of the failing save; 0 never fails
	ctxErrs []error
}

func (m *memTransactions) Save(ctx context.Context, tx *repository.Transaction) error {
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	if m.failAt == len(m.history)+1 {
		m.failAt = 0
		return errDown
	}
	m.history = append(m.history, tx.Status)
	m.last = *tx
	return nil
}

type memRecognitions struct {
	history []repository.Status
}

func (m *memRecognitions) Save(_ context.Context, rec *repository.Recognition) error {
	m.history = append(m.history, rec.Status)
	return nil
}

type fixedSequence struct{ n int64 }

func (s *fixedSequence) Next(context.Context, string) (int64, error) {
	s.n++
	return s.n, nil
}

type recordingPublisher struct {
	events []events.TransferFinalized
	err    error
}

func (p *recordingPublisher) PublishTransfer(_ context.Context, evt events.TransferFinalized) error {
	p.events = append(p.events, evt)
	return p.err
}

type recordingProvider struct {
	counts map[string]float64
}

func (p *recordingProvider) Count(name string, value float64, tags []string) error {
	p.counts[name+"|"+tags[0]] += value
	return nil
}
func (p *recordingProvider) Gauge(string, float64, []string) error     { return nil }
func (p *recordingProvider) Histogram(string, float64, []string) error { return nil }

type fixture struct {
	engine    *Engine
	wallets   *memWallets
	txs       *memTransactions
	recs      *memRecognitions
	publisher *recordingPublisher
	provider  *recordingProvider
	tokens    *memTokens
}

func newFixture() *fixture {
	f := &fixture{
		wallets:   newWallets(map[string]int64{"A": 100, "B": 50}),
		txs:       &memTransactions{},
		recs:      &memRecognitions{},
		publisher: &recordingPublisher{},
		provider:  &recordingProvider{counts: map[string]float64{}},
		tokens: &memTokens{tokens: map[string]repository.Token{
			"pay-1": {Token: "pay-1", Status: repository.TokenCreated},
		}},
	}
	f.engine = New(Deps{
		Wallets:      f.wallets,
		Transactions: f.txs,
		Recognitions: f.recs,
		Tokens:       f.tokens,
		Sequence:     &fixedSequence{},
		SequenceName: "dev-kudos-ledger-transactions",
		Metrics:      metrics.NewProcessor(metrics.LedgerDefinitions, f.provider),
		Events:       f.publisher,
		Logger:       zerolog.Nop(),
		Now:          func() time.Time { return time.Unix(1_700_000_000, 0) },
	})
	return f
}

func transfer(amount int64) repository.Transaction {
	return repository.Transaction{TransactionID: "tx1", FromWalletID: "A", ToWalletID: "B", Amount: amount, Reason: "thanks"}
}

func TestTransfer_Approved(t *testing.T) {
	f := newFixture()

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	require.NoError(t, err)
	assert.Equal(t, repository.StatusApproved, tx.Status)
	assert.Equal(t, int64(70), f.wallets.balances["A"])
	assert.Equal(t, int64(80), f.wallets.balances["B"])
	assert.Equal(t, []repository.Status{repository.StatusPending, repository.StatusApproved}, f.txs.history)
	assert.Equal(t, int64(1_700_000_000), tx.Date)
	assert.Equal(t, int64(1), tx.Sequence)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "approved", f.publisher.events[0].Status)
	assert.Equal(t, float64(1), f.provider.counts["ledger.transfer|status:approved"])
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	f := newFixture()

	tx, err := f.engine.Transfer(context.Background(), transfer(200))

	require.NoError(t, err)
	assert.Equal(t, repository.StatusFailed, tx.Status)
	assert.Equal(t, int64(100), f.wallets.balances["A"])
	assert.Equal(t, int64(50), f.wallets.balances["B"])
	assert.Equal(t, []repository.Status{repository.StatusPending, repository.StatusFailed}, f.txs.history)
}

func TestTransfer_MissingSourceWallet(t *testing.T) {
	f := newFixture()
	in := transfer(10)
	in.FromWalletID = "ghost"

	tx, err := f.engine.Transfer(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, repository.StatusFailed, tx.Status)
	assert.Equal(t, int64(50), f.wallets.balances["B"])
}

func TestTransfer_WriteAheadFailure(t *testing.T) {
	f := newFixture()
	f.txs.failAt = 1

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	assert.ErrorIs(t, err, dyndb.ErrUnavailable)
	assert.Equal(t, repository.StatusPending, tx.Status)
	assert.Empty(t, f.txs.history)
	assert.Equal(t, int64(100), f.wallets.balances["A"])
	assert.Empty(t, f.publisher.events)
}

func TestTransfer_DestinationReadFailureCompensates(t *testing.T) {
	f := newFixture()
	f.wallets.failRead["B"] = errDown

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	assert.ErrorIs(t, err, dyndb.ErrUnavailable)
	assert.NotErrorIs(t, err, ErrOutcomeUnknown)
	assert.Equal(t, repository.StatusFailed, tx.Status)
	assert.Equal(t, int64(100), f.wallets.balances["A"])
	assert.Equal(t, int64(50), f.wallets.balances["B"])
	assert.Equal(t, repository.StatusFailed, f.txs.last.Status)
}

func TestTransfer_RejectedCreditCompensates(t *testing.T) {
	f := newFixture()
	f.wallets.reject["B"] = &dyndb.ConditionFailedError{Op: "put", Table: "WALLETS"}

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	assert.ErrorIs(t, err, dyndb.ErrConditionFailed)
	assert.Equal(t, repository.StatusFailed, tx.Status)
	assert.Equal(t, int64(100), f.wallets.balances["A"])
	assert.Equal(t, int64(50), f.wallets.balances["B"])
}

func TestTransfer_UnavailableCreditLeavesPending(t *testing.T) {
	f := newFixture()
	f.wallets.lateFail["B"] = true

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	assert.ErrorIs(t, err, ErrOutcomeUnknown)
	assert.ErrorIs(t, err, dyndb.ErrUnavailable)
	assert.Equal(t, repository.StatusPending, tx.Status)
	assert.Equal(t, []repository.Status{repository.StatusPending}, f.txs.history)
	assert.Equal(t, int64(70), f.wallets.balances["A"])
	assert.Equal(t, int64(80), f.wallets.balances["B"])
	assert.Equal(t, int64(150), f.wallets.total())
	assert.Empty(t, f.publisher.events)
}

func TestTransfer_UnavailableDebitLeavesPending(t *testing.T) {
	f := newFixture()
	f.wallets.failSave["A"] = 1

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	assert.ErrorIs(t, err, ErrOutcomeUnknown)
	assert.Equal(t, repository.StatusPending, tx.Status)
	assert.Equal(t, []repository.Status{repository.StatusPending}, f.txs.history)
	assert.Equal(t, int64(50), f.wallets.balances["B"])
}

func TestTransfer_MissingDestinationCompensates(t *testing.T) {
	f := newFixture()
	in := transfer(30)
	in.ToWalletID = "ghost"

	tx, err := f.engine.Transfer(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, repository.StatusFailed, tx.Status)
	assert.Equal(t, int64(100), f.wallets.balances["A"])
}

func TestTransfer_CompensationFailureLeavesPending(t *testing.T) {
	f := newFixture()
	f.wallets.failRead["B"] = errDown
	f.engine.deps.Wallets = &compensationBreaker{memWallets: f.wallets}

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	assert.ErrorIs(t, err, ErrCompensationFailed)
	assert.Equal(t, repository.StatusPending, tx.Status)
	assert.Equal(t, int64(70), f.wallets.balances["A"])
	assert.Equal(t, []repository.Status{repository.StatusPending}, f.txs.history)
	assert.Empty(t, f.publisher.events)
}

// compensationBreaker falha a segunda gravação na carteira A (o estorno).
type compensationBreaker struct {
	*memWallets
	savesA int
}

func (c *compensationBreaker) Save(ctx context.Context, w *repository.Wallet) error {
	if w.WalletID == "A" {
		c.savesA++
		if c.savesA == 2 {
			return errDown
		}
	}
	return c.memWallets.Save(ctx, w)
}

func TestTransfer_FinalWriteFailure(t *testing.T) {
	f := newFixture()
	f.txs.failAt = 2

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	assert.ErrorIs(t, err, ErrFinalizeFailed)
	assert.ErrorIs(t, err, dyndb.ErrUnavailable)
	assert.Equal(t, repository.StatusPending, tx.Status)
	assert.Equal(t, []repository.Status{repository.StatusPending}, f.txs.history)
	assert.Equal(t, int64(70), f.wallets.balances["A"])
	assert.Equal(t, int64(80), f.wallets.balances["B"])
}

func TestTransfer_IgnoresCancellationAfterWriteAhead(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.engine.deps.Wallets = &cancellingWallets{memWallets: f.wallets, cancel: cancel}

	tx, err := f.engine.Transfer(ctx, transfer(30))

	require.NoError(t, err)
	assert.Equal(t, repository.StatusApproved, tx.Status)
	require.Len(t, f.txs.ctxErrs, 2)
	assert.NoError(t, f.txs.ctxErrs[1])
}

type cancellingWallets struct {
	*memWallets
	cancel context.CancelFunc
}

func (c *cancellingWallets) FindByWalletID(ctx context.Context, id string) (*repository.Wallet, error) {
	c.cancel()
	return c.memWallets.FindByWalletID(ctx, id)
}

func TestTransfer_PublishFailureKeepsOutcome(t *testing.T) {
	f := newFixture()
	f.publisher.err = errors.New("queue gone")

	tx, err := f.engine.Transfer(context.Background(), transfer(30))

	require.NoError(t, err)
	assert.Equal(t, repository.StatusApproved, tx.Status)
}

func TestTransfer_PaymentToken(t *testing.T) {
	ctx := context.Background()

	t.Run("consumed with the transaction id", func(t *testing.T) {
		f := newFixture()

		tx, err := f.engine.Transfer(ctx, transfer(30), WithPaymentToken("pay-1"))

		require.NoError(t, err)
		assert.Equal(t, repository.StatusApproved, tx.Status)
		assert.Equal(t, "tx1", f.tokens.tokens["pay-1"].ProcessingCode)
	})

	t.Run("used token finalizes failed after the write-ahead", func(t *testing.T) {
		f := newFixture()
		f.tokens.tokens["pay-1"] = repository.Token{Token: "pay-1", Status: repository.TokenProcessed, ProcessingCode: "other"}

		tx, err := f.engine.Transfer(ctx, transfer(30), WithPaymentToken("pay-1"))

		assert.ErrorIs(t, err, repository.ErrTokenAlreadyUsed)
		assert.Equal(t, repository.StatusFailed, tx.Status)
		assert.Equal(t, []repository.Status{repository.StatusPending, repository.StatusFailed}, f.txs.history)
		assert.Equal(t, int64(100), f.wallets.balances["A"])
		assert.Equal(t, int64(50), f.wallets.balances["B"])
	})

	t.Run("write-ahead failure keeps the token", func(t *testing.T) {
		f := newFixture()
		f.txs.failAt = 1

		_, err := f.engine.Transfer(ctx, transfer(30), WithPaymentToken("pay-1"))
		assert.ErrorIs(t, err, dyndb.ErrUnavailable)
		assert.Equal(t, repository.TokenCreated, f.tokens.tokens["pay-1"].Status)

		tx, err := f.engine.Transfer(ctx, transfer(30), WithPaymentToken("pay-1"))
		require.NoError(t, err)
		assert.Equal(t, repository.StatusApproved, tx.Status)
	})

	t.Run("unavailable token store leaves pending", func(t *testing.T) {
		f := newFixture()
		f.tokens.err = errDown

		tx, err := f.engine.Transfer(ctx, transfer(30), WithPaymentToken("pay-1"))

		assert.ErrorIs(t, err, ErrOutcomeUnknown)
		assert.Equal(t, repository.StatusPending, tx.Status)
		assert.Equal(t, int64(100), f.wallets.balances["A"])
	})

	t.Run("no token store", func(t *testing.T) {
		f := newFixture()
		f.engine.deps.Tokens = nil

		_, err := f.engine.Transfer(ctx, transfer(30), WithPaymentToken("pay-1"))

		require.Error(t, err)
		assert.Empty(t, f.txs.history)
	})
}

func TestRecognize(t *testing.T) {
	reward := repository.Reward{RewardID: "coffee", Name: "Coffee", Value: 15}
	rec := repository.Recognition{RecognitionID: "rec1", TransactionID: "tx9", From: "ana", To: "bob", RewardID: "coffee"}

	t.Run("approved", func(t *testing.T) {
		f := newFixture()

		got, err := f.engine.Recognize(context.Background(), rec, reward, "A", "B")

		require.NoError(t, err)
		assert.Equal(t, repository.StatusApproved, got.Status)
		assert.Equal(t, []repository.Status{repository.StatusPending, repository.StatusApproved}, f.recs.history)
		assert.Equal(t, "tx9", f.txs.last.TransactionID)
		assert.Equal(t, "Coffee", f.txs.last.Reason)
		assert.Equal(t, int64(85), f.wallets.balances["A"])
		assert.Equal(t, int64(65), f.wallets.balances["B"])
	})

	t.Run("failed on insufficient funds", func(t *testing.T) {
		f := newFixture()
		expensive := reward
		expensive.Value = 500

		got, err := f.engine.Recognize(context.Background(), rec, expensive, "A", "B")

		require.NoError(t, err)
		assert.Equal(t, repository.StatusFailed, got.Status)
		assert.Equal(t, []repository.Status{repository.StatusPending, repository.StatusFailed}, f.recs.history)
	})

	t.Run("stays pending when the transfer cannot finalize", func(t *testing.T) {
		f := newFixture()
		f.txs.failAt = 2

		got, err := f.engine.Recognize(context.Background(), rec, reward, "A", "B")

		assert.ErrorIs(t, err, ErrFinalizeFailed)
		assert.Equal(t, repository.StatusPending, got.Status)
		assert.Equal(t, []repository.Status{repository.StatusPending}, f.recs.history)
	})
}
