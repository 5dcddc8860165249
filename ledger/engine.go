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
	"fmt"
	"time"

	"github.com/raywall/kudos-ledger/dyndb"
	"github.com/raywall/kudos-ledger/pkg/events"
	"github.com/raywall/kudos-ledger/pkg/logger"
	"github.com/raywall/kudos-ledger/pkg/metrics"
	"github.com/raywall/kudos-ledger/repository"
	"github.com/rs/zerolog"
)

var (
	// ErrCompensationFailed indica que o débito foi aplicado, o crédito falhou
	// e o estorno também falhou. A Transaction fica "pending".
	ErrCompensationFailed = errors.New("ledger: compensation failed")
	// ErrFinalizeFailed indica que o status final não foi persistido.
	ErrFinalizeFailed = errors.New("ledger: final status not persisted")
	// ErrOutcomeUnknown indica uma escrita que falhou por indisponibilidade e
	// pode ter sido aplicada. A Transaction fica "pending".
	ErrOutcomeUnknown = errors.New("ledger: write outcome unknown")
)

// WalletStore é o acesso às carteiras usado pela saga.
type WalletStore interface {
	FindByWalletID(ctx context.Context, walletID string) (*repository.Wallet, error)
	Save(ctx context.Context, w *repository.Wallet) error
}

// TransactionStore persiste transações.
type TransactionStore interface {
	Save(ctx context.Context, tx *repository.Transaction) error
}

// RecognitionStore persiste reconhecimentos.
type RecognitionStore interface {
	Save(ctx context.Context, rec *repository.Recognition) error
}

// TokenConsumer consome tokens de pagamento de uso único.
type TokenConsumer interface {
	Consume(ctx context.Context, tokenID, processingCode string) (*repository.Token, error)
}

// SequenceSource gera números de sequência.
type SequenceSource interface {
	Next(ctx context.Context, name string) (int64, error)
}

// Deps são os colaboradores do Engine. Tokens, Sequence, Metrics e Events
// são opcionais.
type Deps struct {
	Wallets      WalletStore
	Transactions TransactionStore
	Recognitions RecognitionStore
	Tokens       TokenConsumer
	Sequence     SequenceSource
	SequenceName string
	Metrics      *metrics.Processor
	Events       events.Publisher
	Logger       zerolog.Logger
	Now          func() time.Time
}

// Engine executa transferências e reconhecimentos.
type Engine struct {
	deps Deps
	log  zerolog.Logger
}

func New(deps Deps) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}
	return &Engine{
		deps: deps,
		log:  logger.Component(deps.Logger, "ledger"),
	}
}

// TransferOption ajusta uma transferência.
type TransferOption func(*transferOptions)

type transferOptions struct {
	paymentToken string
}

// WithPaymentToken consome o token, com o transactionId como código de
// processamento, depois da escrita antecipada e antes de mover saldo.
func WithPaymentToken(token string) TransferOption {
	return func(o *transferOptions) { o.paymentToken = token }
}

// Transfer executa a saga descrita no pacote. O retorno sempre carrega o
// último status conhecido da transação, mesmo quando há erro.
func (e *Engine) Transfer(ctx context.Context, tx repository.Transaction, opts ...TransferOption) (repository.Transaction, error) {
	var o transferOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.paymentToken != "" && e.deps.Tokens == nil {
		return tx, errors.New("ledger: payment token given but no token store configured")
	}

	tx.Status = repository.StatusPending
	if tx.Date == 0 {
		tx.Date = e.deps.Now().Unix()
	}
	if e.deps.Sequence != nil && tx.Sequence == 0 {
		seq, err := e.deps.Sequence.Next(ctx, e.deps.SequenceName)
		if err != nil {
			return tx, fmt.Errorf("ledger: sequence: %w", err)
		}
		tx.Sequence = seq
	}

	if err := e.deps.Transactions.Save(ctx, &tx); err != nil {
		return tx, fmt.Errorf("ledger: write-ahead %s: %w", tx.TransactionID, err)
	}

	ctx = context.WithoutCancel(ctx)
	log := logger.FromContext(ctx, e.log).With().
		Str("transaction_id", tx.TransactionID).
		Str("from", tx.FromWalletID).
		Str("to", tx.ToWalletID).
		Int64("amount", tx.Amount).
		Logger()

	status, applyErr := e.settle(ctx, &log, tx, o)
	if !status.Final() {
		log.Error().Err(applyErr).Msg("transfer left pending")
		return tx, applyErr
	}

	tx.Status = status
	if err := e.deps.Transactions.Save(ctx, &tx); err != nil {
		log.Error().Err(err).Str("status", string(status)).Msg("final status not persisted")
		tx.Status = repository.StatusPending
		return tx, fmt.Errorf("%w: %w", ErrFinalizeFailed, err)
	}

	e.finalized(ctx, &log, tx)
	if applyErr != nil {
		return tx, applyErr
	}
	return tx, nil
}

// settle consome o token de pagamento, quando houver, e aplica os saldos.
func (e *Engine) settle(ctx context.Context, log *zerolog.Logger, tx repository.Transaction, o transferOptions) (repository.Status, error) {
	if o.paymentToken != "" {
		if _, err := e.deps.Tokens.Consume(ctx, o.paymentToken, tx.TransactionID); err != nil {
			if ambiguous(err) {
				return repository.StatusPending, fmt.Errorf("%w: payment token: %w", ErrOutcomeUnknown, err)
			}
			log.Info().Err(err).Msg("payment token rejected")
			return repository.StatusFailed, fmt.Errorf("ledger: payment token: %w", err)
		}
	}
	return e.apply(ctx, log, tx)
}

// apply executa os passos 2 a 4 e decide o status final. Só há estorno
// quando o crédito falhou sem dúvida sobre a escrita no destino.
func (e *Engine) apply(ctx context.Context, log *zerolog.Logger, tx repository.Transaction) (repository.Status, error) {
	source, err := e.deps.Wallets.FindByWalletID(ctx, tx.FromWalletID)
	if errors.Is(err, dyndb.ErrNotFound) {
		log.Info().Msg("source wallet not found")
		return repository.StatusFailed, nil
	}
	if err != nil {
		return repository.StatusFailed, fmt.Errorf("ledger: read source: %w", err)
	}
	if source.Balance < tx.Amount {
		log.Info().Int64("balance", source.Balance).Msg("insufficient funds")
		return repository.StatusFailed, nil
	}

	source.Balance -= tx.Amount
	if err := e.deps.Wallets.Save(ctx, source); err != nil {
		if ambiguous(err) {
			return repository.StatusPending, fmt.Errorf("%w: debit source: %w", ErrOutcomeUnknown, err)
		}
		return repository.StatusFailed, fmt.Errorf("ledger: debit source: %w", err)
	}

	dest, creditErr := e.deps.Wallets.FindByWalletID(ctx, tx.ToWalletID)
	if creditErr == nil {
		dest.Balance += tx.Amount
		creditErr = e.deps.Wallets.Save(ctx, dest)
		if ambiguous(creditErr) {
			return repository.StatusPending, fmt.Errorf("%w: credit destination: %w", ErrOutcomeUnknown, creditErr)
		}
	}
	if creditErr == nil {
		return repository.StatusApproved, nil
	}

	log.Warn().Err(creditErr).Msg("credit failed, compensating source")
	if err := e.refund(ctx, tx.FromWalletID, tx.Amount); err != nil {
		return repository.StatusPending, fmt.Errorf("%w: %w (credit: %v)", ErrCompensationFailed, err, creditErr)
	}
	if errors.Is(creditErr, dyndb.ErrNotFound) {
		return repository.StatusFailed, nil
	}
	return repository.StatusFailed, fmt.Errorf("ledger: credit destination: %w", creditErr)
}

func (e *Engine) refund(ctx context.Context, walletID string, amount int64) error {
	w, err := e.deps.Wallets.FindByWalletID(ctx, walletID)
	if err != nil {
		return err
	}
	w.Balance += amount
	return e.deps.Wallets.Save(ctx, w)
}

// ambiguous informa se uma escrita que falhou pode ter sido aplicada.
func ambiguous(err error) bool {
	return err != nil && dyndb.Classify(err) == dyndb.OutcomeUnavailable
}

// finalized emite métricas e o evento. Falhas aqui não mudam o resultado.
func (e *Engine) finalized(ctx context.Context, log *zerolog.Logger, tx repository.Transaction) {
	log.Info().Str("status", string(tx.Status)).Int64("sequence", tx.Sequence).Msg("transfer finalized")

	if e.deps.Metrics != nil {
		tags := map[string]string{"status": string(tx.Status)}
		if err := e.deps.Metrics.Record(metrics.TransferCompleted, 1, tags); err != nil {
			log.Debug().Err(err).Msg("metric not recorded")
		}
		if err := e.deps.Metrics.Record(metrics.TransferAmount, float64(tx.Amount), tags); err != nil {
			log.Debug().Err(err).Msg("metric not recorded")
		}
	}

	err := e.deps.Events.PublishTransfer(ctx, events.TransferFinalized{
		TransactionID: tx.TransactionID,
		FromWalletID:  tx.FromWalletID,
		ToWalletID:    tx.ToWalletID,
		Amount:        tx.Amount,
		Status:        string(tx.Status),
		Sequence:      tx.Sequence,
		FinalizedAt:   e.deps.Now().UTC(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("transfer event not published")
	}
}

// Recognize grava o reconhecimento como "pending", transfere reward.Value
// de fromWalletID para toWalletID e copia o status final da transferência.
func (e *Engine) Recognize(ctx context.Context, rec repository.Recognition, reward repository.Reward, fromWalletID, toWalletID string) (repository.Recognition, error) {
	rec.Status = repository.StatusPending
	if err := e.deps.Recognitions.Save(ctx, &rec); err != nil {
		return rec, fmt.Errorf("ledger: save recognition %s: %w", rec.RecognitionID, err)
	}

	tx, err := e.Transfer(ctx, repository.Transaction{
		TransactionID: rec.TransactionID,
		FromWalletID:  fromWalletID,
		ToWalletID:    toWalletID,
		Amount:        reward.Value,
		Reason:        reward.Name,
	})
	if !tx.Status.Final() {
		return rec, err
	}

	rec.Status = tx.Status
	if saveErr := e.deps.Recognitions.Save(context.WithoutCancel(ctx), &rec); saveErr != nil {
		return rec, errors.Join(err, fmt.Errorf("ledger: finalize recognition %s: %w", rec.RecognitionID, saveErr))
	}
	return rec, err
}
