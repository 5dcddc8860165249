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
package session

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/raywall/kudos-ledger/dyndb"
	"github.com/raywall/kudos-ledger/ledger"
	"github.com/raywall/kudos-ledger/pkg/logger"
	"github.com/raywall/kudos-ledger/repository"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// LastTransactionsLimit é o tamanho máximo da lista no extrato.
	LastTransactionsLimit = 5
	DefaultPageSize       = 20
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*repository.User, error)
	FindByToken(ctx context.Context, token string) (*repository.User, error)
	Save(ctx context.Context, u *repository.User) error
	Create(ctx context.Context, u *repository.User) error
}

type WalletStore interface {
	FindByWalletID(ctx context.Context, walletID string) (*repository.Wallet, error)
	Create(ctx context.Context, walletID string) (*repository.Wallet, error)
}

type TransactionLister interface {
	ListForWallet(ctx context.Context, walletID string) ([]repository.Transaction, error)
	PageForWallet(ctx context.Context, walletID string, received bool, limit int32, cursor dyndb.Cursor) (dyndb.Page[repository.Transaction], error)
}

type RewardFinder interface {
	FindByRewardID(ctx context.Context, rewardID string) (*repository.Reward, error)
}

// TokenStore emite tokens de pagamento. O consumo acontece dentro do ledger.
type TokenStore interface {
	Issue(ctx context.Context) (*repository.Token, error)
}

// Ledger é o motor de transferências.
type Ledger interface {
	Transfer(ctx context.Context, tx repository.Transaction, opts ...ledger.TransferOption) (repository.Transaction, error)
	Recognize(ctx context.Context, rec repository.Recognition, reward repository.Reward, fromWalletID, toWalletID string) (repository.Recognition, error)
}

// Deps são os colaboradores do Service. FoundingWalletID é a carteira
// pagadora de reconhecimentos quando o usuário não tem uma própria.
type Deps struct {
	Users            UserStore
	Wallets          WalletStore
	Transactions     TransactionLister
	Rewards          RewardFinder
	Tokens           TokenStore
	Ledger           Ledger
	FoundingWalletID string
	Logger           zerolog.Logger
	Now              func() time.Time
}

// Service implementa as operações expostas aos clientes.
type Service struct {
	deps     Deps
	validate *validator.Validate
	log      zerolog.Logger
}

func NewService(deps Deps) *Service {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{
		deps:     deps,
		validate: validator.New(),
		log:      logger.Component(deps.Logger, "session"),
	}
}

// Login cria usuário e carteira no primeiro acesso e sempre emite um novo token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}

	user, err := s.deps.Users.FindByEmail(ctx, req.Email)
	created := false
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		user, created, err = s.provision(ctx, req)
		if err != nil {
			return nil, AsError(err)
		}
	case err != nil:
		return nil, AsError(err)
	}

	if !created {
		user.Token = repository.NewID()
		if err := s.deps.Users.Save(ctx, user); err != nil {
			return nil, AsError(err)
		}
	}

	resp := &LoginResponse{Token: user.Token}
	if !created {
		wallet, err := s.deps.Wallets.FindByWalletID(ctx, user.WalletID)
		if err != nil {
			return nil, AsError(err)
		}
		resp.Balance = wallet.Balance
	}

	logger.FromContext(ctx, s.log).Info().
		Str("wallet_id", user.WalletID).
		Bool("created", created).
		Msg("login")
	return resp, nil
}

// provision cria carteira e usuário. Se outro login criou o usuário antes,
// devolve o existente com created = false; a carteira nova fica sem dono.
func (s *Service) provision(ctx context.Context, req LoginRequest) (*repository.User, bool, error) {
	wallet, err := s.deps.Wallets.Create(ctx, repository.NewID())
	if err != nil {
		return nil, false, err
	}
	user := &repository.User{
		Email:    req.Email,
		Name:     req.Name,
		UserType: repository.RoleEmployee,
		WalletID: wallet.WalletID,
		Token:    repository.NewID(),
	}
	err = s.deps.Users.Create(ctx, user)
	if errors.Is(err, repository.ErrAlreadyExists) {
		logger.FromContext(ctx, s.log).Warn().
			Str("orphan_wallet_id", wallet.WalletID).
			Msg("user created concurrently, keeping the existing wallet")
		existing, err := s.deps.Users.FindByEmail(ctx, req.Email)
		return existing, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

// GetBalance devolve o saldo e as últimas transações do chamador.
func (s *Service) GetBalance(ctx context.Context, req TokenRequest) (*BalanceResponse, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	user, err := s.deps.Users.FindByToken(ctx, req.Token)
	if err != nil {
		return nil, AsError(err)
	}

	var (
		wallet *repository.Wallet
		txs    []repository.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		wallet, err = s.deps.Wallets.FindByWalletID(gctx, user.WalletID)
		return err
	})
	g.Go(func() (err error) {
		txs, err = s.deps.Transactions.ListForWallet(gctx, user.WalletID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, AsError(err)
	}

	return &BalanceResponse{
		Balance:      wallet.Balance,
		Transactions: LastTransactions(txs, LastTransactionsLimit),
	}, nil
}

// GetTransactions devolve todas as transações enviadas e recebidas.
func (s *Service) GetTransactions(ctx context.Context, req TokenRequest) ([]repository.Transaction, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	user, err := s.deps.Users.FindByToken(ctx, req.Token)
	if err != nil {
		return nil, AsError(err)
	}
	txs, err := s.deps.Transactions.ListForWallet(ctx, user.WalletID)
	if err != nil {
		return nil, AsError(err)
	}
	return txs, nil
}

// PageTransactions devolve uma única página das transações enviadas ou
// recebidas, com o cursor opaco da próxima.
func (s *Service) PageTransactions(ctx context.Context, req TransactionPageRequest) (*TransactionPage, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	cursor, err := dyndb.DecodeCursor(req.Cursor)
	if err != nil {
		return nil, AsError(err)
	}
	user, err := s.deps.Users.FindByToken(ctx, req.Token)
	if err != nil {
		return nil, AsError(err)
	}

	limit := cmp.Or(req.Limit, DefaultPageSize)
	page, err := s.deps.Transactions.PageForWallet(ctx, user.WalletID, req.Direction == "received", limit, cursor)
	if err != nil {
		return nil, AsError(err)
	}
	next, err := dyndb.EncodeCursor(page.Next)
	if err != nil {
		return nil, AsError(err)
	}

	items := page.Items
	if items == nil {
		items = []repository.Transaction{}
	}
	return &TransactionPage{Transactions: items, Next: next}, nil
}

// CreateTransaction transfere do chamador para o usuário do e-mail. Saldo
// insuficiente resulta em uma transação "failed", sem erro.
func (s *Service) CreateTransaction(ctx context.Context, req TransactionRequest) (*repository.Transaction, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}

	from, to, err := s.resolve(ctx, req.Token, req.Email)
	if err != nil {
		return nil, AsError(err)
	}

	tx := repository.Transaction{
		TransactionID: uuid.NewString(),
		FromWalletID:  from.WalletID,
		ToWalletID:    to.WalletID,
		Amount:        req.Amount,
		Reason:        req.Reason,
		Date:          s.deps.Now().Unix(),
	}

	var opts []ledger.TransferOption
	if req.PaymentToken != "" {
		opts = append(opts, ledger.WithPaymentToken(req.PaymentToken))
	}

	out, err := s.deps.Ledger.Transfer(ctx, tx, opts...)
	if err != nil {
		return nil, AsError(err)
	}
	return &out, nil
}

// CreateRecognition paga a recompensa ao usuário do e-mail a partir da
// carteira fundadora do chamador.
func (s *Service) CreateRecognition(ctx context.Context, req RecognitionRequest) (*repository.Recognition, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}

	var (
		from, to *repository.User
		reward   *repository.Reward
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		from, err = s.deps.Users.FindByToken(gctx, req.Token)
		return err
	})
	g.Go(func() (err error) {
		to, err = s.deps.Users.FindByEmail(gctx, req.Email)
		return err
	})
	g.Go(func() (err error) {
		reward, err = s.deps.Rewards.FindByRewardID(gctx, req.RewardID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, AsError(err)
	}

	source := cmp.Or(from.FoundingWalletID, s.deps.FoundingWalletID)
	if source == "" {
		return nil, &Error{
			Code:    CodeWalletNotFound,
			Message: "no founding wallet for recognitions",
			Status:  http.StatusNotFound,
			Err:     repository.ErrWalletNotFound,
		}
	}

	rec := repository.Recognition{
		RecognitionID: uuid.NewString(),
		TransactionID: uuid.NewString(),
		From:          source,
		To:            to.WalletID,
		Message:       req.Message,
		RewardID:      reward.RewardID,
	}
	out, err := s.deps.Ledger.Recognize(ctx, rec, *reward, source, to.WalletID)
	if err != nil {
		return nil, AsError(err)
	}
	return &out, nil
}

// IssuePaymentToken emite um token de pagamento de uso único.
func (s *Service) IssuePaymentToken(ctx context.Context, req TokenRequest) (*repository.Token, error) {
	if err := s.check(ctx, req); err != nil {
		return nil, err
	}
	if _, err := s.deps.Users.FindByToken(ctx, req.Token); err != nil {
		return nil, AsError(err)
	}
	tok, err := s.deps.Tokens.Issue(ctx)
	if err != nil {
		return nil, AsError(err)
	}
	return tok, nil
}

// resolve busca o remetente (por token) e o destinatário (por e-mail) em paralelo.
func (s *Service) resolve(ctx context.Context, token, email string) (from, to *repository.User, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		from, err = s.deps.Users.FindByToken(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		to, err = s.deps.Users.FindByEmail(gctx, email)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func (s *Service) check(ctx context.Context, req any) error {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		return &Error{
			Code:    CodeValidation,
			Message: fmt.Sprintf("invalid request: %v", err),
			Status:  http.StatusBadRequest,
			Err:     err,
		}
	}
	return nil
}

// LastTransactions devolve até limit transações, da mais recente para a mais
// antiga. A entrada não é alterada.
func LastTransactions(txs []repository.Transaction, limit int) []repository.Transaction {
	out := slices.Clone(txs)
	slices.SortStableFunc(out, func(a, b repository.Transaction) int {
		return cmp.Compare(b.Date, a.Date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []repository.Transaction{}
	}
	return out
}
