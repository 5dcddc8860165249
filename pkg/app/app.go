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
// Package app monta os componentes do serviço a partir da configuração.
package app

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/kudos-ledger/dyndb"
	"github.com/raywall/kudos-ledger/ledger"
	"github.com/raywall/kudos-ledger/pkg/cache"
	"github.com/raywall/kudos-ledger/pkg/config"
	"github.com/raywall/kudos-ledger/pkg/events"
	"github.com/raywall/kudos-ledger/pkg/logger"
	"github.com/raywall/kudos-ledger/pkg/metrics"
	"github.com/raywall/kudos-ledger/pkg/observability"
	"github.com/raywall/kudos-ledger/repository"
	"github.com/raywall/kudos-ledger/session"
	"github.com/rs/zerolog"
)

// SQSClient reúne as operações de fila usadas pelo publisher e pelo listener.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Clients são as dependências externas. Campos nil são criados por Build.
type Clients struct {
	Dynamo   dyndb.DynamoDBClient
	SQS      SQSClient
	Cache    cache.Cache
	Provider metrics.Provider
}

// App expõe os componentes montados.
type App struct {
	Config       *config.Config
	Log          zerolog.Logger
	Clients      Clients
	Service      *session.Service
	Ledger       *ledger.Engine
	Transactions *repository.TransactionRepository
	Rewards      *repository.RewardRepository
	Metrics      *metrics.Processor
}

// Build cria os clientes que faltam e liga repositórios, ledger e serviço.
func Build(ctx context.Context, cfg *config.Config, clients Clients) (*App, error) {
	log := logger.Configure(cfg.Logging).With().
		Str("service", cfg.Service.Name).
		Str("stage", cfg.Service.Stage).
		Logger()

	if clients.Dynamo == nil || (clients.SQS == nil && (cfg.Events.QueueURL != "" || cfg.Events.RewardsQueueURL != "")) {
		awsCfg, err := config.LoadAWS(ctx, cfg.AWS.Region)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		if clients.Dynamo == nil {
			clients.Dynamo = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
				if cfg.AWS.Endpoint != "" {
					o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
				}
			})
		}
		if clients.SQS == nil {
			clients.SQS = sqs.NewFromConfig(awsCfg)
		}
	}
	if clients.Cache == nil {
		clients.Cache = cache.New(cfg.Redis, cfg.Service.Name+":reward:")
	}
	if clients.Provider == nil {
		provider, err := observability.SetupMetrics(cfg.Metrics)
		if err != nil {
			return nil, err
		}
		clients.Provider = provider
	}

	db := clients.Dynamo
	tables := cfg.Tables
	idx := cfg.Indexes

	users := repository.NewUserRepository(
		dyndb.New(db, dyndb.TableConfig[repository.User]{TableName: tables.Users, HashKey: "email"}),
		idx.UserByEmail, idx.UserByToken,
		repository.WithMaxPages[repository.User](cfg.Ledger.MaxPages),
	)
	wallets := repository.NewWalletRepository(
		dyndb.New(db, dyndb.TableConfig[repository.Wallet]{TableName: tables.Wallets, HashKey: "walletId"}),
		idx.WalletByID,
	)
	transactions := repository.NewTransactionRepository(
		dyndb.New(db, dyndb.TableConfig[repository.Transaction]{TableName: tables.Transactions, HashKey: "transactionId"}),
		repository.TransactionIndexes{From: idx.TransactionsFrom, To: idx.TransactionsTo, ByStatus: idx.TransactionsByStatus},
		repository.WithMaxPages[repository.Transaction](cfg.Ledger.MaxPages),
	)
	rewards := repository.NewRewardRepository(
		dyndb.New(db, dyndb.TableConfig[repository.Reward]{TableName: tables.Rewards, HashKey: "rewardId"}),
		idx.RewardByID, clients.Cache, logger.Component(log, "rewards"),
	)
	recognitions := repository.NewRecognitionRepository(
		dyndb.New(db, dyndb.TableConfig[repository.Recognition]{TableName: tables.Recognitions, HashKey: "recognitionId"}),
	)
	tokens := repository.NewTokenRepository(
		dyndb.New(db, dyndb.TableConfig[repository.Token]{TableName: tables.Tokens, HashKey: "token"}),
	)

	var publisher events.Publisher = events.Noop{}
	if clients.SQS != nil {
		publisher = events.NewSQSPublisher(clients.SQS, cfg.Events.QueueURL)
	}

	processor := metrics.NewProcessor(metrics.LedgerDefinitions, clients.Provider,
		"service:"+cfg.Service.Name, "stage:"+cfg.Service.Stage)

	engine := ledger.New(ledger.Deps{
		Wallets:      wallets,
		Transactions: transactions,
		Recognitions: recognitions,
		Tokens:       tokens,
		Sequence:     dyndb.NewSequence(db, tables.Counter),
		SequenceName: cfg.SequenceName(),
		Metrics:      processor,
		Events:       publisher,
		Logger:       log,
	})

	svc := session.NewService(session.Deps{
		Users:            users,
		Wallets:          wallets,
		Transactions:     transactions,
		Rewards:          rewards,
		Tokens:           tokens,
		Ledger:           engine,
		FoundingWalletID: cfg.Ledger.FoundingWalletID,
		Logger:           log,
	})

	return &App{
		Config:       cfg,
		Log:          log,
		Clients:      clients,
		Service:      svc,
		Ledger:       engine,
		Transactions: transactions,
		Rewards:      rewards,
		Metrics:      processor,
	}, nil
}

// Close libera o provedor de métricas quando ele precisa de flush.
func (a *App) Close() error {
	if c, ok := a.Clients.Provider.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
