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
package config

import (
	"fmt"
	"time"
)

// Config representa a configuração completa do serviço. Cada campo pode vir
// do arquivo YAML, de variáveis de ambiente ou do SSM Parameter Store.
type Config struct {
	Service ServiceDetails `yaml:"service"`
	Tables  TablesConf     `yaml:"tables"`
	Indexes IndexesConf    `yaml:"indexes"`
	Ledger  LedgerConf     `yaml:"ledger"`
	Logging LoggingConf    `yaml:"logging"`
	Metrics MetricsConf    `yaml:"metrics"`
	Redis   RedisConf      `yaml:"redis"`
	Events  EventsConf     `yaml:"events"`
	AWS     AWSConf        `yaml:"aws"`
}

// ServiceDetails contém os metadados e configurações de runtime do serviço.
type ServiceDetails struct {
	Name    string        `yaml:"name" env:"SERVICE_NAME" envDefault:"kudos-ledger" validate:"required,hostname_rfc1123"`
	Stage   string        `yaml:"stage" env:"STAGE" envDefault:"dev" validate:"required,alphanum"`
	Runtime string        `yaml:"runtime" env:"RUNTIME" envDefault:"local" validate:"required,oneof=local lambda"`
	Port    int           `yaml:"port" env:"PORT" envDefault:"8080" validate:"required_if=Runtime local,gte=0,lt=65536"`
	Timeout time.Duration `yaml:"timeout" env:"REQUEST_TIMEOUT" envDefault:"10s" validate:"gt=0"`
}

// TablesConf nomeia as tabelas do DynamoDB.
type TablesConf struct {
	Users        string `yaml:"users" env:"USERS_TABLE" envDefault:"USERS" validate:"required"`
	Wallets      string `yaml:"wallets" env:"WALLETS_TABLE" envDefault:"WALLETS" validate:"required"`
	Transactions string `yaml:"transactions" env:"TRANSACTIONS_TABLE" envDefault:"TRANSACTIONS" validate:"required"`
	Rewards      string `yaml:"rewards" env:"REWARDS_TABLE" envDefault:"REWARDS" validate:"required"`
	Recognitions string `yaml:"recognitions" env:"RECOGNITIONS_TABLE" envDefault:"RECOGNITIONS" validate:"required"`
	Tokens       string `yaml:"tokens" env:"TOKENS_TABLE" envDefault:"TOKENS" validate:"required"`
	Counter      string `yaml:"counter" env:"COUNTER_TABLE" envDefault:"atomic_counter" validate:"required"`
}

// IndexesConf nomeia os índices secundários usados pelos repositórios.
type IndexesConf struct {
	UserByEmail          string `yaml:"user_by_email" env:"USER_EMAIL_INDEX" envDefault:"existUserIndex" validate:"required"`
	UserByToken          string `yaml:"user_by_token" env:"USER_TOKEN_INDEX" envDefault:"getUserByTokenIndex" validate:"required"`
	WalletByID           string `yaml:"wallet_by_id" env:"WALLET_ID_INDEX" envDefault:"getWalletIDIndex" validate:"required"`
	RewardByID           string `yaml:"reward_by_id" env:"REWARD_ID_INDEX" envDefault:"getRewardById" validate:"required"`
	TransactionsFrom     string `yaml:"transactions_from" env:"TRANSACTIONS_FROM_INDEX" envDefault:"getFromWalletIndex" validate:"required"`
	TransactionsTo       string `yaml:"transactions_to" env:"TRANSACTIONS_TO_INDEX" envDefault:"getToWalletIndex" validate:"required"`
	TransactionsByStatus string `yaml:"transactions_by_status" env:"TRANSACTIONS_STATUS_INDEX" envDefault:"statusAndCreated" validate:"required"`
}

// LedgerConf controla o motor de transferências e o relatório de pendências.
type LedgerConf struct {
	// FoundingWalletID é a carteira que paga reconhecimentos quando o
	// usuário remetente não tem uma carteira fundadora própria.
	FoundingWalletID string        `yaml:"founding_wallet_id" env:"FOUNDING_WALLET_ID"`
	PendingAge       time.Duration `yaml:"pending_age" env:"PENDING_AGE" envDefault:"15m" validate:"gt=0"`
	MaxPages         int           `yaml:"max_pages" env:"MAX_PAGES" envDefault:"0" validate:"gte=0"`
}

type LoggingConf struct {
	Enabled bool   `yaml:"enabled" env:"LOG_ENABLED" envDefault:"true"`
	Level   string `yaml:"level" env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`
	Format  string `yaml:"format" env:"LOG_FORMAT" envDefault:"json" validate:"oneof=json console"`
}

type MetricsConf struct {
	Datadog DatadogConf `yaml:"datadog"`
}

type DatadogConf struct {
	Enabled   bool     `yaml:"enabled" env:"DD_ENABLED"`
	Addr      string   `yaml:"addr" env:"DD_AGENT_HOST" validate:"required_if=Enabled true"`
	Namespace string   `yaml:"namespace" env:"DD_NAMESPACE" envDefault:"kudos."`
	Tags      []string `yaml:"tags" env:"DD_TAGS"`
}

// RedisConf configura o cache de leitura de Rewards. Addr vazio desabilita o cache.
type RedisConf struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB" envDefault:"0" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl" env:"REDIS_TTL" envDefault:"5m" validate:"gt=0"`
}

// EventsConf configura as filas SQS. QueueURL recebe TransferFinalized;
// RewardsQueueURL entrega alterações de recompensas para invalidar o cache.
// URL vazia desabilita a respectiva fila.
type EventsConf struct {
	QueueURL        string `yaml:"queue_url" env:"EVENTS_QUEUE_URL" validate:"omitempty,url"`
	RewardsQueueURL string `yaml:"rewards_queue_url" env:"REWARDS_QUEUE_URL" validate:"omitempty,url"`
}

type AWSConf struct {
	Region string `yaml:"region" env:"AWS_REGION" envDefault:"us-east-1" validate:"required"`
	// Endpoint sobrescreve o endpoint do DynamoDB (ex: DynamoDB Local).
	Endpoint  string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT" validate:"omitempty,url"`
	SSMPrefix string `yaml:"ssm_prefix" env:"CONFIG_SSM_PREFIX" validate:"omitempty,startswith=/"`
}

// SequenceName é o nome da sequência de transações: <stage>-<service>-transactions.
func (c *Config) SequenceName() string {
	return fmt.Sprintf("%s-%s-transactions", c.Service.Stage, c.Service.Name)
}
