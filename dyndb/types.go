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
package dyndb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBClient interface para abstrair o cliente DynamoDB do SDK da AWS.
//
// É satisfeita por *dynamodb.Client e permite a substituição (mocking)
// do cliente real nos testes.
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

var _ DynamoDBClient = (*dynamodb.Client)(nil)

// Store é a interface principal e genérica para interagir com uma tabela.
//
// O tipo genérico `T` é a struct Go que representa o item da tabela.
type Store[T any] interface {
	// Get busca o item por chave primária com leitura consistente.
	Get(ctx context.Context, hashKey, sortKey any) (*T, error)
	// Put grava o item. Quando uma condição é informada e avaliada como
	// falsa, retorna ErrConditionFailed.
	Put(ctx context.Context, item T, cond ...expression.ConditionBuilder) error
	// Update aplica SET ou REMOVE em um único campo e retorna os atributos novos.
	Update(ctx context.Context, key Key, action UpdateAction, field string, value any) (map[string]any, error)
	// UpdateWith executa uma atualização arbitrária (opcionalmente condicional).
	UpdateWith(ctx context.Context, key Key, update expression.UpdateBuilder, opts UpdateOptions) (*T, error)
	// Delete remove o item por chave primária.
	Delete(ctx context.Context, hashKey, sortKey any) error

	// QueryPage executa uma única Query limitada em um índice, com igualdade
	// em exatamente um campo.
	QueryPage(ctx context.Context, index, field string, value any, limit int32, cursor Cursor) (Page[T], error)
	// ScanPage executa um único Scan limitado sobre a tabela.
	ScanPage(ctx context.Context, limit int32, cursor Cursor) (Page[T], error)

	// Query inicia o QueryBuilder[T] para consultas com mais de um predicado.
	Query() *QueryBuilder[T]
}

// TableConfig é a configuração da tabela
type TableConfig[T any] struct {
	TableName string `env:"DYNAMODB_TABLE_NAME"`
	HashKey   string `env:"DYNAMODB_HASH_KEY"`
	SortKey   string `env:"DYNAMODB_SORT_KEY"` // opcional
}

// Key é a chave primária (1 ou 2 campos) no formato nome -> valor Go.
type Key map[string]any

// Cursor é a "last evaluated key" devolvida por uma leitura limitada.
// Deve ser repassada sem alterações para continuar a leitura; nil indica
// que não há próxima página.
type Cursor map[string]types.AttributeValue

// Page é o resultado de uma única leitura limitada.
type Page[T any] struct {
	Items []T
	Next  Cursor
}

// HasNext indica se a leitura devolveu um cursor de continuação.
func (p Page[T]) HasNext() bool {
	return len(p.Next) > 0
}

// UpdateAction define a ação de uma atualização de campo único.
type UpdateAction string

const (
	ActionSet    UpdateAction = "SET"
	ActionRemove UpdateAction = "REMOVE"
)

// UpdateOptions controla uma atualização feita por UpdateWith.
type UpdateOptions struct {
	// Condition é opcional; quando presente a atualização só é aplicada se
	// a expressão for verdadeira no item atual.
	Condition *expression.ConditionBuilder
	// ReturnValues padrão: ALL_NEW.
	ReturnValues types.ReturnValue
	// ReturnOldOnConditionFailure pede ao DynamoDB o item atual quando a
	// condição falha; ele fica disponível em ConditionFailedError.Existing.
	ReturnOldOnConditionFailure bool
}
