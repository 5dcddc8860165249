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
)

// MockStore é um mock da interface Store[T] baseado em campos de função.
//
// Métodos sem função definida se comportam como uma tabela vazia. Query usa
// Client (um MockDynamoClient vazio quando nil).
type MockStore[T any] struct {
	GetFn        func(ctx context.Context, hashKey, sortKey any) (*T, error)
	PutFn        func(ctx context.Context, item T, cond ...expression.ConditionBuilder) error
	UpdateFn     func(ctx context.Context, key Key, action UpdateAction, field string, value any) (map[string]any, error)
	UpdateWithFn func(ctx context.Context, key Key, update expression.UpdateBuilder, opts UpdateOptions) (*T, error)
	DeleteFn     func(ctx context.Context, hashKey, sortKey any) error
	QueryPageFn  func(ctx context.Context, index, field string, value any, limit int32, cursor Cursor) (Page[T], error)
	ScanPageFn   func(ctx context.Context, limit int32, cursor Cursor) (Page[T], error)
	Client       DynamoDBClient
}

func (m *MockStore[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, hashKey, sortKey)
	}
	return nil, ErrNotFound
}

func (m *MockStore[T]) Put(ctx context.Context, item T, cond ...expression.ConditionBuilder) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, item, cond...)
	}
	return nil
}

func (m *MockStore[T]) Update(ctx context.Context, key Key, action UpdateAction, field string, value any) (map[string]any, error) {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, key, action, field, value)
	}
	return map[string]any{}, nil
}

func (m *MockStore[T]) UpdateWith(ctx context.Context, key Key, update expression.UpdateBuilder, opts UpdateOptions) (*T, error) {
	if m.UpdateWithFn != nil {
		return m.UpdateWithFn(ctx, key, update, opts)
	}
	return nil, nil
}

func (m *MockStore[T]) Delete(ctx context.Context, hashKey, sortKey any) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, hashKey, sortKey)
	}
	return nil
}

func (m *MockStore[T]) QueryPage(ctx context.Context, index, field string, value any, limit int32, cursor Cursor) (Page[T], error) {
	if m.QueryPageFn != nil {
		return m.QueryPageFn(ctx, index, field, value, limit, cursor)
	}
	return Page[T]{Items: []T{}}, nil
}

func (m *MockStore[T]) ScanPage(ctx context.Context, limit int32, cursor Cursor) (Page[T], error) {
	if m.ScanPageFn != nil {
		return m.ScanPageFn(ctx, limit, cursor)
	}
	return Page[T]{Items: []T{}}, nil
}

func (m *MockStore[T]) Query() *QueryBuilder[T] {
	client := m.Client
	if client == nil {
		client = &MockDynamoClient{}
	}
	return New(client, TableConfig[T]{TableName: "mock", HashKey: "id"}).Query()
}

// MockDynamoClient é um mock para a interface DynamoDBClient de baixo nível.
//
// Permite testar a lógica interna do `dynamoStore` sem tocar no AWS SDK.
// Funções não definidas devolvem saídas vazias (item inexistente, página vazia).
type MockDynamoClient struct {
	GetItemFn    func(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItemFn    func(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItemFn func(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItemFn func(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	QueryFn      func(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	ScanFn       func(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

func (m *MockDynamoClient) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.GetItemFn != nil {
		return m.GetItemFn(ctx, params, optFns...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *MockDynamoClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.PutItemFn != nil {
		return m.PutItemFn(ctx, params, optFns...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *MockDynamoClient) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if m.UpdateItemFn != nil {
		return m.UpdateItemFn(ctx, params, optFns...)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (m *MockDynamoClient) DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.DeleteItemFn != nil {
		return m.DeleteItemFn(ctx, params, optFns...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *MockDynamoClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if m.QueryFn != nil {
		return m.QueryFn(ctx, params, optFns...)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (m *MockDynamoClient) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.ScanFn != nil {
		return m.ScanFn(ctx, params, optFns...)
	}
	return &dynamodb.ScanOutput{}, nil
}
