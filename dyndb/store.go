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
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/kudos-ledger/envloader"
)

type dynamoStore[T any] struct {
	client DynamoDBClient
	cfg    TableConfig[T]
}

// New cria um store reutilizável. Sem TableName, a configuração é lida das
// variáveis de ambiente DYNAMODB_*.
func New[T any](client DynamoDBClient, cfg TableConfig[T]) Store[T] {
	if cfg.TableName == "" {
		_ = envloader.Load(&cfg)
	}

	return &dynamoStore[T]{
		client: client,
		cfg:    cfg,
	}
}

// Get item por chave primária
func (s *dynamoStore[T]) Get(ctx context.Context, hashKey, sortKey any) (*T, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.cfg.TableName),
		Key:            s.key(hashKey, sortKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, wrapErr("get", s.cfg.TableName, err)
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var item T
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrInvalidItem, err)
	}
	return &item, nil
}

// Put grava o item (upsert), opcionalmente condicionado.
func (s *dynamoStore[T]) Put(ctx context.Context, item T, cond ...expression.ConditionBuilder) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrInvalidItem, err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(s.cfg.TableName),
		Item:      av,
	}

	if len(cond) > 0 {
		c := cond[0]
		for _, extra := range cond[1:] {
			c = c.And(extra)
		}
		expr, err := expression.NewBuilder().WithCondition(c).Build()
		if err != nil {
			return fmt.Errorf("%w: condition: %v", ErrInvalidItem, err)
		}
		input.ConditionExpression = expr.Condition()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		return wrapErr("put", s.cfg.TableName, err)
	}
	return nil
}

// Update aplica SET (com value) ou REMOVE em um único campo.
func (s *dynamoStore[T]) Update(ctx context.Context, key Key, action UpdateAction, field string, value any) (map[string]any, error) {
	var update expression.UpdateBuilder
	switch action {
	case ActionSet:
		update = expression.Set(expression.Name(field), expression.Value(value))
	case ActionRemove:
		update = expression.Remove(expression.Name(field))
	default:
		return nil, fmt.Errorf("%w: unsupported update action %q", ErrInvalidItem, action)
	}

	out, err := s.updateItem(ctx, key, update, UpdateOptions{})
	if err != nil {
		return nil, err
	}

	attrs := map[string]any{}
	if err := attributevalue.UnmarshalMap(out.Attributes, &attrs); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrInvalidItem, err)
	}
	return attrs, nil
}

// UpdateWith executa uma atualização arbitrária e devolve o item conforme
// opts.ReturnValues (nil quando o DynamoDB não devolve atributos).
func (s *dynamoStore[T]) UpdateWith(ctx context.Context, key Key, update expression.UpdateBuilder, opts UpdateOptions) (*T, error) {
	out, err := s.updateItem(ctx, key, update, opts)
	if err != nil {
		return nil, err
	}
	if len(out.Attributes) == 0 {
		return nil, nil
	}

	var item T
	if err := attributevalue.UnmarshalMap(out.Attributes, &item); err != nil {
		return nil, fmt.Errorf("%w: unmarshal: %v", ErrInvalidItem, err)
	}
	return &item, nil
}

func (s *dynamoStore[T]) updateItem(ctx context.Context, key Key, update expression.UpdateBuilder, opts UpdateOptions) (*dynamodb.UpdateItemOutput, error) {
	k, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrInvalidItem, err)
	}

	builder := expression.NewBuilder().WithUpdate(update)
	if opts.Condition != nil {
		builder = builder.WithCondition(*opts.Condition)
	}
	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: update expression: %v", ErrInvalidItem, err)
	}

	returnValues := opts.ReturnValues
	if returnValues == "" {
		returnValues = types.ReturnValueAllNew
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.cfg.TableName),
		Key:                       k,
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              returnValues,
	}
	if opts.ReturnOldOnConditionFailure {
		input.ReturnValuesOnConditionCheckFailure = types.ReturnValuesOnConditionCheckFailureAllOld
	}

	out, err := s.client.UpdateItem(ctx, input)
	if err != nil {
		return nil, wrapErr("update", s.cfg.TableName, err)
	}
	return out, nil
}

// Delete item
func (s *dynamoStore[T]) Delete(ctx context.Context, hashKey, sortKey any) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.cfg.TableName),
		Key:       s.key(hashKey, sortKey),
	})
	if err != nil {
		return wrapErr("delete", s.cfg.TableName, err)
	}
	return nil
}

// QueryPage executa uma única Query limitada, igualdade em um campo do índice.
func (s *dynamoStore[T]) QueryPage(ctx context.Context, index, field string, value any, limit int32, cursor Cursor) (Page[T], error) {
	qb := s.Query().KeyEqual(field, value).StartFrom(cursor)
	if index != "" {
		qb = qb.Index(index)
	}
	if limit > 0 {
		qb = qb.Limit(limit)
	}
	return qb.Exec(ctx)
}

// ScanPage executa um único Scan limitado.
func (s *dynamoStore[T]) ScanPage(ctx context.Context, limit int32, cursor Cursor) (Page[T], error) {
	input := &dynamodb.ScanInput{
		TableName:         aws.String(s.cfg.TableName),
		ExclusiveStartKey: cursor,
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	out, err := s.client.Scan(ctx, input)
	if err != nil {
		return Page[T]{}, wrapErr("scan", s.cfg.TableName, err)
	}
	return unmarshalPage[T](out.Items, out.LastEvaluatedKey)
}

func (s *dynamoStore[T]) key(hashKey, sortKey any) map[string]types.AttributeValue {
	key := map[string]types.AttributeValue{
		s.cfg.HashKey: attr(hashKey),
	}
	if s.cfg.SortKey != "" && sortKey != nil {
		key[s.cfg.SortKey] = attr(sortKey)
	}
	return key
}

func unmarshalPage[T any](items []map[string]types.AttributeValue, lastKey map[string]types.AttributeValue) (Page[T], error) {
	result := make([]T, 0, len(items))
	for _, item := range items {
		var t T
		if err := attributevalue.UnmarshalMap(item, &t); err != nil {
			return Page[T]{}, fmt.Errorf("%w: unmarshal: %v", ErrInvalidItem, err)
		}
		result = append(result, t)
	}

	page := Page[T]{Items: result}
	if len(lastKey) > 0 {
		page.Next = Cursor(lastKey)
	}
	return page, nil
}

// attr converte qualquer valor para types.AttributeValue
func attr(v any) types.AttributeValue {
	if v == nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return &types.AttributeValueMemberNULL{Value: true}
	}
	return av
}
