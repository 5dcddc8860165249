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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DefaultCounterTable é a tabela padrão dos contadores atômicos.
const DefaultCounterTable = "atomic_counter"

// counter é o registro {id, quantity} de uma sequência.
type counter struct {
	ID       string `dynamodbav:"id"`
	Quantity int64  `dynamodbav:"quantity"`
}

// Sequence gera inteiros monotonicamente crescentes, um registro por nome
// de sequência. Cada Next é uma única ida ao DynamoDB, sem cache local.
type Sequence struct {
	store Store[counter]
}

// NewSequence cria o gerador sobre a tabela de contadores (DefaultCounterTable se vazia).
func NewSequence(client DynamoDBClient, table string) *Sequence {
	if table == "" {
		table = DefaultCounterTable
	}
	return &Sequence{
		store: New(client, TableConfig[counter]{TableName: table, HashKey: "id"}),
	}
}

// Next incrementa atomicamente a sequência e devolve o valor pós-incremento.
// Um contador inexistente começa em zero, logo a primeira chamada devolve 1.
// Não é idempotente: retentar após erro pode consumir um valor.
func (s *Sequence) Next(ctx context.Context, name string) (int64, error) {
	quantity := expression.Name("quantity")
	update := expression.Set(quantity,
		expression.Plus(expression.IfNotExists(quantity, expression.Value(0)), expression.Value(1)))

	c, err := s.store.UpdateWith(ctx, Key{"id": name}, update, UpdateOptions{
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, &UnavailableError{Op: "sequence", Table: name, Err: ErrInvalidItem}
	}
	return c.Quantity, nil
}
