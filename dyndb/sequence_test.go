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
package dyndb_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/kudos-ledger/dyndb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterTable simula o incremento atômico do DynamoDB para UpdateItem.
func counterTable() (*dyndb.MockDynamoClient, map[string]int64) {
	var mu sync.Mutex
	values := map[string]int64{}

	client := &dyndb.MockDynamoClient{
		UpdateItemFn: func(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			id := in.Key["id"].(*types.AttributeValueMemberS).Value

			mu.Lock()
			values[id]++
			v := values[id]
			mu.Unlock()

			return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
				"quantity": &types.AttributeValueMemberN{Value: strconv.FormatInt(v, 10)},
			}}, nil
		},
	}
	return client, values
}

func TestSequence_Next(t *testing.T) {
	t.Parallel()

	var captured *dynamodb.UpdateItemInput
	client := &dyndb.MockDynamoClient{
		UpdateItemFn: func(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			captured = in
			return &dynamodb.UpdateItemOutput{Attributes: map[string]types.AttributeValue{
				"quantity": &types.AttributeValueMemberN{Value: "1"},
			}}, nil
		},
	}

	seq := dyndb.NewSequence(client, "")
	v, err := seq.Next(context.Background(), "dev-kudos-transactions")

	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	require.NotNil(t, captured)
	assert.Equal(t, dyndb.DefaultCounterTable, aws.ToString(captured.TableName))
	assert.Equal(t, types.ReturnValueUpdatedNew, captured.ReturnValues)
	assert.Contains(t, aws.ToString(captured.UpdateExpression), "if_not_exists")
}

func TestSequence_ConcurrentValuesAreDistinctAndContiguous(t *testing.T) {
	t.Parallel()

	client, _ := counterTable()
	seq := dyndb.NewSequence(client, "counters")

	const n = 50
	results := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := seq.Next(context.Background(), "seq")
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	sort.Slice(results, func(a, b int) bool { return results[a] < results[b] })
	for i, v := range results {
		assert.Equal(t, int64(i+1), v)
	}
}

func TestSequence_IndependentNames(t *testing.T) {
	t.Parallel()

	client, _ := counterTable()
	seq := dyndb.NewSequence(client, "")

	a1, _ := seq.Next(context.Background(), "a")
	a2, _ := seq.Next(context.Background(), "a")
	b1, _ := seq.Next(context.Background(), "b")

	assert.Equal(t, int64(1), a1)
	assert.Equal(t, int64(2), a2)
	assert.Equal(t, int64(1), b1)
}

func TestSequence_Unavailable(t *testing.T) {
	t.Parallel()

	client := &dyndb.MockDynamoClient{
		UpdateItemFn: func(_ context.Context, _ *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
			return nil, errors.New("connection reset")
		},
	}

	_, err := dyndb.NewSequence(client, "").Next(context.Background(), "seq")

	assert.ErrorIs(t, err, dyndb.ErrUnavailable)
}
