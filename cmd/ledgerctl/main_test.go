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
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/raywall/kudos-ledger/dyndb"
	"github.com/raywall/kudos-ledger/envloader"
	"github.com/raywall/kudos-ledger/pkg/app"
	"github.com/raywall/kudos-ledger/pkg/cache"
	"github.com/raywall/kudos-ledger/pkg/config"
	"github.com/raywall/kudos-ledger/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gaugeProvider struct {
	gauges map[string]float64
}

func (g *gaugeProvider) Count(string, float64, []string) error     { return nil }
func (g *gaugeProvider) Histogram(string, float64, []string) error { return nil }
func (g *gaugeProvider) Gauge(name string, value float64, _ []string) error {
	g.gauges[name] = value
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.Equal(t, 1, run(context.Background(), nil, &out, envloader.MapLookup(nil)))
	assert.Equal(t, 1, run(context.Background(), []string{"deploy"}, &out, envloader.MapLookup(nil)))
	assert.Equal(t, 1, run(context.Background(), []string{"validate"}, &out, envloader.MapLookup(nil)))
	assert.Contains(t, out.String(), "-file")
}

func TestRunValidate(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		var out bytes.Buffer
		path := writeFile(t, "service:\n  name: cli-test\n  stage: prod\n")

		code := run(context.Background(), []string{"validate", "-file", path}, &out, envloader.MapLookup(nil))

		assert.Equal(t, 0, code)
		assert.Contains(t, out.String(), "Configuração válida")
	})

	t.Run("invalid file as json", func(t *testing.T) {
		var out bytes.Buffer
		path := writeFile(t, "service:\n  runtime: kubernetes\n")

		code := run(context.Background(), []string{"validate", "-file", path}, &out,
			envloader.MapLookup(map[string]string{"OUTPUT_FORMAT": "json"}))

		assert.Equal(t, 1, code)
		assert.Contains(t, out.String(), `"valid":false`)
	})

	t.Run("unknown field", func(t *testing.T) {
		var out bytes.Buffer
		path := writeFile(t, "service:\n  route: /api\n")

		assert.Equal(t, 1, run(context.Background(), []string{"validate", "-file", path}, &out, envloader.MapLookup(nil)))
	})
}

func TestRunPending(t *testing.T) {
	stale := repository.Transaction{
		TransactionID: "tx-stale", FromWalletID: "A", ToWalletID: "B", Amount: 30,
		Status: repository.StatusPending, Date: 1_000,
	}
	item, err := attributevalue.MarshalMap(stale)
	require.NoError(t, err)

	var input *dynamodb.QueryInput
	client := &dyndb.MockDynamoClient{
		QueryFn: func(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
			input = in
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil
		},
	}
	provider := &gaugeProvider{gauges: map[string]float64{}}

	originalBuild, originalNow := buildApp, now
	buildApp = func(ctx context.Context, cfg *config.Config, _ app.Clients) (*app.App, error) {
		return app.Build(ctx, cfg, app.Clients{Dynamo: client, Cache: cache.Noop{}, Provider: provider})
	}
	now = func() time.Time { return time.Unix(10_000, 0) }
	defer func() { buildApp, now = originalBuild, originalNow }()

	var out bytes.Buffer
	code := run(context.Background(), []string{"pending", "-age", "1h"}, &out,
		envloader.MapLookup(map[string]string{"LOG_ENABLED": "false"}))

	require.Equal(t, 0, code, out.String())
	assert.True(t, strings.HasPrefix(out.String(), "1 transações pendentes"))
	assert.Contains(t, out.String(), "tx-stale")
	assert.Equal(t, float64(1), provider.gauges["ledger.transfer.pending"])

	require.NotNil(t, input)
	assert.Equal(t, "TRANSACTIONS", aws.ToString(input.TableName))
	assert.Equal(t, "statusAndCreated", aws.ToString(input.IndexName))
}
