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
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/raywall/kudos-ledger/envloader"
	"github.com/raywall/kudos-ledger/pkg/app"
	"github.com/raywall/kudos-ledger/pkg/config"
	"github.com/raywall/kudos-ledger/pkg/metrics"
	"github.com/raywall/kudos-ledger/repository"
)

var (
	// Variáveis injetáveis para mocking
	buildApp = app.Build
	now      = time.Now
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.LookupEnv))
}

// run executa o subcomando e devolve o código de saída.
func run(ctx context.Context, args []string, out io.Writer, lookup envloader.LookupFunc) int {
	if len(args) < 1 {
		fmt.Fprintln(out, "Comandos esperados: validate, pending")
		return 1
	}

	jsonOutput := false
	if v, ok := lookup("OUTPUT_FORMAT"); ok && v == "json" {
		jsonOutput = true
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(out)
		file := fs.String("file", "", "Caminho do arquivo YAML")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		if *file == "" {
			fmt.Fprintln(out, "Erro: flag -file é obrigatória")
			return 1
		}
		return runValidate(ctx, out, *file, lookup, jsonOutput)

	case "pending":
		fs := flag.NewFlagSet("pending", flag.ContinueOnError)
		fs.SetOutput(out)
		file := fs.String("file", "", "Caminho do arquivo YAML (opcional)")
		age := fs.Duration("age", 0, "Idade mínima das transações pendentes (padrão: ledger.pending_age)")
		if err := fs.Parse(args[1:]); err != nil {
			return 1
		}
		return runPending(ctx, out, *file, *age, lookup, jsonOutput)

	default:
		fmt.Fprintf(out, "Comando desconhecido: %s\n", args[0])
		return 1
	}
}

type validationReport struct {
	Valid  bool   `json:"valid"`
	Error  string `json:"error,omitempty"`
	Source string `json:"source"`
}

func runValidate(ctx context.Context, out io.Writer, path string, lookup envloader.LookupFunc, jsonOutput bool) int {
	_, err := config.LoadFrom(ctx, config.Sources{FilePath: path, Lookup: lookup})
	report := validationReport{Valid: err == nil, Source: path}
	if err != nil {
		report.Error = err.Error()
	}

	if jsonOutput {
		_ = json.NewEncoder(out).Encode(report)
	} else if report.Valid {
		fmt.Fprintf(out, "Configuração válida: %s\n", path)
	} else {
		fmt.Fprintf(out, "Configuração inválida: %s\n%s\n", path, report.Error)
	}

	if !report.Valid {
		return 1
	}
	return 0
}

func runPending(ctx context.Context, out io.Writer, path string, age time.Duration, lookup envloader.LookupFunc, jsonOutput bool) int {
	cfg, err := config.LoadFrom(ctx, config.Sources{FilePath: path, Lookup: lookup})
	if err != nil {
		fmt.Fprintf(out, "Erro de configuração: %v\n", err)
		return 1
	}
	if age <= 0 {
		age = cfg.Ledger.PendingAge
	}

	a, err := buildApp(ctx, cfg, app.Clients{})
	if err != nil {
		fmt.Fprintf(out, "Erro de inicialização: %v\n", err)
		return 1
	}
	defer a.Close()

	pending, err := a.Transactions.ListPending(ctx, age, now())
	if err != nil {
		a.Log.Error().Err(err).Msg("pending report failed")
		fmt.Fprintf(out, "Erro ao listar pendências: %v\n", err)
		return 1
	}

	if err := a.Metrics.Record(metrics.PendingTransfers, float64(len(pending)), nil); err != nil {
		a.Log.Warn().Err(err).Msg("metric not recorded")
	}
	a.Log.Info().Int("pending", len(pending)).Dur("older_than", age).Msg("pending report")

	printPending(out, pending, jsonOutput)
	return 0
}

func printPending(out io.Writer, pending []repository.Transaction, jsonOutput bool) {
	if jsonOutput {
		enc := json.NewEncoder(out)
		for _, tx := range pending {
			_ = enc.Encode(tx)
		}
		return
	}

	fmt.Fprintf(out, "%d transações pendentes\n", len(pending))
	for _, tx := range pending {
		fmt.Fprintf(out, "%s\t%s -> %s\t%d\t%s\n",
			tx.TransactionID, tx.FromWalletID, tx.ToWalletID, tx.Amount,
			time.Unix(tx.Date, 0).UTC().Format(time.RFC3339))
	}
}
