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
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/raywall/kudos-ledger/pkg/app"
	"github.com/raywall/kudos-ledger/pkg/config"
	"github.com/raywall/kudos-ledger/pkg/logger"
	"github.com/raywall/kudos-ledger/pkg/transport"
)

var (
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(handler any) { lambda.Start(handler) }
	buildApp      = app.Build
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.Sources{FilePath: os.Getenv(config.EnvConfigFile)}); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

// run contém a lógica principal testável
func run(ctx context.Context, src config.Sources) error {
	cfg, err := config.LoadFrom(ctx, src)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, app.Clients{})
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Events.RewardsQueueURL != "" {
		listener := transport.NewSQSListener(a.Clients.SQS, cfg.Events.RewardsQueueURL,
			transport.RewardCacheHandler{Rewards: a.Rewards}, a.Log)
		go listener.Start(ctx)
	}

	switch cfg.Service.Runtime {
	case "lambda":
		handler := transport.NewLambdaHandler(a.Service, cfg.Service.Timeout, a.Log)
		lambdaStarter(handler.Handle)
		return nil
	default:
		return serverStarter(ctx, cfg.Service, router(a), a.Log)
	}
}

func router(a *app.App) http.Handler {
	return transport.NewRouter(a.Service, a.Config.Service.Timeout, logger.Component(a.Log, "http"))
}
