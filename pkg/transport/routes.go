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
package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/raywall/kudos-ledger/repository"
	"github.com/raywall/kudos-ledger/session"
)

const (
	HeaderCorrelationID = "x-correlation-id"
	HeaderLatency       = "x-latency-ms"

	// CodeRouteNotFound é devolvido para rotas desconhecidas.
	CodeRouteNotFound = "E003"
)

// API são as operações expostas pelos adaptadores. *session.Service a implementa.
type API interface {
	Login(ctx context.Context, req session.LoginRequest) (*session.LoginResponse, error)
	GetBalance(ctx context.Context, req session.TokenRequest) (*session.BalanceResponse, error)
	GetTransactions(ctx context.Context, req session.TokenRequest) ([]repository.Transaction, error)
	PageTransactions(ctx context.Context, req session.TransactionPageRequest) (*session.TransactionPage, error)
	CreateTransaction(ctx context.Context, req session.TransactionRequest) (*repository.Transaction, error)
	CreateRecognition(ctx context.Context, req session.RecognitionRequest) (*repository.Recognition, error)
	IssuePaymentToken(ctx context.Context, req session.TokenRequest) (*repository.Token, error)
}

var _ API = (*session.Service)(nil)

// endpoint decodifica o corpo JSON, chama a operação e devolve status e resposta.
type endpoint func(ctx context.Context, body []byte) (int, any, error)

type route struct {
	method string
	path   string
	call   endpoint
}

// routes é a tabela compartilhada entre o servidor HTTP e o handler Lambda.
func routes(api API) []route {
	return []route{
		{http.MethodPost, "/login", bind(http.StatusOK, api.Login)},
		{http.MethodPost, "/balance", bind(http.StatusOK, api.GetBalance)},
		{http.MethodPost, "/transactions/list", bind(http.StatusOK, api.GetTransactions)},
		{http.MethodPost, "/transactions/page", bind(http.StatusOK, api.PageTransactions)},
		{http.MethodPost, "/transactions", bind(http.StatusCreated, api.CreateTransaction)},
		{http.MethodPost, "/recognitions", bind(http.StatusCreated, api.CreateRecognition)},
		{http.MethodPost, "/payment-tokens", bind(http.StatusCreated, api.IssuePaymentToken)},
		{http.MethodGet, "/health", health},
	}
}

func bind[Req, Resp any](status int, op func(context.Context, Req) (Resp, error)) endpoint {
	return func(ctx context.Context, body []byte) (int, any, error) {
		var req Req
		if len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				return 0, nil, &session.Error{
					Code:    session.CodeValidation,
					Message: "invalid JSON body",
					Status:  http.StatusBadRequest,
					Err:     err,
				}
			}
		}
		resp, err := op(ctx, req)
		if err != nil {
			return 0, nil, err
		}
		return status, resp, nil
	}
}

func health(context.Context, []byte) (int, any, error) {
	return http.StatusOK, map[string]string{"status": "ok"}, nil
}

// render transforma o resultado de um endpoint em status e corpo JSON.
func render(status int, resp any, err error) (int, []byte) {
	if err != nil {
		e := session.AsError(err)
		status, resp = e.Status, e
	}
	body, mErr := json.Marshal(resp)
	if mErr != nil {
		return http.StatusInternalServerError, []byte(`{"code":"E002","message":"internal error"}`)
	}
	return status, body
}

func routeNotFound() (int, []byte) {
	return render(0, nil, &session.Error{
		Code:    CodeRouteNotFound,
		Message: "route not found",
		Status:  http.StatusNotFound,
	})
}
