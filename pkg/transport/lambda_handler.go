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
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LambdaHandler adapta eventos do API Gateway para a API.
type LambdaHandler struct {
	routes  map[string]endpoint
	timeout time.Duration
	log     zerolog.Logger
}

// NewLambdaHandler cria uma nova instância do adaptador
func NewLambdaHandler(api API, timeout time.Duration, log zerolog.Logger) *LambdaHandler {
	h := &LambdaHandler{
		routes:  make(map[string]endpoint),
		timeout: timeout,
		log:     log,
	}
	for _, rt := range routes(api) {
		h.routes[routeKey(rt.method, rt.path)] = rt.call
	}
	return h
}

// Handle processa a requisição Lambda
func (h *LambdaHandler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()

	corrID := header(req.Headers, HeaderCorrelationID)
	if corrID == "" {
		corrID = uuid.NewString()
	}

	logger := h.log.With().Str("correlation_id", corrID).Logger()
	ctx = logger.WithContext(ctx)

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	var (
		status int
		body   []byte
	)
	if call, ok := h.routes[routeKey(req.HTTPMethod, req.Path)]; ok {
		status, body = render(call(ctx, []byte(req.Body)))
	} else {
		status, body = routeNotFound()
	}

	logger.Info().
		Str("method", req.HTTPMethod).
		Str("path", req.Path).
		Int("status", status).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("lambda request completed")

	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":      "application/json",
			HeaderCorrelationID: corrID,
		},
		Body: string(body),
	}, nil
}

func routeKey(method, path string) string {
	if method == "" {
		method = http.MethodGet
	}
	return strings.ToUpper(method) + " " + strings.TrimSuffix(path, "/")
}

// header busca sem diferenciar maiúsculas; o API Gateway pode normalizar os nomes.
func header(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
