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
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"
)

// SQSClient define a interface necessária para o listener (permite Mocking)
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// ErrMalformedMessage marca mensagens que nunca serão processadas. O listener
// as remove da fila em vez de aguardar nova entrega.
var ErrMalformedMessage = errors.New("malformed message")

// MessageHandler processa o corpo de uma mensagem. Um erro mantém a mensagem
// na fila para nova entrega, exceto ErrMalformedMessage.
type MessageHandler interface {
	HandleMessage(ctx context.Context, body string) error
}

// SQSListener gerencia o loop de leitura de uma fila SQS.
type SQSListener struct {
	client     SQSClient
	queueURL   string
	handler    MessageHandler
	logger     zerolog.Logger
	retryDelay time.Duration
}

func NewSQSListener(client SQSClient, queueURL string, handler MessageHandler, log zerolog.Logger) *SQSListener {
	return &SQSListener{
		client:     client,
		queueURL:   queueURL,
		handler:    handler,
		logger:     log.With().Str("component", "sqs_listener").Str("queue", queueURL).Logger(),
		retryDelay: 5 * time.Second,
	}
}

// Start consome a fila até ctx ser cancelado (bloqueante).
func (s *SQSListener) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada, listener desativado")
		return
	}

	s.logger.Info().Msg("monitorando fila SQS")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("parando monitoramento SQS")
			return
		default:
		}

		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20, // long polling
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Dur("retry_in", s.retryDelay).Msg("erro no SQS")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryDelay):
			}
			continue
		}

		for _, msg := range out.Messages {
			s.process(ctx, msg)
		}
	}
}

func (s *SQSListener) process(ctx context.Context, msg types.Message) {
	msgID := aws.ToString(msg.MessageId)
	if err := s.handler.HandleMessage(ctx, aws.ToString(msg.Body)); err != nil {
		if !errors.Is(err, ErrMalformedMessage) {
			s.logger.Error().Err(err).Str("message_id", msgID).Msg("falha ao processar mensagem")
			return
		}
		s.logger.Warn().Err(err).Str("message_id", msgID).Msg("descartando mensagem malformada")
	}

	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: msg.ReceiptHandle,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("message_id", msgID).Msg("falha ao remover mensagem")
	}
}

// RewardInvalidator descarta recompensas em cache.
type RewardInvalidator interface {
	Invalidate(ctx context.Context, rewardID string) error
}

// RewardChange é a mensagem publicada quando uma recompensa muda.
type RewardChange struct {
	RewardID string `json:"rewardId"`
}

// RewardCacheHandler invalida o cache para cada RewardChange recebida.
type RewardCacheHandler struct {
	Rewards RewardInvalidator
}

func (h RewardCacheHandler) HandleMessage(ctx context.Context, body string) error {
	var change RewardChange
	if err := json.Unmarshal([]byte(body), &change); err != nil {
		return fmt.Errorf("%w: reward change: %v", ErrMalformedMessage, err)
	}
	if change.RewardID == "" {
		return fmt.Errorf("%w: reward change without rewardId", ErrMalformedMessage)
	}
	return h.Rewards.Invalidate(ctx, change.RewardID)
}
