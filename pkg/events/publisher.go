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
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// TypeTransferFinalized identifica o evento publicado quando uma
// transferência atinge um status final.
const TypeTransferFinalized = "TransferFinalized"

// SQSClient define a interface necessária para o publisher (permite Mocking)
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// TransferFinalized é o corpo da mensagem publicada na fila.
type TransferFinalized struct {
	TransactionID string    `json:"transactionId"`
	FromWalletID  string    `json:"fromWalletId"`
	ToWalletID    string    `json:"toWalletId"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	Sequence      int64     `json:"sequence,omitempty"`
	FinalizedAt   time.Time `json:"finalizedAt"`
}

// Publisher entrega eventos de transferência finalizada.
type Publisher interface {
	PublishTransfer(ctx context.Context, evt TransferFinalized) error
}

// Noop descarta todos os eventos; usado quando nenhuma fila está configurada.
type Noop struct{}

func (Noop) PublishTransfer(context.Context, TransferFinalized) error { return nil }

// SQSPublisher publica eventos em uma fila SQS.
type SQSPublisher struct {
	client   SQSClient
	queueURL string
}

// NewSQSPublisher devolve Noop quando queueURL está vazia.
func NewSQSPublisher(client SQSClient, queueURL string) Publisher {
	if client == nil || queueURL == "" {
		return Noop{}
	}
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// PublishTransfer serializa o evento e envia uma mensagem. O tipo do evento
// e o status vão como atributos para permitir filtros na assinatura.
func (p *SQSPublisher) PublishTransfer(ctx context.Context, evt TransferFinalized) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", TypeTransferFinalized, err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {DataType: aws.String("String"), StringValue: aws.String(TypeTransferFinalized)},
			"status":    {DataType: aws.String("String"), StringValue: aws.String(evt.Status)},
		},
	})
	if err != nil {
		return fmt.Errorf("events: send to %s: %w", p.queueURL, err)
	}
	return nil
}
