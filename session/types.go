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
package session

import "github.com/raywall/kudos-ledger/repository"

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
}

type LoginResponse struct {
	Balance int64  `json:"balance"`
	Token   string `json:"token"`
}

// TokenRequest identifica o chamador pelo token de sessão.
type TokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type BalanceResponse struct {
	Balance      int64                    `json:"balance"`
	Transactions []repository.Transaction `json:"transactions"`
}

// TransactionRequest transfere Amount do chamador para o usuário Email.
// PaymentToken, quando presente, é consumido pelo ledger logo depois do
// registro da transação como pendente.
type TransactionRequest struct {
	Token        string `json:"token" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Amount       int64  `json:"amount" validate:"gt=0"`
	Reason       string `json:"reason"`
	PaymentToken string `json:"paymentToken,omitempty"`
}

type RecognitionRequest struct {
	Token    string `json:"token" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	RewardID string `json:"rewardId" validate:"required"`
	Message  string `json:"message"`
}

// TransactionPageRequest lê uma página do extrato. Direction escolhe entre as
// transações enviadas e recebidas; Cursor é o Next da página anterior.
type TransactionPageRequest struct {
	Token     string `json:"token" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=sent received"`
	Limit     int32  `json:"limit" validate:"gte=0,lte=100"`
	Cursor    string `json:"cursor,omitempty"`
}

// TransactionPage traz Next vazio na última página.
type TransactionPage struct {
	Transactions []repository.Transaction `json:"transactions"`
	Next         string                   `json:"next,omitempty"`
}
