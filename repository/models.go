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
package repository

// Status is the lifecycle of a Transaction or Recognition.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusFailed   Status = "failed"
)

// Final reports whether s is a terminal status.
func (s Status) Final() bool {
	return s == StatusApproved || s == StatusFailed
}

// TokenStatus is the state of a single-use payment token.
type TokenStatus string

const (
	TokenCreated   TokenStatus = "CREATED"
	TokenProcessed TokenStatus = "PROCESSED"
)

// RoleEmployee is assigned to users provisioned on first login.
const RoleEmployee = "employee"

type User struct {
	Email            string `dynamodbav:"email" json:"email" validate:"required,email"`
	WalletID         string `dynamodbav:"walletId" json:"walletId" validate:"required"`
	Token            string `dynamodbav:"token,omitempty" json:"token,omitempty"`
	Name             string `dynamodbav:"name,omitempty" json:"name,omitempty"`
	UserType         string `dynamodbav:"userType,omitempty" json:"userType,omitempty"`
	FoundingWalletID string `dynamodbav:"foundingWalletId,omitempty" json:"foundingWalletId,omitempty"`
}

type Wallet struct {
	WalletID string `dynamodbav:"walletId" json:"walletId" validate:"required"`
	Balance  int64  `dynamodbav:"balance" json:"balance" validate:"gte=0"`
}

type Transaction struct {
	TransactionID string `dynamodbav:"transactionId" json:"transactionId" validate:"required"`
	FromWalletID  string `dynamodbav:"fromWalletId" json:"fromWalletId" validate:"required"`
	ToWalletID    string `dynamodbav:"toWalletId" json:"toWalletId" validate:"required"`
	Amount        int64  `dynamodbav:"amount" json:"amount" validate:"gt=0"`
	Reason        string `dynamodbav:"reason" json:"reason"`
	Status        Status `dynamodbav:"status" json:"status" validate:"oneof=pending approved failed"`
	// Date is the creation time in epoch seconds.
	Date     int64 `dynamodbav:"date" json:"date"`
	Sequence int64 `dynamodbav:"sequence,omitempty" json:"sequence,omitempty"`
}

type Reward struct {
	RewardID string `dynamodbav:"rewardId" json:"rewardId"`
	Name     string `dynamodbav:"name" json:"name"`
	Value    int64  `dynamodbav:"value" json:"value"`
}

type Recognition struct {
	RecognitionID string `dynamodbav:"recognitionId" json:"recognitionId" validate:"required"`
	TransactionID string `dynamodbav:"transactionId" json:"transactionId" validate:"required"`
	From          string `dynamodbav:"from" json:"from"`
	To            string `dynamodbav:"to" json:"to"`
	Message       string `dynamodbav:"message" json:"message"`
	RewardID      string `dynamodbav:"rewardId" json:"rewardId" validate:"required"`
	Status        Status `dynamodbav:"status" json:"status" validate:"oneof=pending approved failed"`
}

type Token struct {
	Token          string      `dynamodbav:"token" json:"token"`
	Status         TokenStatus `dynamodbav:"tokenStatus" json:"tokenStatus"`
	ProcessingCode string      `dynamodbav:"processingCode,omitempty" json:"processingCode,omitempty"`
	// Created is the issue time in epoch seconds.
	Created int64 `dynamodbav:"created" json:"created"`
}
