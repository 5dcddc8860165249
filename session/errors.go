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

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/raywall/kudos-ledger/dyndb"
	"github.com/raywall/kudos-ledger/repository"
)

// Códigos estáveis devolvidos aos clientes.
const (
	CodeValidation       = "E001"
	CodeInternal         = "E002"
	CodeUserNotFound     = "E004"
	CodeWalletNotFound   = "E005"
	CodeStoreUnavailable = "E006"
	CodeRewardNotFound   = "E007"
	CodeTokenNotFound    = "E008"
	CodeWalletImmutable  = "E009"
	CodeTokenAlreadyUsed = "K022"
)

// Error é o erro de domínio exposto pelos adaptadores de transporte.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError classifica err em um *Error. nil continua nil.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}

	var domain *Error
	if errors.As(err, &domain) {
		return domain
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs), errors.Is(err, repository.ErrInvalidInput), errors.Is(err, dyndb.ErrInvalidCursor):
		return &Error{Code: CodeValidation, Message: "invalid request", Status: http.StatusBadRequest, Err: err}
	case errors.Is(err, repository.ErrTokenAlreadyUsed):
		return &Error{Code: CodeTokenAlreadyUsed, Message: "payment token already used", Status: http.StatusConflict, Err: err}
	case errors.Is(err, repository.ErrTokenNotFound):
		return &Error{Code: CodeTokenNotFound, Message: "payment token not found", Status: http.StatusNotFound, Err: err}
	case errors.Is(err, repository.ErrUserNotFound):
		return &Error{Code: CodeUserNotFound, Message: "user not found", Status: http.StatusNotFound, Err: err}
	case errors.Is(err, repository.ErrWalletNotFound):
		return &Error{Code: CodeWalletNotFound, Message: "wallet not found", Status: http.StatusNotFound, Err: err}
	case errors.Is(err, repository.ErrWalletImmutable):
		return &Error{Code: CodeWalletImmutable, Message: "user already bound to another wallet", Status: http.StatusConflict, Err: err}
	case errors.Is(err, repository.ErrRewardNotFound):
		return &Error{Code: CodeRewardNotFound, Message: "reward not found", Status: http.StatusNotFound, Err: err}
	case errors.Is(err, dyndb.ErrUnavailable):
		return &Error{Code: CodeStoreUnavailable, Message: "store unavailable, retry later", Status: http.StatusServiceUnavailable, Err: err}
	default:
		return &Error{Code: CodeInternal, Message: "internal error", Status: http.StatusInternalServerError, Err: err}
	}
}
