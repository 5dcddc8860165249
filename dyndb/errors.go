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
package dyndb

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

var (
	// ErrNotFound – erro padrão quando o item não existe
	ErrNotFound = errors.New("dyndb: item not found")
	// ErrConditionFailed indica que uma escrita condicional perdeu a corrida:
	// outro escritor já mudou o item. Não deve ser retentado.
	ErrConditionFailed = errors.New("dyndb: condition failed")
	// ErrUnavailable indica falha de transporte ou do backend (inclui
	// timeouts). O chamador pode retentar.
	ErrUnavailable = errors.New("dyndb: store unavailable")
	// ErrInvalidItem indica falha de (un)marshal de um item ou chave.
	ErrInvalidItem = errors.New("dyndb: invalid item")
)

// Outcome é o resultado "etiquetado" de uma operação no store. Força o
// chamador a tratar explicitamente a corrida de uma escrita condicional.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeConditionFailed
	OutcomeUnavailable
	OutcomeInvalid
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeConditionFailed:
		return "condition_failed"
	case OutcomeUnavailable:
		return "unavailable"
	case OutcomeInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Classify mapeia qualquer erro devolvido por este pacote para um Outcome.
func Classify(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrConditionFailed):
		return OutcomeConditionFailed
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrInvalidItem):
		return OutcomeInvalid
	default:
		return OutcomeUnavailable
	}
}

// ConditionFailedError é devolvido quando a ConditionExpression é falsa.
type ConditionFailedError struct {
	Op    string
	Table string
	// Existing é o item atual, quando a operação pediu
	// ReturnValuesOnConditionCheckFailure=ALL_OLD e o item existe.
	Existing map[string]types.AttributeValue
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("dyndb: %s on %s: condition failed", e.Op, e.Table)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// UnavailableError encapsula a falha original do SDK.
type UnavailableError struct {
	Op    string
	Table string
	// Code é o código do erro da API (ex: ProvisionedThroughputExceededException),
	// vazio para falhas de transporte ou de contexto.
	Code string
	Err  error
}

func (e *UnavailableError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dyndb: %s on %s failed (%s): %v", e.Op, e.Table, e.Code, e.Err)
	}
	return fmt.Sprintf("dyndb: %s on %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// wrapErr converte o erro do SDK no erro tipado correspondente.
func wrapErr(op, table string, err error) error {
	if err == nil {
		return nil
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return &ConditionFailedError{Op: op, Table: table, Existing: ccf.Item}
	}

	ue := &UnavailableError{Op: op, Table: table, Err: err}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		ue.Code = apiErr.ErrorCode()
	}
	return ue
}
