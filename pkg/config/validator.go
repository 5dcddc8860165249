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
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ConfigValidator struct {
	validate *validator.Validate
}

// NewValidator cria uma nova instância do validador
func NewValidator() *ConfigValidator {
	return &ConfigValidator{
		validate: validator.New(),
	}
}

// Validate realiza validações estruturais (tags) e semânticas (lógica)
func (cv *ConfigValidator) Validate(cfg *Config) error {
	if err := cv.validate.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			var errMsgs []string
			for _, e := range validationErrors {
				errMsgs = append(errMsgs, fmt.Sprintf("Campo '%s' falhou na regra '%s'", e.Namespace(), e.Tag()))
			}
			return fmt.Errorf("erros de validação estrutural:\n- %s", strings.Join(errMsgs, "\n- "))
		}
		return fmt.Errorf("erro de validação estrutural: %w", err)
	}

	if err := cv.validateSemantics(cfg); err != nil {
		return fmt.Errorf("erro de validação semântica: %w", err)
	}

	return nil
}

func (cv *ConfigValidator) validateSemantics(cfg *Config) error {
	// Os dois índices de carteira precisam ser distintos, senão ListForWallet
	// devolveria cada transação em dobro.
	if cfg.Indexes.TransactionsFrom == cfg.Indexes.TransactionsTo {
		return fmt.Errorf("índices de origem e destino iguais: '%s'", cfg.Indexes.TransactionsFrom)
	}

	seen := make(map[string]string)
	tables := map[string]string{
		"users":        cfg.Tables.Users,
		"wallets":      cfg.Tables.Wallets,
		"transactions": cfg.Tables.Transactions,
		"rewards":      cfg.Tables.Rewards,
		"recognitions": cfg.Tables.Recognitions,
		"tokens":       cfg.Tables.Tokens,
		"counter":      cfg.Tables.Counter,
	}
	for _, key := range []string{"users", "wallets", "transactions", "rewards", "recognitions", "tokens", "counter"} {
		name := tables[key]
		if other, dup := seen[name]; dup {
			return fmt.Errorf("tabela '%s' usada por '%s' e '%s'", name, other, key)
		}
		seen[name] = key
	}

	return nil
}
