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
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/raywall/kudos-ledger/envloader"
)

// Regex para capturar padrões ${tipo.chave}
// Ex: ${env.REDIS_PASSWORD}, ${ssm./kudos/prod/redis-password}, ${secret.kudos/redis#password}
var pattern = regexp.MustCompile(`\$\{(env|ssm|secret)\.([^}]+)\}`)

var (
	// ErrNoSSMClient indica uma referência ${ssm.*} sem cliente SSM configurado.
	ErrNoSSMClient = errors.New("config: ssm reference without ssm client")
	// ErrNoSecretsClient indica uma referência ${secret.*} sem cliente do Secrets Manager.
	ErrNoSecretsClient = errors.New("config: secret reference without secrets manager client")
)

// Interpolator resolve referências ${env.*}, ${ssm.*} e ${secret.*} nos
// campos string da configuração (inclusive em slices e structs aninhadas).
type Interpolator struct {
	lookup  envloader.LookupFunc
	ssm     SSMClient
	secrets SecretsClient
}

// NewInterpolator cria o resolvedor. lookup nil usa o ambiente do processo;
// ssm e secrets podem ser nil quando nenhuma referência do tipo é esperada.
func NewInterpolator(lookup envloader.LookupFunc, ssm SSMClient, secrets SecretsClient) *Interpolator {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Interpolator{lookup: lookup, ssm: ssm, secrets: secrets}
}

func (i *Interpolator) Interpolate(ctx context.Context, target any) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("target deve ser um ponteiro para struct não nulo")
	}
	return i.walk(ctx, v.Elem())
}

func (i *Interpolator) walk(ctx context.Context, v reflect.Value) error {
	switch v.Kind() {
	case reflect.Struct:
		for k := 0; k < v.NumField(); k++ {
			if !v.Field(k).CanSet() {
				continue
			}
			if err := i.walk(ctx, v.Field(k)); err != nil {
				return err
			}
		}

	case reflect.Ptr:
		if !v.IsNil() {
			return i.walk(ctx, v.Elem())
		}

	case reflect.Slice:
		for j := 0; j < v.Len(); j++ {
			if err := i.walk(ctx, v.Index(j)); err != nil {
				return err
			}
		}

	case reflect.String:
		if !v.CanSet() {
			return nil
		}
		out, err := i.interpolateString(ctx, v.String())
		if err != nil {
			return err
		}
		v.SetString(out)
	}
	return nil
}

// interpolateString realiza a substituição baseada em Regex
func (i *Interpolator) interpolateString(ctx context.Context, input string) (string, error) {
	if !strings.Contains(input, "${") {
		return input, nil
	}

	var err error
	result := pattern.ReplaceAllStringFunc(input, func(match string) string {
		if err != nil {
			return match
		}
		parts := pattern.FindStringSubmatch(match)

		val, resolveErr := i.fetchValue(ctx, parts[1], parts[2])
		if resolveErr != nil {
			err = resolveErr
			return match
		}
		return val
	})

	return result, err
}

// fetchValue centraliza a busca de dados
func (i *Interpolator) fetchValue(ctx context.Context, sourceType, key string) (string, error) {
	switch sourceType {
	case "env":
		// variável não encontrada resolve para vazio
		v, _ := i.lookup(key)
		return v, nil
	case "ssm":
		if i.ssm == nil {
			return "", fmt.Errorf("%w: %s", ErrNoSSMClient, key)
		}
		return getParameter(ctx, i.ssm, key)
	case "secret":
		if i.secrets == nil {
			return "", fmt.Errorf("%w: %s", ErrNoSecretsClient, key)
		}
		return getSecret(ctx, i.secrets, key)
	}
	return "", nil
}
