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
	"io"
	"os"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/raywall/kudos-ledger/envloader"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile aponta para o arquivo YAML opcional.
const EnvConfigFile = "CONFIG_FILE_PATH"

// Sources descreve de onde a configuração é lida. Campos vazios usam o
// ambiente do processo.
type Sources struct {
	FilePath string
	Lookup   envloader.LookupFunc
	// SSM e Secrets são criados a partir de LoadAWS na primeira chamada quando nil.
	SSM     SSMClient
	Secrets SecretsClient
}

// Load lê a configuração na ordem: defaults (envDefault), arquivo YAML
// (CONFIG_FILE_PATH), variáveis de ambiente, parâmetros sob CONFIG_SSM_PREFIX,
// referências ${env.*}/${ssm.*}/${secret.*} e, por fim, validação.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, Sources{FilePath: os.Getenv(EnvConfigFile)})
}

// LoadFrom é Load com fontes explícitas.
func LoadFrom(ctx context.Context, src Sources) (*Config, error) {
	cfg := &Config{}
	if err := envloader.Defaults(cfg); err != nil {
		return nil, fmt.Errorf("erro ao aplicar defaults: %w", err)
	}

	if src.FilePath != "" {
		if err := FromFile(src.FilePath, cfg); err != nil {
			return nil, err
		}
	}

	lookup := src.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := envloader.Overlay(cfg, lookup); err != nil {
		return nil, fmt.Errorf("erro ao ler variáveis de ambiente: %w", err)
	}

	client := src.SSM
	if client == nil {
		client = &lazySSM{region: cfg.AWS.Region}
	}
	secrets := src.Secrets
	if secrets == nil {
		secrets = &lazySecrets{region: cfg.AWS.Region}
	}

	if cfg.AWS.SSMPrefix != "" {
		values, err := ReadSSMPrefix(ctx, client, cfg.AWS.SSMPrefix)
		if err != nil {
			return nil, err
		}
		if err := envloader.Overlay(cfg, envloader.MapLookup(values)); err != nil {
			return nil, fmt.Errorf("erro ao aplicar parâmetros do SSM: %w", err)
		}
	}

	if err := NewInterpolator(lookup, client, secrets).Interpolate(ctx, cfg); err != nil {
		return nil, fmt.Errorf("erro ao resolver referências: %w", err)
	}

	if err := NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile decodifica o YAML em cfg. Campos desconhecidos são erro.
func FromFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("erro ao abrir arquivo de configuração: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("erro ao decodificar %s: %w", path, err)
	}
	return nil
}

// lazySSM só cria o cliente real quando um parâmetro é de fato lido.
type lazySSM struct {
	region string
	once   sync.Once
	client SSMClient
	err    error
}

func (l *lazySSM) get(ctx context.Context) (SSMClient, error) {
	l.once.Do(func() {
		awsCfg, err := LoadAWS(ctx, l.region)
		if err != nil {
			l.err = err
			return
		}
		l.client = ssm.NewFromConfig(awsCfg)
	})
	return l.client, l.err
}

func (l *lazySSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	c, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetParameter(ctx, params, optFns...)
}

func (l *lazySSM) GetParametersByPath(ctx context.Context, params *ssm.GetParametersByPathInput, optFns ...func(*ssm.Options)) (*ssm.GetParametersByPathOutput, error) {
	c, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return c.GetParametersByPath(ctx, params, optFns...)
}

// lazySecrets é o equivalente de lazySSM para o Secrets Manager.
type lazySecrets struct {
	region string
	once   sync.Once
	client SecretsClient
	err    error
}

func (l *lazySecrets) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	l.once.Do(func() {
		awsCfg, err := LoadAWS(ctx, l.region)
		if err != nil {
			l.err = err
			return
		}
		l.client = secretsmanager.NewFromConfig(awsCfg)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.client.GetSecretValue(ctx, params, optFns...)
}
