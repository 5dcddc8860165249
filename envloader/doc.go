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
//
// Package envloader carrega valores de variáveis de ambiente (ou de qualquer
// outra fonte chave/valor) diretamente para campos de uma struct Go, usando
// as tags `env` e `envDefault`.
//
// Tipos suportados: string, inteiros, uint, bool, float, time.Duration
// (formato de time.ParseDuration) e []string (lista separada por vírgulas).
// Structs aninhadas e ponteiros para struct são processados recursivamente.
//
// Precedência: um valor presente na fonte sempre vence. O `envDefault` só
// preenche campos ainda zerados, para que valores já carregados de um
// arquivo de configuração sejam preservados.
//
//	type Config struct {
//		Port    int           `env:"PORT" envDefault:"8080"`
//		Timeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
//		Origins []string      `env:"ALLOWED_ORIGINS"`
//	}
//
//	var cfg Config
//	if err := envloader.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
//
// `LoadWith` aceita uma LookupFunc; `MapLookup` adapta um mapa, como os
// parâmetros lidos do SSM Parameter Store.
package envloader
