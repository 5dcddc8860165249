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

// Package dyndb fornece uma abstração genérica e fortemente tipada sobre o
// AWS DynamoDB Go SDK (v2).
//
// Visão Geral:
// A interface `Store[T]` cobre leitura consistente por chave, escrita
// (opcionalmente condicional), atualização de campos e leituras limitadas
// (`QueryPage`, `ScanPage`). Toda falha é devolvida como um erro tipado que
// `Classify` converte em um `Outcome`:
//
//   - ErrNotFound: o item não existe.
//   - ErrConditionFailed (*ConditionFailedError): a escrita condicional
//     perdeu a corrida. Não deve ser retentada.
//   - ErrUnavailable (*UnavailableError): falha de transporte ou do backend.
//   - ErrInvalidItem: falha de (un)marshal.
//
// Paginação:
// Uma leitura limitada é uma `PageFunc[T]`. `All` segue o cursor até o fim,
// `One` faz exatamente uma chamada e devolve o cursor, `First` devolve só a
// primeira página e `Pages` expõe as páginas como `iter.Seq2`. O cursor pode
// ser serializado para o cliente com `EncodeCursor`/`DecodeCursor`.
//
//	users := dyndb.New(client, dyndb.TableConfig[User]{TableName: "users", HashKey: "email"})
//
//	all, err := dyndb.All(ctx, users.Query().
//		Index("getUserByTokenIndex").
//		KeyEqual("token", token).
//		Fetch())
//
// Sequências:
// `Sequence.Next` incrementa atomicamente um contador nomeado na tabela
// `atomic_counter` e devolve o valor pós-incremento.
//
// Configuração:
// Sem `TableName`, `New` lê a configuração da tabela das variáveis de
// ambiente DYNAMODB_TABLE_NAME, DYNAMODB_HASH_KEY e DYNAMODB_SORT_KEY.
package dyndb
