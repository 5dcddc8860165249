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
/*
Package ledger move saldo entre carteiras sem transações multi-registro.

Cada transferência é uma saga com escrita antecipada: a Transaction é gravada
como "pending" antes de qualquer alteração de saldo, e o seu status final
("approved" ou "failed") é o registro durável do resultado.

Passos de Engine.Transfer:

 1. grava a Transaction "pending";
 2. consome o token de pagamento, se houver (WithPaymentToken); token
    inexistente ou já usado encerra como "failed";
 3. lê a carteira de origem; inexistente ou com saldo insuficiente encerra
    como "failed" sem alterar nada;
 4. grava a origem com balance - amount;
 5. lê e grava o destino com balance + amount; se a leitura falhar ou a
    gravação for recusada, a origem é recreditada e a transação encerra
    como "failed";
 6. grava o status final.

Saldo insuficiente não é erro: o chamador recebe a Transaction "failed".

Uma escrita que falha com dyndb.ErrUnavailable pode ter sido aplicada. Nesse
caso não há estorno: a Transaction permanece "pending" e ErrOutcomeUnknown é
devolvido. A Transaction também permanece "pending" quando a compensação
falha (ErrCompensationFailed) ou quando o passo 6 falha (ErrFinalizeFailed).
"pending" é o registro durável da inconsistência; a reconciliação é externa
(ver o comando ledgerctl pending).

Depois do passo 1 o contexto do chamador é desligado com
context.WithoutCancel, para que um cancelamento não interrompa a saga no
meio.

# Corrida de saldo

As carteiras são lidas e regravadas sem compare-and-swap. Duas
transferências concorrentes sobre a mesma carteira podem perder uma
atualização (a última escrita vence). O comportamento é conhecido e mantido;
uma versão com condição sobre o saldo lido exigiria tratar
ErrConditionFailed como nova tentativa no passo 4.
*/
package ledger
