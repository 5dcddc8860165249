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
package metrics

// Provider define o contrato para envio de métricas.
type Provider interface {
	Count(name string, value float64, tags []string) error
	Gauge(name string, value float64, tags []string) error
	Histogram(name string, value float64, tags []string) error
}

// MetricType define os tipos suportados.
type MetricType string

const (
	TypeCount     MetricType = "count"
	TypeGauge     MetricType = "gauge"
	TypeHistogram MetricType = "histogram"
)

// MetricDefinition associa um ID estável ao nome real e ao tipo da métrica.
type MetricDefinition struct {
	ID   string
	Name string
	Type MetricType
}

// IDs das métricas emitidas pelo ledger.
const (
	TransferCompleted = "transfer_completed"
	TransferAmount    = "transfer_amount"
	PendingTransfers  = "pending_transfers"
)

// LedgerDefinitions são as métricas registradas pelo serviço.
var LedgerDefinitions = []MetricDefinition{
	{ID: TransferCompleted, Name: "ledger.transfer", Type: TypeCount},
	{ID: TransferAmount, Name: "ledger.transfer.amount", Type: TypeHistogram},
	{ID: PendingTransfers, Name: "ledger.transfer.pending", Type: TypeGauge},
}
