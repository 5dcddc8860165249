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

import (
	"fmt"
	"sort"
)

// Processor resolve IDs de métrica para o nome e o tipo reais e envia ao Provider.
type Processor struct {
	definitions map[string]MetricDefinition
	provider    Provider
	baseTags    []string
}

// NewProcessor cria um processador linkando IDs aos seus tipos reais.
// baseTags são anexadas a todas as métricas (ex: "stage:prod").
func NewProcessor(defs []MetricDefinition, provider Provider, baseTags ...string) *Processor {
	m := make(map[string]MetricDefinition, len(defs))
	for _, d := range defs {
		m[d.ID] = d
	}
	return &Processor{
		definitions: m,
		provider:    provider,
		baseTags:    baseTags,
	}
}

// Record envia a métrica id com o valor e as tags informadas.
func (p *Processor) Record(id string, value float64, tags map[string]string) error {
	def, exists := p.definitions[id]
	if !exists {
		return fmt.Errorf("métrica não definida: %s", id)
	}

	finalTags := append([]string{}, p.baseTags...)
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		finalTags = append(finalTags, fmt.Sprintf("%s:%s", k, tags[k]))
	}

	switch def.Type {
	case TypeCount:
		return p.provider.Count(def.Name, value, finalTags)
	case TypeGauge:
		return p.provider.Gauge(def.Name, value, finalTags)
	case TypeHistogram:
		return p.provider.Histogram(def.Name, value, finalTags)
	default:
		return fmt.Errorf("tipo de métrica desconhecido: %s", def.Type)
	}
}
