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
	"context"
	"errors"
	"fmt"
	"iter"
)

// ErrTooManyPages é devolvido por AllWith quando o limite de páginas é atingido.
var ErrTooManyPages = errors.New("dyndb: too many pages")

// PageFunc é uma leitura limitada (Query ou Scan) que começa no cursor dado.
type PageFunc[T any] func(ctx context.Context, cursor Cursor) (Page[T], error)

// AllOptions controla a leitura exaustiva.
type AllOptions struct {
	// MaxPages limita o número de chamadas; 0 significa sem limite.
	MaxPages int
}

// All lê todas as páginas, repassando o cursor da chamada anterior até que
// nenhum cursor seja devolvido. Os itens são concatenados na ordem das
// páginas. Apenas a ausência de cursor encerra a leitura: uma página vazia
// com cursor continua.
func All[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	return AllWith(ctx, fetch, AllOptions{})
}

// AllWith é All com limite de páginas.
func AllWith[T any](ctx context.Context, fetch PageFunc[T], opts AllOptions) ([]T, error) {
	items := make([]T, 0)
	pages := 0

	for page, err := range Pages(ctx, fetch) {
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		pages++
		if opts.MaxPages > 0 && pages >= opts.MaxPages && page.HasNext() {
			return nil, fmt.Errorf("%w: stopped after %d pages", ErrTooManyPages, pages)
		}
	}
	return items, nil
}

// One faz exatamente uma chamada e devolve os itens e o próximo cursor
// (possivelmente nil), para que o chamador retome depois.
func One[T any](ctx context.Context, fetch PageFunc[T], cursor Cursor) (Page[T], error) {
	page, err := fetch(ctx, cursor)
	if err != nil {
		return Page[T]{}, err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

// First devolve apenas os itens da primeira página, descartando o cursor.
// Útil quando basta "algum registro que combine" (ex: busca por índice único).
func First[T any](ctx context.Context, fetch PageFunc[T]) ([]T, error) {
	page, err := One(ctx, fetch, nil)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Pages devolve uma sequência preguiçosa de páginas. A sequência termina
// após a página sem cursor, no primeiro erro (entregue como último
// elemento) ou quando o consumidor interrompe o range.
func Pages[T any](ctx context.Context, fetch PageFunc[T]) iter.Seq2[Page[T], error] {
	return func(yield func(Page[T], error) bool) {
		var cursor Cursor
		for {
			if err := ctx.Err(); err != nil {
				yield(Page[T]{}, &UnavailableError{Op: "paginate", Err: err})
				return
			}

			page, err := fetch(ctx, cursor)
			if err != nil {
				yield(Page[T]{}, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if !page.HasNext() {
				return
			}
			cursor = page.Next
		}
	}
}
