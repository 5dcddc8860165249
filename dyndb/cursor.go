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
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrInvalidCursor indica um token de paginação que não pôde ser decodificado.
var ErrInvalidCursor = errors.New("dyndb: invalid cursor")

// cursorAttr é a forma serializada de um atributo de chave (S, N ou B).
type cursorAttr struct {
	S *string `json:"S,omitempty"`
	N *string `json:"N,omitempty"`
	B []byte  `json:"B,omitempty"`
}

// EncodeCursor converte a LastEvaluatedKey em um token opaco (Base64 URL-safe)
// para ser devolvido ao cliente. Um cursor vazio gera token vazio.
func EncodeCursor(c Cursor) (string, error) {
	if len(c) == 0 {
		return "", nil
	}

	raw := make(map[string]cursorAttr, len(c))
	for name, av := range c {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			s := v.Value
			raw[name] = cursorAttr{S: &s}
		case *types.AttributeValueMemberN:
			n := v.Value
			raw[name] = cursorAttr{N: &n}
		case *types.AttributeValueMemberB:
			raw[name] = cursorAttr{B: v.Value}
		default:
			return "", fmt.Errorf("%w: unsupported key attribute %q (%T)", ErrInvalidCursor, name, av)
		}
	}

	b, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DecodeCursor reverte EncodeCursor. Token vazio devolve cursor nil (primeira página).
func DecodeCursor(token string) (Cursor, error) {
	if token == "" {
		return nil, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	var raw map[string]cursorAttr
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	c := make(Cursor, len(raw))
	for name, a := range raw {
		switch {
		case a.S != nil:
			c[name] = &types.AttributeValueMemberS{Value: *a.S}
		case a.N != nil:
			c[name] = &types.AttributeValueMemberN{Value: *a.N}
		case a.B != nil:
			c[name] = &types.AttributeValueMemberB{Value: a.B}
		default:
			return nil, fmt.Errorf("%w: empty attribute %q", ErrInvalidCursor, name)
		}
	}
	return c, nil
}
