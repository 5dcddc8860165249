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
package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/raywall/kudos-ledger/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestConfigure(t *testing.T) {
	t.Run("Default Level Info", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true})
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})

	t.Run("Custom Level Debug", func(t *testing.T) {
		_ = Configure(config.LoggingConf{Enabled: true, Level: "DEBUG"})
		assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	})

	t.Run("Disabled Logger", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(config.LoggingConf{Enabled: false, Level: "info"}, &buf)
		l.Info().Msg("teste")
		assert.Zero(t, buf.Len())
	})

	t.Run("JSON With Component", func(t *testing.T) {
		var buf bytes.Buffer
		l := Component(New(config.LoggingConf{Enabled: true, Level: "info", Format: "json"}, &buf), "ledger")
		l.Info().Msg("ok")
		assert.Contains(t, buf.String(), `"component":"ledger"`)
	})
}

func TestFromContext(t *testing.T) {
	_ = Configure(config.LoggingConf{Enabled: true, Level: "info"})

	var rootBuf, reqBuf bytes.Buffer
	root := zerolog.New(&rootBuf)
	req := zerolog.New(&reqBuf).With().Str("correlation_id", "abc").Logger()

	FromContext(context.Background(), root).Info().Msg("root")
	FromContext(req.WithContext(context.Background()), root).Info().Msg("req")

	assert.Contains(t, rootBuf.String(), "root")
	assert.Contains(t, reqBuf.String(), `"correlation_id":"abc"`)
}
