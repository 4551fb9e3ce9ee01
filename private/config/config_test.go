// Copyright 2026 The flowgate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgate-lab/flowgate/private/config"
)

type inner struct {
	config.NoDefaulter
	config.NoValidator
	Value string `toml:"value,omitempty"`
}

func (i *inner) Sample(dst io.Writer, _ config.Path, _ config.CtxMap) {
	config.WriteString(dst, "\nvalue = \"x\"\n")
}

func (i *inner) ConfigName() string { return "inner" }

func TestWriteSampleNested(t *testing.T) {
	var buf bytes.Buffer
	var in inner
	config.WriteSample(&buf, config.Path{"outer"}, nil, &in)
	assert.Equal(t, "\n[outer.inner]\n    value = \"x\"\n", buf.String())
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	var cfg struct {
		Known string `toml:"known"`
	}
	require.NoError(t, config.Decode([]byte(`known = "a"`), &cfg))
	assert.Equal(t, "a", cfg.Known)
	assert.Error(t, config.Decode([]byte(`unknown = "a"`), &cfg))
}

func TestPathExtendCopies(t *testing.T) {
	base := make(config.Path, 1, 4)
	base[0] = "a"
	b := base.Extend("b")
	c := base.Extend("c")
	assert.Equal(t, config.Path{"a", "b"}, b)
	assert.Equal(t, config.Path{"a", "c"}, c)
}
