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

package command_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgate-lab/flowgate/private/app/command"
	"github.com/netgate-lab/flowgate/private/config"
)

type idSampler struct{}

func (idSampler) Sample(dst io.Writer, _ config.Path, ctx config.CtxMap) {
	config.WriteString(dst, "id = \""+ctx[config.ID]+"\"\n")
}

func TestSampleConfig(t *testing.T) {
	root := &cobra.Command{Use: "flowgate"}
	root.AddCommand(command.NewSample(root, command.NewSampleConfig(idSampler{}, "flowgate")))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"sample", "config"})
	require.NoError(t, root.Execute())
	assert.Equal(t, "id = \"flowgate\"\n", out.String())
}

func TestVersion(t *testing.T) {
	root := &cobra.Command{Use: "flowgate"}
	root.AddCommand(command.NewVersion(root))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "flowgate")
	assert.Contains(t, out.String(), "go:")
}
