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

package gate_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netgate-lab/flowgate/controller/gate"
)

func TestPermits(t *testing.T) {
	testCases := map[string]struct {
		Principal string
		Gateway   string
		Src       string
		Dst       string
		Expected  bool
	}{
		"unset gate": {
			Src: "10.0.0.9", Dst: "10.0.0.5",
		},
		"only principal set": {
			Principal: "10.0.0.1",
			Src:       "10.0.0.1", Dst: "10.0.0.5",
		},
		"only gateway set": {
			Gateway: "10.0.0.2",
			Src:     "10.0.0.2", Dst: "10.0.0.5",
		},
		"src is principal": {
			Principal: "10.0.0.1", Gateway: "10.0.0.2",
			Src: "10.0.0.1", Dst: "10.0.0.5",
			Expected: true,
		},
		"dst is principal": {
			Principal: "10.0.0.1", Gateway: "10.0.0.2",
			Src: "10.0.0.5", Dst: "10.0.0.1",
			Expected: true,
		},
		"src is gateway": {
			Principal: "10.0.0.1", Gateway: "10.0.0.2",
			Src: "10.0.0.2", Dst: "10.0.0.5",
			Expected: true,
		},
		"dst is gateway": {
			Principal: "10.0.0.1", Gateway: "10.0.0.2",
			Src: "10.0.0.7", Dst: "10.0.0.2",
			Expected: true,
		},
		"neither endpoint": {
			Principal: "10.0.0.1", Gateway: "10.0.0.2",
			Src: "10.0.0.7", Dst: "10.0.0.8",
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			g := gate.New(tc.Principal, tc.Gateway)
			assert.Equal(t, tc.Expected, g.Permits(tc.Src, tc.Dst))
		})
	}
}

func TestReady(t *testing.T) {
	var g gate.Gate
	assert.False(t, g.Ready())
	g.SetPrincipal("10.0.0.1")
	assert.False(t, g.Ready())
	g.SetGateway("10.0.0.2")
	assert.True(t, g.Ready())

	p, gw := g.Snapshot()
	assert.Equal(t, "10.0.0.1", p)
	assert.Equal(t, "10.0.0.2", gw)

	// Overwrite is last writer wins.
	g.SetPrincipal("10.0.0.3")
	p, _ = g.Snapshot()
	assert.Equal(t, "10.0.0.3", p)
	assert.False(t, g.Permits("10.0.0.1", "10.0.0.9"))
}

func TestConcurrentAccess(t *testing.T) {
	g := gate.New("10.0.0.1", "10.0.0.2")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				g.SetPrincipal("10.0.0.1")
				g.SetGateway("10.0.0.2")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.True(t, g.Permits("10.0.0.1", "10.0.0.5"))
			}
		}()
	}
	wg.Wait()
}
