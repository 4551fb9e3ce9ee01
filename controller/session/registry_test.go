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

package session_test

import (
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/controller/datapath/mock_datapath"
	"github.com/netgate-lab/flowgate/controller/session"
)

var (
	macA = datapath.MustParseMAC("aa:00:00:00:00:01")
	macB = datapath.MustParseMAC("bb:00:00:00:00:02")
	macC = datapath.MustParseMAC("cc:00:00:00:00:03")
)

func newRegistry(t *testing.T, size int) *session.Registry {
	t.Helper()
	r, err := session.NewRegistry(size)
	require.NoError(t, err)
	return r
}

func TestNewRegistryInvalidSize(t *testing.T) {
	_, err := session.NewRegistry(0)
	assert.Error(t, err)
}

func TestEnsureSession(t *testing.T) {
	r := newRegistry(t, 16)
	s1 := r.EnsureSession(1)
	s2 := r.EnsureSession(1)
	assert.Same(t, s1, s2)
	assert.Equal(t, session.Connecting, s1.State())
	assert.True(t, s1.Connected())
	assert.Equal(t, datapath.DPID(1), s1.DPID())
}

func TestLearnLookup(t *testing.T) {
	r := newRegistry(t, 16)

	_, ok := r.LookupPort(1, macA)
	assert.False(t, ok, "unknown switch")

	r.Learn(1, macA, 1)
	port, ok := r.LookupPort(1, macA)
	require.True(t, ok)
	assert.Equal(t, datapath.Port(1), port)

	_, ok = r.LookupPort(1, macB)
	assert.False(t, ok, "unknown address")

	r.Learn(1, macA, 3)
	port, ok = r.LookupPort(1, macA)
	require.True(t, ok)
	assert.Equal(t, datapath.Port(3), port, "last writer wins")

	_, ok = r.LookupPort(2, macA)
	assert.False(t, ok, "tables are per switch")
}

func TestLearnBounded(t *testing.T) {
	r := newRegistry(t, 2)
	r.Learn(1, macA, 1)
	r.Learn(1, macB, 2)
	r.Learn(1, macC, 3)
	infos := r.Sessions()
	require.Len(t, infos, 1)
	assert.Equal(t, 2, infos[0].LearnedMACs)
	port, ok := r.LookupPort(1, macC)
	require.True(t, ok)
	assert.Equal(t, datapath.Port(3), port)
}

func TestResetAndDisconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mock_datapath.NewMockSwitch(ctrl)
	second := mock_datapath.NewMockSwitch(ctrl)

	r := newRegistry(t, 16)
	s := r.Reset(1, first)
	s.SetState(session.Active)
	assert.Equal(t, 1, r.ActiveCount())
	r.Learn(1, macA, 1)
	key := session.FlowKey{DPID: 1, InPort: 1, Src: macA, Dst: macB}
	r.StoreFlow(session.FlowRecord{Key: key, Cookie: 1, OutPort: 2})

	assert.True(t, r.Disconnect(1, first))
	assert.False(t, s.Connected())
	assert.Equal(t, 0, r.ActiveCount())
	_, ok := r.Flow(key)
	assert.True(t, ok, "disconnect does not purge flows")

	s2 := r.Reset(1, second)
	assert.Same(t, s, s2)
	assert.True(t, s.Connected())
	assert.Equal(t, session.Connecting, s.State())
	assert.Equal(t, 0, r.ActiveCount(), "connecting sessions are not active")
	_, ok = r.LookupPort(1, macA)
	assert.False(t, ok, "reset starts with an empty table")
	_, ok = r.Flow(key)
	assert.True(t, ok, "reset retains flows")

	// Disconnecting an unknown switch is a no-op.
	assert.False(t, r.Disconnect(42, first))
	_, ok = r.Session(42)
	assert.False(t, ok)
}

func TestLateDisconnectAfterReconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	old := mock_datapath.NewMockSwitch(ctrl)
	current := mock_datapath.NewMockSwitch(ctrl)

	r := newRegistry(t, 16)
	r.Reset(1, old).SetState(session.Active)
	s := r.Reset(1, current)
	s.SetState(session.Active)

	assert.False(t, r.Disconnect(1, old))
	assert.True(t, s.Connected())
	assert.Equal(t, 1, r.ActiveCount())

	assert.True(t, r.Disconnect(1, current))
	assert.False(t, s.Connected())
	assert.Equal(t, 0, r.ActiveCount())
}

func TestFlowCache(t *testing.T) {
	r := newRegistry(t, 16)
	k1 := session.FlowKey{DPID: 1, InPort: 1, Src: macA, Dst: macB}
	k2 := session.FlowKey{DPID: 1, InPort: 2, Src: macB, Dst: macA}
	now := time.Now()

	_, ok := r.Flow(k1)
	assert.False(t, ok)

	r.StoreFlow(session.FlowRecord{Key: k2, Cookie: 2, OutPort: 1, InstalledAt: now})
	r.StoreFlow(session.FlowRecord{Key: k1, Cookie: 1, OutPort: 2, InstalledAt: now})
	flows := r.Flows(1)
	require.Len(t, flows, 2)
	assert.Equal(t, uint64(1), flows[0].Cookie)
	assert.Equal(t, uint64(2), flows[1].Cookie)

	r.StoreFlow(session.FlowRecord{Key: k1, Cookie: 3, OutPort: 2, InstalledAt: now})
	rec, ok := r.Flow(k1)
	require.True(t, ok)
	assert.Equal(t, uint64(3), rec.Cookie)

	r.DeleteFlow(k1)
	_, ok = r.Flow(k1)
	assert.False(t, ok)
	r.DeleteFlow(k1)
	r.DeleteFlow(session.FlowKey{DPID: 9})
	assert.Len(t, r.Flows(1), 1)
	assert.Nil(t, r.Flows(9))
}

func TestSessionsSnapshot(t *testing.T) {
	r := newRegistry(t, 16)
	r.EnsureSession(2)
	r.EnsureSession(1).SetState(session.Active)
	infos := r.Sessions()
	require.Len(t, infos, 2)
	assert.Equal(t, datapath.DPID(1), infos[0].DPID)
	assert.Equal(t, session.Active, infos[0].State)
	assert.Equal(t, datapath.DPID(2), infos[1].DPID)
}

func TestFlowKeyString(t *testing.T) {
	k := session.FlowKey{DPID: 1, InPort: 1, Src: macA, Dst: macB}
	assert.Equal(t,
		"00:00:00:00:00:00:00:01-1-aa:00:00:00:00:01-bb:00:00:00:00:02", k.String())
}
