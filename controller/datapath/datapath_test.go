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

package datapath_test

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgate-lab/flowgate/controller/datapath"
)

func TestDPID(t *testing.T) {
	d, err := datapath.DPIDFromBytes([]byte{0x00, 0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, datapath.DPID(0x0102), d)
	assert.Equal(t, "00:00:00:00:00:00:01:02", d.String())

	_, err = datapath.DPIDFromBytes(make([]byte, 9))
	assert.Error(t, err)
}

func TestMAC(t *testing.T) {
	testCases := map[string]struct {
		Input     net.HardwareAddr
		Expected  string
		ShouldErr bool
	}{
		"48 bit": {
			Input:    net.HardwareAddr{0xaa, 0, 0, 0, 0, 0x01},
			Expected: "aa:00:00:00:00:01",
		},
		"64 bit": {
			Input:     net.HardwareAddr{1, 2, 3, 4, 5, 6, 7, 8},
			ShouldErr: true,
		},
		"empty": {
			ShouldErr: true,
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			m, err := datapath.MACFromHardwareAddr(tc.Input)
			if tc.ShouldErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.Expected, m.String())
			assert.Equal(t, m, datapath.MustParseMAC(tc.Expected))
		})
	}
}

func TestPortString(t *testing.T) {
	assert.Equal(t, "flood", datapath.PortFlood.String())
	assert.Equal(t, "controller", datapath.PortController.String())
	assert.Equal(t, "7", datapath.Port(7).String())
}

func TestPacketOutBuffered(t *testing.T) {
	assert.True(t, datapath.PacketOut{BufferID: 12}.Buffered())
	assert.False(t, datapath.PacketOut{BufferID: datapath.NoBuffer}.Buffered())
}
