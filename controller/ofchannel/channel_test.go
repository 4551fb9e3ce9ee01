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

package ofchannel

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/pkg/log"
	"github.com/netgate-lab/flowgate/pkg/log/testlog"
)

const (
	typeHello       = 0
	typeEchoRequest = 2
	typeEchoReply   = 3
	typeFeaturesReq = 5
	typeFeaturesRep = 6
	typePacketIn    = 10
	typeFlowMod     = 14
	typePacketOut   = 13
)

func header(version, msgType uint8, length uint16, xid uint32) []byte {
	b := make([]byte, 8, length)
	b[0] = version
	b[1] = msgType
	binary.BigEndian.PutUint16(b[2:], length)
	binary.BigEndian.PutUint32(b[4:], xid)
	return b
}

func featuresReply(xid uint32, dpid uint64) []byte {
	b := header(4, typeFeaturesRep, 32, xid)
	b = binary.BigEndian.AppendUint64(b, dpid)
	b = binary.BigEndian.AppendUint32(b, 256) // buffers
	b = append(b, 254, 0, 0, 0)              // tables, auxiliary id, pad
	b = binary.BigEndian.AppendUint32(b, 0)  // capabilities
	b = binary.BigEndian.AppendUint32(b, 0)  // reserved
	return b
}

// packetInMsg builds a packet-in whose match carries the in_port only.
func packetInMsg(xid, bufferID, inPort uint32, frame []byte) []byte {
	b := header(4, typePacketIn, uint16(8+16+16+2+len(frame)), xid)
	b = binary.BigEndian.AppendUint32(b, bufferID)
	b = binary.BigEndian.AppendUint16(b, uint16(len(frame))) // total length
	b = append(b, 0, 0)                                      // reason, table
	b = binary.BigEndian.AppendUint64(b, 0)                  // cookie
	b = binary.BigEndian.AppendUint16(b, 1)                  // OXM match
	b = binary.BigEndian.AppendUint16(b, 12)                 // match length
	b = binary.BigEndian.AppendUint16(b, 0x8000)             // OpenFlow basic class
	b = append(b, 0, 4)                                      // in_port, 4 bytes
	b = binary.BigEndian.AppendUint32(b, inPort)
	b = append(b, 0, 0, 0, 0) // match padding
	b = append(b, 0, 0)       // pad
	return append(b, frame...)
}

// ipv4Frame returns an Ethernet frame carrying a truncated IPv4 header that
// starts with first.
func ipv4Frame(first byte) []byte {
	b := append(macB.HardwareAddr(), macA.HardwareAddr()...)
	b = append(b, 0x08, 0x00, first)
	return append(b, make([]byte, 25)...)
}

// arpFrame returns a minimum size ARP frame, including the trailing padding.
func arpFrame() []byte {
	b := append(datapath.MustParseMAC("ff:ff:ff:ff:ff:ff").HardwareAddr(),
		macA.HardwareAddr()...)
	b = append(b, 0x08, 0x06, 0, 1, 0x08, 0, 6, 4, 0, 1)
	b = append(b, make([]byte, 60-len(b))...)
	b[59] = 0xaa
	return b
}

func readMsg(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	hdr := make([]byte, 8)
	_, err := io.ReadFull(conn, hdr)
	require.NoError(t, err)
	length := binary.BigEndian.Uint16(hdr[2:])
	require.GreaterOrEqual(t, int(length), 8)
	body := make([]byte, int(length)-8)
	_, err = io.ReadFull(conn, body)
	require.NoError(t, err)
	return append(hdr, body...)
}

func writeMsg(t *testing.T, conn net.Conn, msg []byte) {
	t.Helper()
	_, err := conn.Write(msg)
	require.NoError(t, err)
}

func nextEvent(t *testing.T, events <-chan datapath.Event) datapath.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
		return datapath.Event{}
	}
}

type serving struct {
	events <-chan datapath.Event
	addr   string
	stop   func()
}

func serve(t *testing.T, timeout time.Duration) serving {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	events := make(chan datapath.Event, 8)
	l := &Listener{Events: events, HandshakeTimeout: timeout}
	ctx, cancel := context.WithCancel(log.CtxWith(context.Background(),
		testlog.NewLogger(t)))
	done := make(chan error, 1)
	go func() { done <- l.Serve(ctx, ln) }()
	return serving{
		events: events,
		addr:   ln.Addr().String(),
		stop: func() {
			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(2 * time.Second):
				t.Error("listener did not stop")
			}
		},
	}
}

func TestListenerSession(t *testing.T) {
	s := serve(t, time.Second)
	defer s.stop()

	conn, err := net.Dial("tcp", s.addr)
	require.NoError(t, err)
	defer conn.Close()

	hello := readMsg(t, conn)
	assert.Equal(t, uint8(typeHello), hello[1])
	assert.Equal(t, uint8(4), hello[0])
	writeMsg(t, conn, header(4, typeHello, 8, 1))

	req := readMsg(t, conn)
	require.Equal(t, uint8(typeFeaturesReq), req[1])
	writeMsg(t, conn, featuresReply(binary.BigEndian.Uint32(req[4:]), 0x0102))

	ev := nextEvent(t, s.events)
	require.Equal(t, datapath.EventHandshake, ev.Kind)
	assert.Equal(t, datapath.DPID(0x0102), ev.Switch.ID())
	sw := ev.Switch

	// Keepalive.
	writeMsg(t, conn, header(4, typeEchoRequest, 8, 77))
	reply := readMsg(t, conn)
	assert.Equal(t, uint8(typeEchoReply), reply[1])
	assert.Equal(t, uint32(77), binary.BigEndian.Uint32(reply[4:]))

	// A frame that does not decode is still delivered and the session
	// survives it.
	bad := ipv4Frame(0x4f)
	writeMsg(t, conn, packetInMsg(78, datapath.NoBuffer, 3, bad))
	ev = nextEvent(t, s.events)
	require.Equal(t, datapath.EventPacketIn, ev.Kind)
	assert.Equal(t, &datapath.PacketIn{InPort: 3, BufferID: datapath.NoBuffer, Data: bad},
		ev.PacketIn)
	writeMsg(t, conn, packetInMsg(79, 5, 4, arpFrame()))
	ev = nextEvent(t, s.events)
	require.Equal(t, datapath.EventPacketIn, ev.Kind)
	assert.Equal(t, &datapath.PacketIn{InPort: 4, BufferID: 5, Data: arpFrame()}, ev.PacketIn)

	// Rules and packet-outs reach the wire.
	require.NoError(t, sw.InstallRule(datapath.Rule{
		Match:   datapath.MatchAll(),
		OutPort: datapath.PortController,
		MaxLen:  0xffff,
	}))
	assert.Equal(t, uint8(typeFlowMod), readMsg(t, conn)[1])
	require.NoError(t, sw.SendPacketOut(datapath.PacketOut{
		BufferID: datapath.NoBuffer,
		InPort:   1,
		OutPort:  datapath.PortFlood,
		Data:     make([]byte, 60),
	}))
	assert.Equal(t, uint8(typePacketOut), readMsg(t, conn)[1])

	// The switch goes away.
	require.NoError(t, conn.Close())
	ev = nextEvent(t, s.events)
	assert.Equal(t, datapath.EventDisconnect, ev.Kind)
	assert.Same(t, sw, ev.Switch)
	assert.ErrorIs(t, sw.InstallRule(datapath.Rule{}), datapath.ErrClosed)
}

func TestListenerHandshakeFailures(t *testing.T) {
	testCases := map[string]struct {
		Send []byte
	}{
		"timeout": {},
		"unsupported version": {
			Send: header(1, typeHello, 8, 1),
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			s := serve(t, 100*time.Millisecond)
			defer s.stop()

			conn, err := net.Dial("tcp", s.addr)
			require.NoError(t, err)
			defer conn.Close()
			readMsg(t, conn)
			if tc.Send != nil {
				writeMsg(t, conn, tc.Send)
			}
			require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
			_, err = conn.Read(make([]byte, 8))
			assert.Error(t, err, "controller closes the connection")
			if netErr, ok := err.(net.Error); ok {
				assert.False(t, netErr.Timeout(), "connection must be closed, not idle")
			}
			select {
			case ev := <-s.events:
				t.Errorf("unexpected event %v", ev.Kind)
			default:
			}
		})
	}
}
