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
	"encoding/binary"
	"time"

	"github.com/contiv/libOpenflow/common"
	"github.com/contiv/libOpenflow/openflow13"
	"github.com/contiv/libOpenflow/util"

	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

const (
	ofpHeaderLen = 8
	// packetInFixedLen is the length of the packet-in fields preceding the
	// match.
	packetInFixedLen = ofpHeaderLen + 16
	matchHeaderLen   = 4
	packetInPadLen   = 2
	// ofpffSendFlowRem is the OFPFF_SEND_FLOW_REM flow mod flag.
	ofpffSendFlowRem uint16 = 1 << 0
	// maxTimeout is the largest timeout expressible in a flow mod.
	maxTimeout = 0xffff * time.Second
)

// parser decodes OpenFlow 1.3 messages. Hello messages are decoded for any
// version so that the version negotiation can reject peers explicitly.
type parser struct{}

func (parser) Parse(b []byte) (msg util.Message, err error) {
	// The decoders of the protocol library index into b without bounds
	// checks.
	defer func() {
		if r := recover(); r != nil {
			msg, err = nil, serrors.New("decoding message", "panic", r, "len", len(b))
		}
	}()
	if len(b) < ofpHeaderLen {
		return nil, serrors.New("message too short", "len", len(b))
	}
	if b[1] == openflow13.Type_Hello {
		hello := new(common.Hello)
		if err := hello.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		return hello, nil
	}
	if b[0] != openflow13.VERSION {
		return nil, serrors.New("unsupported version", "version", b[0], "type", b[1])
	}
	if b[1] == openflow13.Type_PacketIn {
		pi := new(packetIn)
		if err := pi.UnmarshalBinary(b); err != nil {
			return nil, err
		}
		return pi, nil
	}
	return openflow13.Parse(b)
}

// packetIn is a packet-in message. The frame is kept as received; it is
// classified by the dispatcher and sent back verbatim in packet-outs.
type packetIn struct {
	Header   common.Header
	BufferID uint32
	Match    openflow13.Match
	Frame    []byte

	raw []byte
}

func (p *packetIn) Len() uint16 {
	return uint16(len(p.raw))
}

func (p *packetIn) MarshalBinary() ([]byte, error) {
	return p.raw, nil
}

// UnmarshalBinary decodes a packet-in. b is copied, the stream reuses its
// read buffers.
func (p *packetIn) UnmarshalBinary(b []byte) error {
	if len(b) < packetInFixedLen+matchHeaderLen {
		return serrors.New("packet in too short", "len", len(b))
	}
	if err := p.Header.UnmarshalBinary(b); err != nil {
		return serrors.Wrap("decoding packet in header", err)
	}
	p.BufferID = binary.BigEndian.Uint32(b[ofpHeaderLen:])
	matchLen := int(binary.BigEndian.Uint16(b[packetInFixedLen+2:]))
	// The match is padded to a multiple of 8 bytes.
	paddedLen := (matchLen + 7) / 8 * 8
	frameStart := packetInFixedLen + paddedLen + packetInPadLen
	if matchLen < matchHeaderLen || frameStart > len(b) {
		return serrors.New("invalid packet in match length", "match_len", matchLen,
			"len", len(b))
	}
	var match openflow13.Match
	if err := match.UnmarshalBinary(b[packetInFixedLen : packetInFixedLen+paddedLen]); err != nil {
		return serrors.Wrap("decoding packet in match", err)
	}
	p.Match = match
	p.raw = append([]byte(nil), b...)
	p.Frame = p.raw[frameStart:]
	return nil
}

// rawFrame carries unbuffered frames in packet-outs.
type rawFrame []byte

func (f rawFrame) Len() uint16 {
	return uint16(len(f))
}

func (f rawFrame) MarshalBinary() ([]byte, error) {
	return []byte(f), nil
}

func (f *rawFrame) UnmarshalBinary(data []byte) error {
	*f = append((*f)[:0], data...)
	return nil
}

func encodeFlowMod(rule datapath.Rule) (*openflow13.FlowMod, error) {
	if rule.HardTimeout < 0 || rule.HardTimeout > maxTimeout {
		return nil, serrors.New("hard timeout out of range", "timeout", rule.HardTimeout)
	}
	fm := openflow13.NewFlowMod()
	fm.Cookie = rule.Cookie
	fm.Priority = rule.Priority
	fm.HardTimeout = uint16(rule.HardTimeout / time.Second)
	if rule.SendFlowRemoved {
		fm.Flags |= ofpffSendFlowRem
	}
	if !rule.Match.Wildcard {
		fm.Match.AddField(*openflow13.NewInPortField(uint32(rule.Match.InPort)))
		fm.Match.AddField(*openflow13.NewEthSrcField(rule.Match.Src.HardwareAddr(), nil))
		fm.Match.AddField(*openflow13.NewEthDstField(rule.Match.Dst.HardwareAddr(), nil))
	}
	output := openflow13.NewActionOutput(uint32(rule.OutPort))
	if rule.OutPort == datapath.PortController {
		output.MaxLen = rule.MaxLen
	}
	instr := openflow13.NewInstrApplyActions()
	instr.AddAction(output, false)
	fm.AddInstruction(instr)
	return fm, nil
}

func encodePacketOut(pkt datapath.PacketOut) *openflow13.PacketOut {
	po := openflow13.NewPacketOut()
	po.BufferId = pkt.BufferID
	po.InPort = uint32(pkt.InPort)
	po.AddAction(openflow13.NewActionOutput(uint32(pkt.OutPort)))
	if !pkt.Buffered() {
		data := rawFrame(pkt.Data)
		po.Data = &data
	}
	return po
}

func decodeMatch(m openflow13.Match) (datapath.Match, error) {
	var match datapath.Match
	for _, f := range m.Fields {
		var err error
		switch v := f.Value.(type) {
		case *openflow13.InPortField:
			match.InPort = datapath.Port(v.InPort)
		case *openflow13.EthSrcField:
			match.Src, err = datapath.MACFromHardwareAddr(v.EthSrc)
		case *openflow13.EthDstField:
			match.Dst, err = datapath.MACFromHardwareAddr(v.EthDst)
		}
		if err != nil {
			return datapath.Match{}, err
		}
	}
	return match, nil
}

func decodePacketIn(pi *packetIn) (*datapath.PacketIn, error) {
	match, err := decodeMatch(pi.Match)
	if err != nil {
		return nil, serrors.Wrap("decoding packet in match", err)
	}
	return &datapath.PacketIn{
		InPort:   match.InPort,
		BufferID: pi.BufferID,
		Data:     pi.Frame,
	}, nil
}

func decodeFlowRemoved(fr *openflow13.FlowRemoved) (*datapath.FlowRemoved, error) {
	match, err := decodeMatch(fr.Match)
	if err != nil {
		return nil, serrors.Wrap("decoding flow removed match", err)
	}
	return &datapath.FlowRemoved{
		Cookie:   fr.Cookie,
		Priority: fr.Priority,
		Reason:   datapath.RemovalReason(fr.Reason),
		Match:    match,
	}, nil
}
