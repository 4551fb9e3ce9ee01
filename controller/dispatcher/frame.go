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

package dispatcher

import (
	"net"

	"github.com/gopacket/gopacket"
	"github.com/gopacket/gopacket/layers"

	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

type frameClass uint8

const (
	classOther frameClass = iota
	classLLDP
	classARP
	classIPv4
	classIPv6
)

func (c frameClass) String() string {
	switch c {
	case classLLDP:
		return "lldp"
	case classARP:
		return "arp"
	case classIPv4:
		return "ipv4"
	case classIPv6:
		return "ipv6"
	default:
		return "other"
	}
}

// frame is the part of a frame the forwarding decision is based on. The
// network addresses are only set for address resolution and IP frames.
type frame struct {
	class frameClass
	src   datapath.MAC
	dst   datapath.MAC
	srcIP string
	dstIP string
}

// frameParser classifies frames. It is not safe for concurrent use.
type frameParser struct {
	eth  layers.Ethernet
	arp  layers.ARP
	ipv4 layers.IPv4
	ipv6 layers.IPv6

	decoded []gopacket.LayerType
	parser  *gopacket.DecodingLayerParser
}

func newFrameParser() *frameParser {
	p := &frameParser{
		decoded: make([]gopacket.LayerType, 0, 4),
	}
	p.parser = gopacket.NewDecodingLayerParser(
		layers.LayerTypeEthernet,
		&p.eth,
		&p.arp,
		&p.ipv4,
		&p.ipv6,
	)
	p.parser.IgnoreUnsupported = true
	return p
}

func (p *frameParser) parse(data []byte) (frame, error) {
	if err := p.parser.DecodeLayers(data, &p.decoded); err != nil {
		return frame{}, serrors.Wrap("decoding frame", err, "len", len(data))
	}
	if len(p.decoded) == 0 || p.decoded[0] != layers.LayerTypeEthernet {
		return frame{}, serrors.New("no ethernet header", "len", len(data))
	}
	var f frame
	var err error
	if f.src, err = datapath.MACFromHardwareAddr(p.eth.SrcMAC); err != nil {
		return frame{}, serrors.Wrap("parsing source address", err)
	}
	if f.dst, err = datapath.MACFromHardwareAddr(p.eth.DstMAC); err != nil {
		return frame{}, serrors.Wrap("parsing destination address", err)
	}
	if p.eth.EthernetType == layers.EthernetTypeLinkLayerDiscovery {
		f.class = classLLDP
		return f, nil
	}
	for _, lt := range p.decoded[1:] {
		switch lt {
		case layers.LayerTypeARP:
			f.class = classARP
			f.srcIP = net.IP(p.arp.SourceProtAddress).String()
			f.dstIP = net.IP(p.arp.DstProtAddress).String()
			return f, nil
		case layers.LayerTypeIPv4:
			f.class = classIPv4
			f.srcIP = p.ipv4.SrcIP.String()
			f.dstIP = p.ipv4.DstIP.String()
			return f, nil
		case layers.LayerTypeIPv6:
			f.class = classIPv6
			f.srcIP = p.ipv6.SrcIP.String()
			f.dstIP = p.ipv6.DstIP.String()
			return f, nil
		}
	}
	return f, nil
}
