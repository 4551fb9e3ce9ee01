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

// Package ofchannel terminates the OpenFlow 1.3 control channels of the
// switches. It performs the version negotiation and features handshake,
// answers keepalives and translates the switch messages into dispatcher
// events. Each connected switch is exposed as a datapath.Switch.
package ofchannel

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/contiv/libOpenflow/common"
	"github.com/contiv/libOpenflow/openflow13"
	"github.com/contiv/libOpenflow/util"
	"golang.org/x/sync/errgroup"

	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/pkg/log"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

// DefaultHandshakeTimeout is the default time a switch has to complete the
// hello and features exchange.
const DefaultHandshakeTimeout = 3 * time.Second

// Listener accepts switch connections.
type Listener struct {
	// Events receives the events of all switches. Required.
	Events chan<- datapath.Event
	// HandshakeTimeout bounds the handshake. Zero selects
	// DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration
}

// ListenAndServe listens on the TCP address addr and serves switch
// connections until ctx is canceled.
func (l *Listener) ListenAndServe(ctx context.Context, addr string) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return serrors.Wrap("listening for switches", err, "addr", addr)
	}
	return l.Serve(ctx, ln)
}

// Serve serves switch connections accepted on ln until ctx is canceled. The
// listener is closed when Serve returns. Serve waits for all connections to
// terminate before returning.
func (l *Listener) Serve(ctx context.Context, ln net.Listener) error {
	log.FromCtx(ctx).Info("Listening for switches", "addr", ln.Addr())
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		<-ctx.Done()
		ln.Close()
		return nil
	})
	g.Go(func() error {
		defer log.HandlePanic()
		for {
			conn, err := ln.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return serrors.Wrap("accepting switch connection", err)
			}
			g.Go(func() error {
				l.serveConn(ctx, conn)
				return nil
			})
		}
	})
	return g.Wait()
}

func (l *Listener) serveConn(ctx context.Context, conn net.Conn) {
	defer log.HandlePanic()
	ctx, logger := log.WithLabels(ctx, "remote", conn.RemoteAddr().String())
	sw := newSwitch(util.NewMessageStream(conn, parser{}))
	defer sw.close()

	hello, err := common.NewHello(int(openflow13.VERSION))
	if err != nil {
		logger.Error("Creating hello", "err", err)
		return
	}
	if err := sw.send(hello); err != nil {
		return
	}
	dpid, err := l.handshake(ctx, sw)
	if err != nil {
		logger.Info("Switch handshake failed", "err", err)
		return
	}
	sw.dpid = dpid
	ctx, logger = log.WithLabels(ctx, "dpid", dpid)
	logger.Debug("Switch handshake completed")
	if !l.emit(ctx, datapath.Event{Kind: datapath.EventHandshake, Switch: sw}) {
		return
	}
	l.receive(ctx, sw)
	sw.close()
	l.emit(ctx, datapath.Event{Kind: datapath.EventDisconnect, Switch: sw})
}

func (l *Listener) handshake(ctx context.Context, sw *ofSwitch) (datapath.DPID, error) {
	timeout := l.HandshakeTimeout
	if timeout == 0 {
		timeout = DefaultHandshakeTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timer.C:
			return 0, serrors.New("handshake timed out", "timeout", timeout)
		case err := <-sw.stream.Error:
			return 0, serrors.Wrap("reading from switch", err)
		case msg := <-sw.stream.Inbound:
			switch m := msg.(type) {
			case *common.Hello:
				if m.Version < openflow13.VERSION {
					return 0, serrors.New("unsupported protocol version", "version", m.Version)
				}
				sw.stream.Version = openflow13.VERSION
				if err := sw.send(openflow13.NewFeaturesRequest()); err != nil {
					return 0, err
				}
			case *openflow13.SwitchFeatures:
				return datapath.DPIDFromBytes(m.DPID)
			case *openflow13.ErrorMsg:
				return 0, serrors.New("switch rejected handshake")
			case *common.Header:
				if err := sw.handleHeader(m); err != nil {
					return 0, err
				}
			}
		}
	}
}

func (l *Listener) receive(ctx context.Context, sw *ofSwitch) {
	logger := log.FromCtx(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-sw.stream.Error:
			logger.Info("Control channel closed", "err", err)
			return
		case msg := <-sw.stream.Inbound:
			ev, err := sw.translate(msg)
			if err != nil {
				logger.Debug("Ignoring switch message", "err", err)
				continue
			}
			if ev == nil {
				continue
			}
			if !l.emit(ctx, *ev) {
				return
			}
		}
	}
}

func (l *Listener) emit(ctx context.Context, ev datapath.Event) bool {
	select {
	case l.Events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// ofSwitch is a connected switch.
type ofSwitch struct {
	dpid   datapath.DPID
	stream *util.MessageStream

	done      chan struct{}
	closeOnce sync.Once
}

func newSwitch(stream *util.MessageStream) *ofSwitch {
	return &ofSwitch{
		stream: stream,
		done:   make(chan struct{}),
	}
}

func (s *ofSwitch) ID() datapath.DPID {
	return s.dpid
}

func (s *ofSwitch) InstallRule(rule datapath.Rule) error {
	fm, err := encodeFlowMod(rule)
	if err != nil {
		return err
	}
	return s.send(fm)
}

func (s *ofSwitch) SendPacketOut(pkt datapath.PacketOut) error {
	return s.send(encodePacketOut(pkt))
}

// send queues msg for writing. It fails with datapath.ErrClosed once the
// switch is closed.
func (s *ofSwitch) send(msg util.Message) error {
	select {
	case <-s.done:
		return datapath.ErrClosed
	default:
	}
	select {
	case s.stream.Outbound <- msg:
		return nil
	case <-s.done:
		return datapath.ErrClosed
	}
}

func (s *ofSwitch) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		select {
		case s.stream.Shutdown <- true:
		default:
		}
	})
}

// handleHeader answers keepalives. Other header-only messages are ignored.
func (s *ofSwitch) handleHeader(h *common.Header) error {
	if h.Type != openflow13.Type_EchoRequest {
		return nil
	}
	reply := openflow13.NewEchoReply()
	reply.Xid = h.Xid
	return s.send(reply)
}

// translate turns msg into a dispatcher event. Messages that need no
// dispatcher involvement yield a nil event.
func (s *ofSwitch) translate(msg util.Message) (*datapath.Event, error) {
	switch m := msg.(type) {
	case *packetIn:
		pi, err := decodePacketIn(m)
		if err != nil {
			return nil, err
		}
		return &datapath.Event{Kind: datapath.EventPacketIn, Switch: s, PacketIn: pi}, nil
	case *openflow13.FlowRemoved:
		fr, err := decodeFlowRemoved(m)
		if err != nil {
			return nil, err
		}
		return &datapath.Event{Kind: datapath.EventFlowRemoved, Switch: s, FlowRemoved: fr}, nil
	case *openflow13.ErrorMsg:
		return nil, serrors.New("switch reported error")
	case *common.Header:
		return nil, s.handleHeader(m)
	default:
		return nil, nil
	}
}
