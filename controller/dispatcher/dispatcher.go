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

// Package dispatcher processes the events reported by switches. It drives
// the session registry, the access gate and the flow installer.
//
// Events are handled one at a time by a single goroutine, so no two handlers
// ever run concurrently. Handlers are looked up in an explicit table keyed by
// the event kind.
package dispatcher

import (
	"context"

	"github.com/netgate-lab/flowgate/controller"
	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/controller/flow"
	"github.com/netgate-lab/flowgate/controller/gate"
	"github.com/netgate-lab/flowgate/controller/session"
	"github.com/netgate-lab/flowgate/pkg/log"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

// Reasons for dropping a frame.
const (
	dropInactive     = "inactive_session"
	dropMalformed    = "malformed"
	dropGateNotReady = "gate_not_ready"
	dropGateDenied   = "gate_denied"
	dropNotIP        = "not_ip"
)

type handler func(ctx context.Context, ev datapath.Event) error

// Dispatcher handles switch events.
type Dispatcher struct {
	registry  *session.Registry
	installer *flow.Installer
	gate      *gate.Gate
	metrics   *controller.Metrics

	handlers map[datapath.EventKind]handler
	parser   *frameParser
}

// New creates a dispatcher. The installer must use the same registry. metrics
// may be nil.
func New(registry *session.Registry, installer *flow.Installer, g *gate.Gate,
	metrics *controller.Metrics) *Dispatcher {

	d := &Dispatcher{
		registry:  registry,
		installer: installer,
		gate:      g,
		metrics:   metrics,
		parser:    newFrameParser(),
	}
	d.handlers = map[datapath.EventKind]handler{
		datapath.EventHandshake:   d.handleHandshake,
		datapath.EventPacketIn:    d.handlePacketIn,
		datapath.EventFlowRemoved: d.handleFlowRemoved,
		datapath.EventDisconnect:  d.handleDisconnect,
	}
	return d
}

// Run handles the events received on events until the channel is closed or
// the context is canceled.
func (d *Dispatcher) Run(ctx context.Context, events <-chan datapath.Event) error {
	defer log.HandlePanic()
	logger := log.FromCtx(ctx)
	logger.Info("Dispatcher started")
	defer logger.Info("Dispatcher stopped")
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := d.Handle(ctx, ev); err != nil {
				logger.Error("Handling event failed", "kind", ev.Kind, "err", err)
			}
		}
	}
}

// Handle processes a single event.
func (d *Dispatcher) Handle(ctx context.Context, ev datapath.Event) error {
	h, ok := d.handlers[ev.Kind]
	if !ok {
		return serrors.New("unknown event kind", "kind", ev.Kind)
	}
	if ev.Switch == nil {
		return serrors.New("event without switch", "kind", ev.Kind)
	}
	if d.metrics != nil {
		d.metrics.EventsTotal.WithLabelValues(ev.Kind.String()).Inc()
	}
	ctx, _ = log.WithLabels(ctx, "dpid", ev.Switch.ID())
	return h(ctx, ev)
}

func (d *Dispatcher) handleHandshake(ctx context.Context, ev datapath.Event) error {
	dpid := ev.Switch.ID()
	s := d.registry.Reset(dpid, ev.Switch)
	defer d.updateConnected()
	if err := d.installer.InstallFallback(ctx, ev.Switch); err != nil {
		return err
	}
	s.SetState(session.FallbackInstalled)
	s.SetState(session.Active)
	log.FromCtx(ctx).Info("Switch connected")
	return nil
}

func (d *Dispatcher) handleDisconnect(ctx context.Context, ev datapath.Event) error {
	if !d.registry.Disconnect(ev.Switch.ID(), ev.Switch) {
		log.FromCtx(ctx).Debug("Ignoring disconnect of a replaced connection")
		return nil
	}
	d.updateConnected()
	log.FromCtx(ctx).Info("Switch disconnected")
	return nil
}

func (d *Dispatcher) updateConnected() {
	if d.metrics != nil {
		d.metrics.ConnectedSwitches.Set(float64(d.registry.ActiveCount()))
	}
}

func (d *Dispatcher) handleFlowRemoved(ctx context.Context, ev datapath.Event) error {
	fr := ev.FlowRemoved
	if fr == nil {
		return serrors.New("flow removed event without payload")
	}
	if d.metrics != nil {
		d.metrics.FlowsRemovedTotal.WithLabelValues(fr.Reason.String()).Inc()
	}
	key := session.FlowKey{
		DPID:   ev.Switch.ID(),
		InPort: fr.Match.InPort,
		Src:    fr.Match.Src,
		Dst:    fr.Match.Dst,
	}
	outcome, err := d.installer.ReconcileRemoved(ctx, ev.Switch, key, fr.Reason)
	if err != nil {
		return serrors.Wrap("reconciling removed flow", err, "flow", key,
			"cookie", fr.Cookie, "reason", fr.Reason)
	}
	log.FromCtx(ctx).Debug("Reconciled removed flow", "flow", key, "cookie", fr.Cookie,
		"reason", fr.Reason, "outcome", outcome)
	return nil
}

func (d *Dispatcher) handlePacketIn(ctx context.Context, ev datapath.Event) error {
	pi := ev.PacketIn
	if pi == nil {
		return serrors.New("packet in event without payload")
	}
	dpid := ev.Switch.ID()
	logger := log.FromCtx(ctx)
	if s, ok := d.registry.Session(dpid); !ok || s.State() != session.Active {
		d.drop(dropInactive)
		return nil
	}
	f, err := d.parser.parse(pi.Data)
	if err != nil {
		d.countPacketIn(dropMalformed)
		d.drop(dropMalformed)
		logger.Debug("Dropping malformed frame", "in_port", pi.InPort, "err", err)
		return nil
	}
	d.countPacketIn(f.class.String())
	if f.class == classLLDP {
		return nil
	}
	d.registry.Learn(dpid, f.src, pi.InPort)

	switch f.class {
	case classARP:
		if !d.admit(ctx, f) {
			return nil
		}
		return d.forward(ctx, ev.Switch, pi, datapath.PortFlood)
	case classIPv4, classIPv6:
		if !d.admit(ctx, f) {
			return nil
		}
		outPort, ok := d.registry.LookupPort(dpid, f.dst)
		if !ok {
			return d.forward(ctx, ev.Switch, pi, datapath.PortFlood)
		}
		key := session.FlowKey{DPID: dpid, InPort: pi.InPort, Src: f.src, Dst: f.dst}
		if _, _, err := d.installer.EnsureFlow(ctx, ev.Switch, key, outPort); err != nil {
			// The frame at hand is still forwarded; the next frame of the
			// flow retries the install.
			logger.Error("Installing flow failed", "flow", key, "err", err)
		}
		return d.forward(ctx, ev.Switch, pi, outPort)
	default:
		d.drop(dropNotIP)
		return nil
	}
}

// admit checks the frame against the access gate.
func (d *Dispatcher) admit(ctx context.Context, f frame) bool {
	if !d.gate.Ready() {
		d.drop(dropGateNotReady)
		log.FromCtx(ctx).Debug("Access gate not ready, dropping frame", "class", f.class,
			"src", f.srcIP, "dst", f.dstIP)
		return false
	}
	if !d.gate.Permits(f.srcIP, f.dstIP) {
		d.drop(dropGateDenied)
		log.FromCtx(ctx).Info("Access denied", "class", f.class, "src", f.srcIP,
			"dst", f.dstIP)
		return false
	}
	return true
}

func (d *Dispatcher) forward(ctx context.Context, sw datapath.Switch, pi *datapath.PacketIn,
	outPort datapath.Port) error {

	pkt := datapath.PacketOut{
		BufferID: pi.BufferID,
		InPort:   pi.InPort,
		OutPort:  outPort,
	}
	if !pkt.Buffered() {
		pkt.Data = pi.Data
	}
	err := sw.SendPacketOut(pkt)
	if d.metrics != nil {
		action := controller.ActionUnicast
		if outPort == datapath.PortFlood {
			action = controller.ActionFlood
		}
		d.metrics.PacketOutsTotal.WithLabelValues(action, controller.Result(err)).Inc()
	}
	if err != nil {
		return serrors.Wrap("sending packet out", err, "in_port", pi.InPort,
			"out_port", outPort)
	}
	return nil
}

func (d *Dispatcher) countPacketIn(class string) {
	if d.metrics != nil {
		d.metrics.PacketInsTotal.WithLabelValues(class).Inc()
	}
}

func (d *Dispatcher) drop(reason string) {
	if d.metrics != nil {
		d.metrics.DroppedFramesTotal.WithLabelValues(reason).Inc()
	}
}
