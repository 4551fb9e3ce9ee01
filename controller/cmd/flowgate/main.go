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

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/netgate-lab/flowgate/controller"
	"github.com/netgate-lab/flowgate/controller/config"
	"github.com/netgate-lab/flowgate/controller/datapath"
	"github.com/netgate-lab/flowgate/controller/dispatcher"
	"github.com/netgate-lab/flowgate/controller/flow"
	"github.com/netgate-lab/flowgate/controller/gate"
	api "github.com/netgate-lab/flowgate/controller/mgmtapi"
	"github.com/netgate-lab/flowgate/controller/ofchannel"
	"github.com/netgate-lab/flowgate/controller/session"
	"github.com/netgate-lab/flowgate/pkg/log"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
	"github.com/netgate-lab/flowgate/private/app/launcher"
	"github.com/netgate-lab/flowgate/private/service"
)

const shutdownTimeout = 5 * time.Second

var globalCfg config.Config

func main() {
	application := launcher.Application{
		TOMLConfig: &globalCfg,
		ShortName:  "flowgate",
		Main:       realMain,
	}
	application.Run()
}

func realMain(ctx context.Context) error {
	ctrlCfg := globalCfg.Controller
	registry, err := session.NewRegistry(ctrlCfg.MACTableSize)
	if err != nil {
		return serrors.Wrap("creating session registry", err)
	}
	metrics := controller.NewMetrics(nil)
	installer := &flow.Installer{
		Registry:         registry,
		Priority:         uint16(ctrlCfg.FlowPriority),
		HardTimeout:      ctrlCfg.FlowHardTimeout.Duration,
		ReinstallPolicy:  flow.ReinstallPolicy(ctrlCfg.ReinstallPolicy),
		ControllerMaxLen: uint16(ctrlCfg.PacketInMaxLen),
		Metrics:          metrics,
	}
	accessGate := gate.New(globalCfg.Gate.Principal, globalCfg.Gate.Gateway)
	if !accessGate.Ready() {
		log.Info("Access gate not armed, IP traffic is dropped until both addresses are set")
	}
	events := make(chan datapath.Event, ctrlCfg.EventQueueSize)
	d := dispatcher.New(registry, installer, accessGate, metrics)
	listener := &ofchannel.Listener{
		Events:           events,
		HandshakeTimeout: ctrlCfg.HandshakeTimeout.Duration,
	}

	g, errCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer log.HandlePanic()
		if err := listener.ListenAndServe(errCtx, ctrlCfg.ListenAddr); err != nil {
			return serrors.Wrap("serving control channel", err)
		}
		return nil
	})
	g.Go(func() error {
		defer log.HandlePanic()
		return d.Run(errCtx, events)
	})

	// Initialize and start the control API.
	if globalCfg.API.Addr != "" {
		r := chi.NewRouter()
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
		}))
		server := api.Server{
			Gate:     accessGate,
			Registry: registry,
			Config:   service.NewConfigStatusPage(globalCfg).Handler,
			Info:     service.NewInfoStatusPage().Handler,
			LogLevel: service.NewLogLevelStatusPage().Handler,
		}
		log.Info("Exposing API", "addr", globalCfg.API.Addr)
		mgmtServer := &http.Server{
			Addr:              globalCfg.API.Addr,
			Handler:           api.Handler(&server, r),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			defer log.HandlePanic()
			<-errCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return mgmtServer.Shutdown(shutdownCtx)
		})
		g.Go(func() error {
			defer log.HandlePanic()
			err := mgmtServer.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return serrors.Wrap("serving control API", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		defer log.HandlePanic()
		return globalCfg.Metrics.ServePrometheus(errCtx)
	})
	return g.Wait()
}
