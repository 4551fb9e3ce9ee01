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

// Package mgmtapi implements the control API of the flow controller. It arms
// the access gate and exposes the status of the switch sessions.
package mgmtapi

import (
	"encoding/json"
	"mime"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/netgate-lab/flowgate/controller/gate"
	"github.com/netgate-lab/flowgate/controller/session"
	"github.com/netgate-lab/flowgate/pkg/log"
	api "github.com/netgate-lab/flowgate/private/mgmtapi"
)

const maxBodySize = 64 << 10

// Server implements the control API.
type Server struct {
	Gate     *gate.Gate
	Registry *session.Registry
	Config   http.HandlerFunc
	Info     http.HandlerFunc
	LogLevel http.HandlerFunc
}

// Handler registers the API routes on r and returns it.
func Handler(s *Server, r chi.Router) http.Handler {
	r.Group(func(r chi.Router) {
		r.Use(Recoverer)
		r.Get("/liveness", s.GetLiveness)
		r.Post("/gate/principal", s.SetPrincipal)
		r.Post("/gate/gateway", s.SetGateway)
		r.Get("/gate", s.GetGate)
		r.Get("/switches", s.GetSwitches)
		r.Get("/config", s.GetConfig)
		r.Get("/info", s.GetInfo)
		r.Get("/log/level", s.GetLogLevel)
		r.Put("/log/level", s.SetLogLevel)

		// Routes used by the network bring-up tooling.
		r.Get("/heartbeat", s.GetLiveness)
		r.Post("/set_server_address", s.LegacySetPrincipal)
		r.Post("/set_nat_address", s.LegacySetGateway)
	})
	return r
}

// GetLiveness reports that the process is up.
func (s *Server) GetLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, StatusResponse{Status: "OK"})
}

// SetPrincipal sets the principal address of the gate.
func (s *Server) SetPrincipal(w http.ResponseWriter, r *http.Request) {
	s.setAddress(w, r, "principal", "address", s.Gate.SetPrincipal)
}

// SetGateway sets the gateway address of the gate.
func (s *Server) SetGateway(w http.ResponseWriter, r *http.Request) {
	s.setAddress(w, r, "gateway", "address", s.Gate.SetGateway)
}

// LegacySetPrincipal is SetPrincipal with the ip_address payload.
func (s *Server) LegacySetPrincipal(w http.ResponseWriter, r *http.Request) {
	s.setAddress(w, r, "principal", "ip_address", s.Gate.SetPrincipal)
}

// LegacySetGateway is SetGateway with the ip_address payload.
func (s *Server) LegacySetGateway(w http.ResponseWriter, r *http.Request) {
	s.setAddress(w, r, "gateway", "ip_address", s.Gate.SetGateway)
}

func (s *Server) setAddress(w http.ResponseWriter, r *http.Request, target, field string,
	set func(string)) {

	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil || !isJSON(mediaType) {
			api.ErrorResponse(w, api.Problem{
				Detail: api.StringRef("content type must be application/json"),
				Status: http.StatusUnsupportedMediaType,
				Title:  "unsupported content type",
				Type:   api.StringRef(api.Unsupported),
			})
			return
		}
	}
	var body map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&body); err != nil ||
		body == nil {

		badRequest(w, "invalid body", "body must be a JSON object")
		return
	}
	raw, ok := body[field]
	if !ok {
		badRequest(w, "missing address", "field "+field+" is required")
		return
	}
	var address string
	if err := json.Unmarshal(raw, &address); err != nil || address == "" {
		badRequest(w, "invalid address", "field "+field+" must be a non-empty string")
		return
	}
	set(address)
	log.FromCtx(r.Context()).Info("Access gate updated", "field", target, "address", address)
	writeJSON(w, StatusResponse{Status: "OK"})
}

// GetGate returns the gate state.
func (s *Server) GetGate(w http.ResponseWriter, r *http.Request) {
	principal, gateway := s.Gate.Snapshot()
	writeJSON(w, GateResponse{
		Principal: principal,
		Gateway:   gateway,
		Ready:     s.Gate.Ready(),
	})
}

// GetSwitches lists the switch sessions and their cached flows.
func (s *Server) GetSwitches(w http.ResponseWriter, r *http.Request) {
	infos := s.Registry.Sessions()
	rep := SwitchesResponse{Switches: make([]Switch, 0, len(infos))}
	for _, info := range infos {
		sw := Switch{
			Dpid:        info.DPID.String(),
			State:       info.State.String(),
			Connected:   info.Connected,
			LearnedMacs: info.LearnedMACs,
			Flows:       make([]Flow, 0, len(info.Flows)),
		}
		for _, rec := range info.Flows {
			sw.Flows = append(sw.Flows, Flow{
				Cookie:      rec.Cookie,
				InPort:      uint32(rec.Key.InPort),
				Src:         rec.Key.Src.String(),
				Dst:         rec.Key.Dst.String(),
				OutPort:     uint32(rec.OutPort),
				Priority:    rec.Priority,
				HardTimeout: rec.HardTimeout.String(),
				InstalledAt: rec.InstalledAt,
			})
		}
		rep.Switches = append(rep.Switches, sw)
	}
	writeJSON(w, rep)
}

// GetConfig is an indirection to the http handler.
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	s.Config(w, r)
}

// GetInfo is an indirection to the http handler.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.Info(w, r)
}

// GetLogLevel is an indirection to the http handler.
func (s *Server) GetLogLevel(w http.ResponseWriter, r *http.Request) {
	s.LogLevel(w, r)
}

// SetLogLevel is an indirection to the http handler.
func (s *Server) SetLogLevel(w http.ResponseWriter, r *http.Request) {
	s.LogLevel(w, r)
}

// Recoverer turns panics of the wrapped handler into problem responses.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			log.FromCtx(r.Context()).Error("Panic in API handler", "path", r.URL.Path,
				"panic", rec, "stack", string(debug.Stack()))
			api.ErrorResponse(w, api.Problem{
				Status: http.StatusInternalServerError,
				Title:  "internal error",
				Type:   api.StringRef(api.InternalError),
			})
		}()
		next.ServeHTTP(w, r)
	})
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

func badRequest(w http.ResponseWriter, title, detail string) {
	api.ErrorResponse(w, api.Problem{
		Detail: api.StringRef(detail),
		Status: http.StatusBadRequest,
		Title:  title,
		Type:   api.StringRef(api.BadRequest),
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		api.ErrorResponse(w, api.Problem{
			Detail: api.StringRef(err.Error()),
			Status: http.StatusInternalServerError,
			Title:  "unable to marshal response",
			Type:   api.StringRef(api.InternalError),
		})
	}
}
