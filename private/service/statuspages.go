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

// Package service contains the status pages shared by the management APIs of
// flowgate services.
package service

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/netgate-lab/flowgate/pkg/log"
	"github.com/netgate-lab/flowgate/pkg/private/serrors"
)

// StatusPage describes one of the status pages.
type StatusPage struct {
	// Info is a one-line description of the page.
	Info string
	// Handler serves the page.
	Handler http.HandlerFunc
}

// NewConfigStatusPage returns a page with the TOML encoding of cfg.
func NewConfigStatusPage(cfg any) StatusPage {
	handler := func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			log.Error("Encoding config", "err", serrors.Wrap("encoding toml", err))
			http.Error(w, "Unable to encode config", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, buf.String())
	}
	return StatusPage{
		Info:    "configuration of the service",
		Handler: handler,
	}
}

// NewInfoStatusPage returns a page with generic information about the process.
func NewInfoStatusPage() StatusPage {
	started := time.Now()
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(w, "pid: %d\n", os.Getpid())
		fmt.Fprintf(w, "go: %s\n", runtime.Version())
		fmt.Fprintf(w, "started: %s\n", started.UTC().Format(time.RFC3339))
		fmt.Fprintf(w, "uptime: %s\n", time.Since(started).Truncate(time.Second))
		if bi, ok := debug.ReadBuildInfo(); ok {
			fmt.Fprintf(w, "module: %s %s\n", bi.Main.Path, bi.Main.Version)
		}
	}
	return StatusPage{
		Info:    "generic info about the process",
		Handler: handler,
	}
}

// NewLogLevelStatusPage returns a page that shows the console log level on GET
// and changes it on PUT ({"level": "debug"}).
func NewLogLevelStatusPage() StatusPage {
	return StatusPage{
		Info:    "logging level (supports PUT)",
		Handler: log.ConsoleLevel.ServeHTTP,
	}
}
