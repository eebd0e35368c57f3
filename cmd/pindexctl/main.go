// Copyright (C) 2024 Vectorbase, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Command pindexctl runs a standalone HTTP front-end over a
// partition-key index handle, useful for local development and
// smoke-testing the bridge operation table without a full embedding
// host.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/vectorbase/partdex/bridge"
	"github.com/vectorbase/partdex/pindex"
)

var (
	dashv    bool
	dashh    bool
	dashaddr string
	dashcfg  string
)

func init() {
	flag.BoolVar(&dashv, "v", false, "verbose")
	flag.BoolVar(&dashh, "h", false, "show usage help")
	flag.StringVar(&dashaddr, "listen", ":8088", "address to listen on")
	flag.StringVar(&dashcfg, "config", "", "path to a pindex config YAML file (optional)")
}

func exitf(f string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, f, args...)
	os.Exit(1)
}

func loadConfig(path string) pindex.Config {
	if path == "" {
		return pindex.DefaultConfig()
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		exitf("reading config: %s\n", err)
	}
	cfg, err := pindex.LoadConfig(doc)
	if err != nil {
		exitf("parsing config: %s\n", err)
	}
	return cfg
}

func serve(addr string, logger *log.Logger) {
	reg := bridge.NewRegistry()
	srv := bridge.NewServer(reg, logger)
	logger.Printf("listening on %s", addr)
	if err := http.ListenAndServe(addr, srv.Mux()); err != nil {
		exitf("serve: %s\n", err)
	}
}

func main() {
	flag.Parse()
	if dashh {
		fmt.Fprintf(os.Stderr, "usage:\n")
		fmt.Fprintf(os.Stderr, "    %s -listen <addr> serve\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "        start the HTTP bridge server with an empty registry\n")
		fmt.Fprintf(os.Stderr, "flag usage:\n")
		flag.Usage()
		os.Exit(1)
	}

	logger := log.New(os.Stderr, "pindexctl: ", log.LstdFlags)
	cfg := loadConfig(dashcfg)
	if dashv {
		logger.Printf("config: columnCacheItems=%d docSetCacheBytes=%d maxTermsToIterate=%d",
			cfg.ColumnCacheItems, cfg.DocSetCacheBytes, cfg.MaxTermsToIterate)
	}

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"serve"}
	}
	switch args[0] {
	case "serve":
		serve(dashaddr, logger)
	default:
		exitf("commands: serve\n")
	}
}
