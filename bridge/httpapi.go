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

package bridge

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/vectorbase/partdex/internal/clog"
	"github.com/vectorbase/partdex/internal/errs"
	"github.com/vectorbase/partdex/query"
)

// gzipThreshold is the response body size above which writeJSON
// compresses the response for clients that advertise gzip support.
// LabelValues/IndexValues on a high-cardinality field are the
// responses this actually matters for; everything else is well under
// this size.
const gzipThreshold = 8 * 1024

// Server exposes a Registry over HTTP, a convenience front-end for
// local tooling and tests — the FFI bridge a real embedding host calls
// through is a separate, out-of-scope collaborator with its own wire
// format.
type Server struct {
	Registry *Registry
	Logger   clog.Logger
}

// NewServer returns a Server backed by reg. logger may be nil.
func NewServer(reg *Registry, logger clog.Logger) *Server {
	if logger == nil {
		logger = clog.Discard
	}
	return &Server{Registry: reg, Logger: logger}
}

// Mux builds the ServeMux routing every operation this package
// exposes.
func (s *Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ramBytes", s.handle(s.handleRamBytes, http.MethodGet))
	mux.HandleFunc("/refresh", s.handle(s.handleRefresh, http.MethodPost))
	mux.HandleFunc("/numEntries", s.handle(s.handleNumEntries, http.MethodGet))
	mux.HandleFunc("/labelNames", s.handle(s.handleLabelNames, http.MethodGet))
	mux.HandleFunc("/indexNames", s.handle(s.handleIndexNames, http.MethodGet))
	mux.HandleFunc("/labelValues", s.handle(s.handleLabelValues, http.MethodGet))
	mux.HandleFunc("/indexValues", s.handle(s.handleIndexValues, http.MethodGet))
	mux.HandleFunc("/queryPartIds", s.handle(s.handleQueryPartIds, http.MethodPost))
	mux.HandleFunc("/queryPartKeyRecords", s.handle(s.handleQueryPartKeyRecords, http.MethodPost))
	mux.HandleFunc("/queryPartKey", s.handle(s.handleQueryPartKey, http.MethodPost))
	return mux
}

// handle wraps a route with the request logging, CORS headers, and
// method filtering every route needs, the same shape each handler
// in this server would otherwise repeat.
func (s *Server) handle(h func(http.ResponseWriter, *http.Request), methods ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		s.Logger.Printf("%s %s", r.Method, r.URL.Path)

		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", strings.Join(methods, ", "))
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		for _, m := range methods {
			if r.Method == m {
				h(w, r)
				return
			}
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	writeJSONRequest(nil, w, status, v)
}

// writeJSONRequest is writeJSON with access to the inbound request, so
// it can check Accept-Encoding before deciding whether to compress.
// r may be nil, in which case compression is never applied.
func writeJSONRequest(r *http.Request, w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		panic("bridge: unable to marshal response: " + err.Error())
	}
	w.Header().Set("Content-Type", "application/json")
	if r != nil && len(body) >= gzipThreshold && strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(status)
		gw := gzip.NewWriter(w)
		gw.Write(body)
		gw.Close()
		return
	}
	w.WriteHeader(status)
	w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if e, ok := errs.As(err); ok {
		switch e.Kind {
		case errs.FieldNotFound:
			status = http.StatusNotFound
		case errs.ParseError, errs.InvalidArgument:
			status = http.StatusBadRequest
		}
	} else {
		err = errs.New(errs.RuntimeError, "bridge", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func handleOf(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get("handle"), 10, 64)
}

func (s *Server) handleRamBytes(w http.ResponseWriter, r *http.Request) {
	h, err := handleOf(r)
	if err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "handleRamBytes", err))
		return
	}
	n, err := s.Registry.IndexRamBytes(h)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"ramBytes": n})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	h, err := handleOf(r)
	if err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "handleRefresh", err))
		return
	}
	if err := s.Registry.RefreshReaders(h); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleNumEntries(w http.ResponseWriter, r *http.Request) {
	h, err := handleOf(r)
	if err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "handleNumEntries", err))
		return
	}
	n, err := s.Registry.IndexNumEntries(h)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"numEntries": n})
}

func (s *Server) handleLabelNames(w http.ResponseWriter, r *http.Request) {
	h, err := handleOf(r)
	if err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "handleLabelNames", err))
		return
	}
	names, err := s.Registry.LabelNames(h)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleIndexNames(w http.ResponseWriter, r *http.Request) {
	h, err := handleOf(r)
	if err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "handleIndexNames", err))
		return
	}
	names, err := s.Registry.IndexNames(h)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

type valuesResponse struct {
	Values []string `json:"values"`
	Counts []int64  `json:"counts"`
}

func (s *Server) handleLabelValues(w http.ResponseWriter, r *http.Request) {
	h, err := handleOf(r)
	if err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "handleLabelValues", err))
		return
	}
	field := r.URL.Query().Get("field")
	limit := intQuery(r, "limit", 0)
	values, counts, err := s.Registry.LabelValues(h, field, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONRequest(r, w, http.StatusOK, valuesResponse{Values: values, Counts: counts})
}

func (s *Server) handleIndexValues(w http.ResponseWriter, r *http.Request) {
	h, err := handleOf(r)
	if err != nil {
		writeError(w, errs.New(errs.InvalidArgument, "handleIndexValues", err))
		return
	}
	field := r.URL.Query().Get("field")
	limit := intQuery(r, "limit", 0)
	values, counts, err := s.Registry.IndexValues(h, field, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONRequest(r, w, http.StatusOK, valuesResponse{Values: values, Counts: counts})
}

// queryRequest is the convenience JSON encoding of a query.CachableQuery
// this HTTP front-end accepts. A real FFI bridge has its own, more
// compact wire format; this one favors being easy to curl.
type queryRequest struct {
	Handle  int64  `json:"handle"`
	Kind    string `json:"kind"`
	Bytes   []byte `json:"bytes,omitempty"`
	PartIds []int32 `json:"partIds,omitempty"`
	PartId  int32  `json:"partId,omitempty"`
	EndTime int64  `json:"endTime,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

func (q queryRequest) toCachableQuery() (query.CachableQuery, error) {
	switch q.Kind {
	case "complex":
		return query.NewComplex(q.Bytes), nil
	case "byPartKey":
		return query.NewByPartKey(q.Bytes), nil
	case "byPartIds":
		return query.NewByPartIds(q.PartIds), nil
	case "byEndTime":
		return query.NewByEndTime(q.EndTime), nil
	case "byPartId":
		return query.NewByPartId(q.PartId), nil
	case "all", "":
		return query.NewAll(), nil
	default:
		return query.CachableQuery{}, errs.New(errs.InvalidArgument, "toCachableQuery", errUnknownQueryKind)
	}
}

func decodeQuery(r *http.Request) (queryRequest, error) {
	var q queryRequest
	err := json.NewDecoder(r.Body).Decode(&q)
	return q, err
}

func (s *Server) handleQueryPartIds(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuery(r)
	if err != nil {
		writeError(w, errs.New(errs.ParseError, "handleQueryPartIds", err))
		return
	}
	cq, err := req.toCachableQuery()
	if err != nil {
		writeError(w, err)
		return
	}
	ids, err := s.Registry.QueryPartIds(req.Handle, cq, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) handleQueryPartKeyRecords(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuery(r)
	if err != nil {
		writeError(w, errs.New(errs.ParseError, "handleQueryPartKeyRecords", err))
		return
	}
	cq, err := req.toCachableQuery()
	if err != nil {
		writeError(w, err)
		return
	}
	records, err := s.Registry.QueryPartKeyRecords(req.Handle, cq, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleQueryPartKey(w http.ResponseWriter, r *http.Request) {
	req, err := decodeQuery(r)
	if err != nil {
		writeError(w, errs.New(errs.ParseError, "handleQueryPartKey", err))
		return
	}
	cq, err := req.toCachableQuery()
	if err != nil {
		writeError(w, err)
		return
	}
	key, err := s.Registry.QueryPartKey(req.Handle, cq, req.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"partKey": string(key)})
}

func intQuery(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
