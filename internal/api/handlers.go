// Copyright (c) 2026 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bonitasoft/bonita-engine-sub001/internal/apierr"
	"github.com/bonitasoft/bonita-engine-sub001/internal/dispatch"
	"github.com/bonitasoft/bonita-engine-sub001/internal/log"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, wrapped *apierr.Wrapped) {
	p := apierr.ToPayload(wrapped)
	writeJSON(w, apierr.HTTPStatus(p.Kind), InvokeResponse{Error: &p})
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	api := chi.URLParam(r, "api")
	method := chi.URLParam(r, "method")

	var req InvokeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, InvokeResponse{Error: &apierr.Payload{
			Kind:    apierr.KindUnexpected,
			Code:    "request.malformed",
			Message: fmt.Sprintf("decode request: %v", err),
		}})
		return
	}

	var opts dispatch.Options
	if req.Session != nil {
		sess, err := req.Session.Session()
		if err != nil {
			writeFailure(w, apierr.Normalize(err, apierr.CallContext{UserName: req.Session.UserName}))
			return
		}
		opts.Session = sess
	}

	args := make([]any, len(req.Args))
	for i, a := range req.Args {
		args[i] = a
	}

	result, err := s.invoker.Invoke(ctx, opts, api, method, req.ParameterTypes, args)
	if err != nil {
		wrapped, ok := apierr.AsWrapped(err)
		if !ok {
			wrapped = apierr.Normalize(err, apierr.CallContext{})
		}
		writeFailure(w, wrapped)
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		logger := log.WithComponentFromContext(ctx, "api")
		logger.Error().Err(err).
			Str(log.FieldAPI, api).
			Str(log.FieldMethod, method).
			Msg("encode result")
		writeFailure(w, apierr.Wrap(apierr.Unexpected(err, "encode result of %s.%s", api, method)))
		return
	}
	writeJSON(w, http.StatusOK, InvokeResponse{Result: raw})
}
