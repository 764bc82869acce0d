package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/me/jobbind/internal/binding"
	"github.com/me/jobbind/pkg/model"
)

func (s *Server) handleListPasses(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	q := r.URL.Query()

	if digest := q.Get("digest"); digest != "" {
		pass, err := s.binder.FindByDigest(r.Context(), digest)
		if err != nil {
			s.respondStoreError(w, reqID, err)
			return
		}
		var passes []*model.Pass
		if pass != nil {
			passes = append(passes, pass)
		}
		respondPasses(w, reqID, passes, len(passes), model.ListOptions{Limit: 1})
		return
	}

	opts := listOptions(q)
	passes, total, err := s.binder.List(r.Context(), opts)
	if err != nil {
		s.respondStoreError(w, reqID, err)
		return
	}
	respondPasses(w, reqID, passes, total, opts)
}

func (s *Server) handleGetPass(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	pass, err := s.binder.Get(r.Context(), id)
	if err != nil {
		s.respondStoreError(w, reqID, err)
		return
	}
	if pass == nil {
		respondError(w, reqID, http.StatusNotFound, model.NewNotFoundError("pass", id))
		return
	}
	respondOK(w, reqID, pass)
}

func (s *Server) respondStoreError(w http.ResponseWriter, reqID string, err error) {
	if errors.Is(err, binding.ErrNoStore) {
		respondError(w, reqID, http.StatusServiceUnavailable, &model.APIError{
			Code:    model.ErrUnavailable,
			Message: err.Error(),
		})
		return
	}
	s.logger.Error("store query failed", "error", err, "request_id", reqID)
	respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
		Code:    model.ErrInternal,
		Message: err.Error(),
	})
}
