package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/me/jobbind/internal/binding"
	"github.com/me/jobbind/internal/jobdoc"
	"github.com/me/jobbind/pkg/model"
	"github.com/me/jobbind/pkg/value"
)

// readBody reads a bounded request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

// handleBind runs a binding pass. Documents submitted over HTTP are always
// staged under the configured work root; their workdir field is ignored.
func (s *Server) handleBind(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	body, err := readBody(w, r)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("read body: "+err.Error()))
		return
	}
	doc, err := jobdoc.Parse(body)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}
	doc.WorkDir = ""

	pass, err := s.binder.Bind(r.Context(), doc)
	if err != nil {
		s.respondBindError(w, reqID, err)
		return
	}
	respondCreated(w, reqID, pass)
}

func (s *Server) respondBindError(w http.ResponseWriter, reqID string, err error) {
	var be *model.BindingError
	var fme *model.FileMappingError
	switch {
	case errors.As(err, &fme):
		respondError(w, reqID, http.StatusUnprocessableEntity, &model.APIError{
			Code:    model.ErrBinding,
			Message: err.Error(),
			Details: []model.FieldError{{Path: fme.Path, Message: "path could not be mapped"}},
		})
	case errors.As(err, &be):
		respondError(w, reqID, http.StatusUnprocessableEntity, &model.APIError{
			Code:    model.ErrBinding,
			Message: err.Error(),
		})
	default:
		s.logger.Error("bind failed", "error", err, "request_id", reqID)
		respondError(w, reqID, http.StatusInternalServerError, &model.APIError{
			Code:    model.ErrInternal,
			Message: err.Error(),
		})
	}
}

type inferResponse struct {
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields,omitempty"`
}

// handleInfer infers the type of the posted value. Records also report the
// type of each field.
func (s *Server) handleInfer(w http.ResponseWriter, r *http.Request) {
	reqID := RequestIDFromContext(r.Context())

	body, err := readBody(w, r)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError("read body: "+err.Error()))
		return
	}
	v, err := value.UnmarshalYAML(body)
	if err != nil {
		respondError(w, reqID, http.StatusBadRequest, model.NewValidationError(err.Error()))
		return
	}

	resp := inferResponse{Type: value.Infer(v).String()}
	if rec, ok := v.(*value.Record); ok {
		resp.Fields = binding.InputTypes(rec)
	}
	respondOK(w, reqID, resp)
}
