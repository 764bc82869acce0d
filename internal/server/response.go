package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/me/jobbind/pkg/model"
)

// requestID generates a unique request identifier.
func requestID() string {
	return "req_" + uuid.New().String()[:8]
}

// listOptions reads limit, offset and job_id from q. Unparseable numbers fall
// back to the defaults and the result is clamped.
func listOptions(q url.Values) model.ListOptions {
	opts := model.DefaultListOptions()
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		opts.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil {
		opts.Offset = n
	}
	opts.JobID = q.Get("job_id")
	opts.Clamp()
	return opts
}

func respondOK(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusOK, reqID, data, nil, nil)
}

func respondCreated(w http.ResponseWriter, reqID string, data any) {
	respondJSON(w, http.StatusCreated, reqID, data, nil, nil)
}

// respondPasses writes one page of passes. data is always a JSON array.
func respondPasses(w http.ResponseWriter, reqID string, passes []*model.Pass, total int, opts model.ListOptions) {
	if passes == nil {
		passes = []*model.Pass{}
	}
	respondJSON(w, http.StatusOK, reqID, passes, model.NewPagination(total, opts), nil)
}

func respondError(w http.ResponseWriter, reqID string, status int, apiErr *model.APIError) {
	respondJSON(w, status, reqID, nil, nil, apiErr)
}

func respondJSON(w http.ResponseWriter, status int, reqID string, data any, pg *model.Pagination, apiErr *model.APIError) {
	resp := model.Response{
		Status:     "ok",
		RequestID:  reqID,
		Timestamp:  time.Now().UTC(),
		Data:       data,
		Pagination: pg,
		Error:      apiErr,
	}
	if apiErr != nil {
		resp.Status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
