package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/ariefcatur/go-bookstore-api/internal/apperr"
	"github.com/ariefcatur/go-bookstore-api/internal/bookstore"
	"github.com/ariefcatur/go-bookstore-api/internal/logging"
	"github.com/ariefcatur/go-bookstore-api/internal/validate"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"io"
	"net/http"
)

// maxBody caps request bodies; every payload of this API is small.
const maxBody = 1 << 20

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error *apperr.Error `json:"error"`
}

// errorWriter turns any error into the JSON error response. verbose adds the
// underlying error text to 500 responses.
type errorWriter struct {
	verbose bool
}

func (ew errorWriter) write(w http.ResponseWriter, r *http.Request, err error) {
	e := translate(err)
	if e.Status >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).Error("request failed")
		out := *e
		if ew.verbose && e.Err != nil {
			out.Details = e.Err.Error()
		}
		writeJSON(w, e.Status, errorBody{Error: &out})
		return
	}
	writeJSON(w, e.Status, errorBody{Error: e})
}

// translate maps storage and domain errors onto the API taxonomy.
func translate(err error) *apperr.Error {
	var unknown *bookstore.UnknownBookError
	switch {
	case errors.As(err, &unknown):
		return apperr.BadRequest(unknown.Error())
	case errors.Is(err, bookstore.ErrNotFound):
		return apperr.NotFound("not found")
	case errors.Is(err, bookstore.ErrDuplicate):
		return apperr.Conflict("duplicate")
	case errors.Is(err, bookstore.ErrNoChanges):
		return apperr.BadRequest("no changes detected")
	}
	return apperr.As(err)
}

// decoder reads, normalizes and validates request payloads.
type decoder struct {
	v *validate.Validator
}

type normalizer interface{ Normalize() }

// decode fills dst (a pointer to a payload struct) from the request body.
// An empty or malformed body is 400, an oversized one 413, and a rule
// failure 412. `{}` and `null` count as empty.
func (d decoder) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.PayloadTooLarge(fmt.Sprintf("request body exceeds %d bytes", tooBig.Limit))
		}
		return apperr.BadRequest("cannot read body")
	}
	if isEmptyBody(body) {
		return apperr.BadRequest("request body is empty")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			return apperr.BadRequest("invalid value for " + te.Field)
		}
		return apperr.BadRequest("invalid json")
	}
	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}
	violations, err := d.v.Check(dst)
	if err != nil {
		return apperr.BadRequest("invalid payload")
	}
	if len(violations) > 0 {
		return apperr.Validation(violations)
	}
	return nil
}

func isEmptyBody(body []byte) bool {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return true
	}
	var fields map[string]json.RawMessage
	return json.Unmarshal(body, &fields) == nil && len(fields) == 0
}

func parseID(r *http.Request) (primitive.ObjectID, error) {
	id, ok := bookstore.ParseID(chi.URLParam(r, "id"))
	if !ok {
		return primitive.NilObjectID, apperr.BadRequest("invalid id")
	}
	return id, nil
}
