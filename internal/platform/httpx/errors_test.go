package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/projectledger/projectledger/internal/shared"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantTitle  string
	}{
		{"not found", shared.NotFoundf("project %d", 42), http.StatusNotFound, "Not Found"},
		{"conflict", shared.Conflictf("booking dates overlap"), http.StatusConflict, "Conflict"},
		{"invalid input", shared.Invalidf("checkout date must be after checkin date"), http.StatusBadRequest, "Invalid Input"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)

			require.Equal(t, tc.wantStatus, rec.Code)
			require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			require.Equal(t, tc.wantTitle, problem.Title)
			require.Equal(t, tc.wantStatus, problem.Status)
			require.Equal(t, tc.err.Error(), problem.Detail)
		})
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	require.Equal(t, "Internal Error", problem.Title)
	require.Empty(t, problem.Detail, "driver errors must not leak to clients")
}

func TestRespondErrorWrappedTaxonomy(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("load rate: %w", shared.NotFoundf("platform rate")))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
