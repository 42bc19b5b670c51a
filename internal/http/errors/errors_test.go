package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-ID", "rid-1")

	WriteError(rec, ErrNotFound.WithDetail("email template not found"))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "NOT_FOUND", body["code"])
	require.Equal(t, "email template not found", body["detail"])
	require.Equal(t, "rid-1", body["request_id"])
}

func TestWriteError_UnknownIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, fmt.Errorf("boom"))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWithDetail_DoesNotMutateBase(t *testing.T) {
	_ = ErrBadRequest.WithDetail("x")
	require.Empty(t, ErrBadRequest.Detail)

	wrapped := fmt.Errorf("ctx: %w", ErrForbidden)
	require.Equal(t, ErrForbidden, FromError(wrapped))
}
