package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tokenacl/internal/errors"
	ledgerDomain "github.com/allisson/tokenacl/internal/ledger/domain"
)

func TestHandleErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	namespaced := ledgerDomain.NewCustomError("token-acl", 7, "PermissionlessFreezeNotEnabled", apperrors.ErrForbidden)

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedErr  string
		programCode  *uint32
		program      string
	}{
		{
			name:         "not found",
			err:          apperrors.Wrap(apperrors.ErrNotFound, "account not found"),
			expectedCode: http.StatusNotFound,
			expectedErr:  "not_found",
		},
		{
			name:         "conflict builtin",
			err:          ledgerDomain.ErrAccountAlreadyInUse,
			expectedCode: http.StatusConflict,
			expectedErr:  "conflict",
			programCode:  ptr(9),
		},
		{
			name:         "missing signature",
			err:          ledgerDomain.ErrMissingRequiredSignature,
			expectedCode: http.StatusUnauthorized,
			expectedErr:  "unauthorized",
			programCode:  ptr(8),
		},
		{
			name:         "disabled operation",
			err:          apperrors.Wrap(namespaced, "instruction 0"),
			expectedCode: http.StatusForbidden,
			expectedErr:  "forbidden",
			programCode:  ptr(7),
			program:      "token-acl",
		},
		{
			name:         "decision rejection",
			err:          ledgerDomain.CustomError(999999999),
			expectedCode: http.StatusForbidden,
			expectedErr:  "rejected",
			programCode:  ptr(999999999),
		},
		{
			name:         "insufficient funds",
			err:          ledgerDomain.ErrInsufficientFunds,
			expectedCode: http.StatusUnprocessableEntity,
			expectedErr:  "insufficient_resources",
			programCode:  ptr(6),
		},
		{
			name:         "internal",
			err:          errors.New("connection refused"),
			expectedCode: http.StatusInternalServerError,
			expectedErr:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			HandleErrorGin(c, tt.err, logger)

			assert.Equal(t, tt.expectedCode, w.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedErr, response.Error)
			assert.Equal(t, tt.programCode, response.Code)
			assert.Equal(t, tt.program, response.Program)
		})
	}
}

func TestHandleValidationErrorGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleValidationErrorGin(c, errors.New("fee_payer: cannot be blank"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"validation_error","message":"fee_payer: cannot be blank"}`, w.Body.String())
}

func ptr(v uint32) *uint32 {
	return &v
}

func TestHandleBadRequestGin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleBadRequestGin(c, errors.New("unexpected EOF"), slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"bad_request","message":"unexpected EOF"}`, w.Body.String())
}

func TestHandleErrorGin_NilIsNoop(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleErrorGin(c, nil, nil)

	assert.Empty(t, w.Body.String())
}
