package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "sampledash/internal/errors"
	"sampledash/internal/shared/testutil"
)

func newValidation(t *testing.T, limit int64) *ValidationMiddleware {
	logger, _ := testutil.NewTestLogger(t)
	return NewValidationMiddleware(logger, apierrors.NewErrorHandler(logger, false), limit)
}

func TestLimitBody(t *testing.T) {
	t.Run("declared oversize body", func(t *testing.T) {
		v := newValidation(t, 8)
		h := v.LimitBody(http.HandlerFunc(okHandler))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/uploads", strings.NewReader("0123456789")))

		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, apierrors.TypePayloadTooLarge, problemBody(t, rec)["type"])
	})

	t.Run("streamed body is capped", func(t *testing.T) {
		v := newValidation(t, 8)
		var readErr error
		h := v.LimitBody(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, readErr = io.ReadAll(r.Body)
		}))

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", strings.NewReader("0123456789"))
		req.ContentLength = -1
		h.ServeHTTP(httptest.NewRecorder(), req)

		var maxErr *http.MaxBytesError
		require.ErrorAs(t, readErr, &maxErr)
		assert.Equal(t, int64(8), maxErr.Limit)
	})

	t.Run("small body passes", func(t *testing.T) {
		v := newValidation(t, 1024)

		rec := httptest.NewRecorder()
		v.LimitBody(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("x")))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireContentType(t *testing.T) {
	v := newValidation(t, 1024)
	h := v.RequireContentType("multipart/form-data")(http.HandlerFunc(okHandler))

	tests := []struct {
		name        string
		contentType string
		wantStatus  int
	}{
		{"multipart", "multipart/form-data; boundary=abc", http.StatusOK},
		{"case insensitive", "Multipart/Form-Data; boundary=abc", http.StatusOK},
		{"json", "application/json", http.StatusUnsupportedMediaType},
		{"garbage", ";;", http.StatusUnsupportedMediaType},
		{"missing", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/uploads", strings.NewReader("x"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

type uploadMeta struct {
	Filename string `json:"filename" validate:"required,filename"`
}

func TestValidateStruct(t *testing.T) {
	v := newValidation(t, 1024)

	tests := []struct {
		name     string
		filename string
		wantErr  bool
		wantMsg  string
	}{
		{"plain csv", "data.csv", false, ""},
		{"no extension", "export", false, ""},
		{"empty", "", true, "filename is required"},
		{"traversal", "../etc/passwd", true, "filename must be a plain file name"},
		{"windows path", `C:\data.csv`, true, "filename must be a plain file name"},
		{"too long", strings.Repeat("a", 256), true, "filename must be a plain file name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(uploadMeta{Filename: tt.filename})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			require.Len(t, details.Errors, 1)
			assert.Equal(t, "filename", details.Errors[0].Field)
			assert.Equal(t, tt.wantMsg, details.Errors[0].Message)
		})
	}
}

func TestQueryParamValidator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	qv := NewQueryParamValidator(logger, apierrors.NewErrorHandler(logger, false))

	t.Run("int", func(t *testing.T) {
		rec := httptest.NewRecorder()
		n, ok := qv.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?rows=75", nil), "rows", 50)
		assert.True(t, ok)
		assert.Equal(t, 75, n)

		n, ok = qv.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/", nil), "rows", 50)
		assert.True(t, ok)
		assert.Equal(t, 50, n)

		rec = httptest.NewRecorder()
		_, ok = qv.ValidateInt(rec, httptest.NewRequest(http.MethodGet, "/?rows=many", nil), "rows", 50)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bool", func(t *testing.T) {
		rec := httptest.NewRecorder()
		b, ok := qv.ValidateBool(rec, httptest.NewRequest(http.MethodGet, "/?summary=true", nil), "summary", false)
		assert.True(t, ok)
		assert.True(t, b)

		rec = httptest.NewRecorder()
		_, ok = qv.ValidateBool(rec, httptest.NewRequest(http.MethodGet, "/?summary=maybe", nil), "summary", false)
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("enum", func(t *testing.T) {
		allowed := []string{"line", "area", "bar"}
		rec := httptest.NewRecorder()
		v, ok := qv.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?chart=BAR", nil), "chart", allowed, "line")
		assert.True(t, ok)
		assert.Equal(t, "bar", v)

		rec = httptest.NewRecorder()
		_, ok = qv.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?chart=pie", nil), "chart", allowed, "line")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
