package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"seva-health/internal/account"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

type stubVerifier map[string]account.Claims

func (s stubVerifier) VerifySession(_ context.Context, token string) (account.Claims, error) {
	c, ok := s[token]
	if !ok {
		return account.Claims{}, errors.New("bad token")
	}
	return c, nil
}

func TestJWTAuth(t *testing.T) {
	verifier := stubVerifier{
		"good": {UserID: "user-1", RegisteredClaims: jwt.RegisteredClaims{ID: "sess-1"}},
	}

	var gotUser, gotSession string
	h := JWTAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserID(r.Context())
		gotSession = GetSessionID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := map[string]struct {
		header string
		want   int
	}{
		"missing":    {"", http.StatusUnauthorized},
		"not bearer": {"Basic good", http.StatusUnauthorized},
		"bad token":  {"Bearer nope", http.StatusUnauthorized},
		"good":       {"Bearer good", http.StatusNoContent},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}

	assert.Equal(t, "user-1", gotUser)
	assert.Equal(t, "sess-1", gotSession)
}

func TestGetUserID_Empty(t *testing.T) {
	assert.Empty(t, GetUserID(context.Background()))
}
