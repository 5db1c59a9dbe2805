package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doRequest(t *testing.T, h http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func Test_Inbox_PostCommand(t *testing.T) {
	testCases := []struct {
		name         string
		contentType  string
		body         string
		expectStatus int
		expectLines  []string
	}{
		{
			name:         "valid command",
			contentType:  "application/json",
			body:         `{"input": "walk north"}`,
			expectStatus: http.StatusAccepted,
			expectLines:  []string{"walk north"},
		},
		{
			name:         "surrounding space is trimmed",
			contentType:  "application/json; charset=utf-8",
			body:         `{"input": "  rest 5 "}`,
			expectStatus: http.StatusAccepted,
			expectLines:  []string{"rest 5"},
		},
		{
			name:         "unknown verb",
			contentType:  "application/json",
			body:         `{"input": "dance"}`,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "empty input",
			contentType:  "application/json",
			body:         `{"input": ""}`,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "quit is refused",
			contentType:  "application/json",
			body:         `{"input": "quit"}`,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "malformed JSON",
			contentType:  "application/json",
			body:         `{"input": `,
			expectStatus: http.StatusBadRequest,
		},
		{
			name:         "not JSON",
			contentType:  "text/plain",
			body:         `walk north`,
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			in := New(Options{})

			rec := doRequest(t, in.Router(), http.MethodPost, "/commands", tc.contentType, tc.body)

			assert.Equal(tc.expectStatus, rec.Code)
			assert.Equal("application/json", rec.Header().Get("Content-Type"))
			assert.Equal(tc.expectLines, in.Drain())
		})
	}
}

func Test_Inbox_PostCommand_Response(t *testing.T) {
	assert := assert.New(t)
	in := New(Options{})

	doRequest(t, in.Router(), http.MethodPost, "/commands", "application/json", `{"input": "look"}`)
	rec := doRequest(t, in.Router(), http.MethodPost, "/commands", "application/json", `{"input": "drop 2 oil flask"}`)

	var resp QueuedModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(QueuedModel{Input: "drop 2 oil flask", Pending: 2}, resp)
}

func Test_Inbox_PostCommand_Full(t *testing.T) {
	assert := assert.New(t)
	in := New(Options{Limit: 1})

	first := doRequest(t, in.Router(), http.MethodPost, "/commands", "application/json", `{"input": "look"}`)
	second := doRequest(t, in.Router(), http.MethodPost, "/commands", "application/json", `{"input": "hold"}`)

	assert.Equal(http.StatusAccepted, first.Code)
	assert.Equal(http.StatusServiceUnavailable, second.Code)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &errResp))
	assert.Equal(http.StatusServiceUnavailable, errResp.Status)
	assert.NotEmpty(errResp.Error)

	assert.Equal([]string{"look"}, in.Drain())
}

func Test_Inbox_GetStatus(t *testing.T) {
	assert := assert.New(t)
	in := New(Options{Limit: 5})
	_, err := in.Add("look")
	require.NoError(t, err)

	rec := doRequest(t, in.Router(), http.MethodGet, "/status", "", "")

	assert.Equal(http.StatusOK, rec.Code)
	var resp StatusModel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(1, resp.Pending)
	assert.Equal(5, resp.Limit)
	assert.NotEmpty(resp.Version)
}

func Test_Inbox_Routing(t *testing.T) {
	testCases := []struct {
		name         string
		method       string
		path         string
		expectStatus int
	}{
		{name: "unknown path", method: http.MethodGet, path: "/games", expectStatus: http.StatusNotFound},
		{name: "wrong method on commands", method: http.MethodGet, path: "/commands", expectStatus: http.StatusMethodNotAllowed},
		{name: "wrong method on status", method: http.MethodDelete, path: "/status", expectStatus: http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			in := New(Options{})

			rec := doRequest(t, in.Router(), tc.method, tc.path, "", "")

			assert.Equal(tc.expectStatus, rec.Code)
		})
	}
}

func Test_Inbox_AddAndDrain(t *testing.T) {
	assert := assert.New(t)
	in := New(Options{Limit: 2})

	n, err := in.Add("walk east")
	assert.NoError(err)
	assert.Equal(1, n)

	n, err = in.Add("walk west")
	assert.NoError(err)
	assert.Equal(2, n)

	_, err = in.Add("walk south")
	assert.ErrorIs(err, ErrInboxFull)
	assert.Equal(2, in.Len())

	assert.Equal([]string{"walk east", "walk west"}, in.Drain())
	assert.Nil(in.Drain())
	assert.Equal(0, in.Len())
}

func Test_Inbox_RequireAuth(t *testing.T) {
	secret := []byte("correct horse battery staple")

	goodToken, err := GenerateToken(secret, "bot", time.Hour)
	require.NoError(t, err)
	otherToken, err := GenerateToken([]byte("some other secret"), "bot", time.Hour)
	require.NoError(t, err)
	expiredToken, err := jwt.NewWithClaims(jwt.SigningMethodHS512, &jwt.RegisteredClaims{
		Issuer:    "cmdq",
		Subject:   "bot",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString(secret)
	require.NoError(t, err)

	testCases := []struct {
		name         string
		authHeader   string
		method       string
		path         string
		expectStatus int
		expectLines  []string
	}{
		{
			name:         "valid token",
			authHeader:   "Bearer " + goodToken,
			method:       http.MethodPost,
			path:         "/commands",
			expectStatus: http.StatusAccepted,
			expectLines:  []string{"walk north"},
		},
		{
			name:         "scheme is case-insensitive",
			authHeader:   "bearer " + goodToken,
			method:       http.MethodPost,
			path:         "/commands",
			expectStatus: http.StatusAccepted,
			expectLines:  []string{"walk north"},
		},
		{
			name:         "no header",
			method:       http.MethodPost,
			path:         "/commands",
			expectStatus: http.StatusUnauthorized,
		},
		{
			name:         "not a bearer header",
			authHeader:   "Basic Ym90OnBhc3N3b3Jk",
			method:       http.MethodPost,
			path:         "/commands",
			expectStatus: http.StatusUnauthorized,
		},
		{
			name:         "garbage token",
			authHeader:   "Bearer not-a-jwt",
			method:       http.MethodPost,
			path:         "/commands",
			expectStatus: http.StatusUnauthorized,
		},
		{
			name:         "signed with another secret",
			authHeader:   "Bearer " + otherToken,
			method:       http.MethodPost,
			path:         "/commands",
			expectStatus: http.StatusUnauthorized,
		},
		{
			name:         "expired token",
			authHeader:   "Bearer " + expiredToken,
			method:       http.MethodPost,
			path:         "/commands",
			expectStatus: http.StatusUnauthorized,
		},
		{
			name:         "status also needs a token",
			method:       http.MethodGet,
			path:         "/status",
			expectStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			in := New(Options{Secret: secret})

			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(`{"input": "walk north"}`))
			req.Header.Set("Content-Type", "application/json")
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			in.Router().ServeHTTP(rec, req)

			assert.Equal(tc.expectStatus, rec.Code)
			assert.Equal(tc.expectLines, in.Drain())
			if tc.expectStatus == http.StatusUnauthorized {
				assert.Contains(rec.Header().Get("WWW-Authenticate"), "Bearer")
			}
		})
	}
}

func Test_GenerateToken(t *testing.T) {
	assert := assert.New(t)

	_, err := GenerateToken(nil, "bot", time.Hour)
	assert.Error(err)

	tok, err := GenerateToken([]byte("secret"), "bot", 0)
	if !assert.NoError(err) {
		return
	}
	subj, err := validateToken(tok, []byte("secret"))
	assert.NoError(err)
	assert.Equal("bot", subj)
}
