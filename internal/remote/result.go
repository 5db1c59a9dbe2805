package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrorResponse is the body of every error result.
type ErrorResponse struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// Result is the outcome of an endpoint, ready to be written as an HTTP
// response. InternalMsg is logged but never sent to the client.
type Result struct {
	Status      int
	IsErr       bool
	IsJSON      bool
	InternalMsg string

	resp interface{}
	hdrs [][2]string

	// set by calling PrepareMarshaledResponse.
	respJSONBytes []byte
}

func internalMsgOrDefault(def string, internalMsg []interface{}) (string, []interface{}) {
	if len(internalMsg) >= 1 {
		return internalMsg[0].(string), internalMsg[1:]
	}
	return def, nil
}

// OK returns a Result containing an HTTP-200 along with a more detailed
// message (if desired; if none is provided it defaults to a generic one) that
// is not displayed to the client.
func OK(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := internalMsgOrDefault("OK", internalMsg)
	return Response(http.StatusOK, respObj, msgFmt, msgArgs...)
}

// Accepted returns a Result containing an HTTP-202. It is used when something
// has been taken in but will only be acted on later.
func Accepted(respObj interface{}, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := internalMsgOrDefault("accepted", internalMsg)
	return Response(http.StatusAccepted, respObj, msgFmt, msgArgs...)
}

// BadRequest returns a Result containing an HTTP-400 along with a more
// detailed message (if desired; if none is provided it defaults to a generic
// one) that is not displayed to the client.
func BadRequest(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := internalMsgOrDefault("bad request", internalMsg)
	return Err(http.StatusBadRequest, userMsg, msgFmt, msgArgs...)
}

// NotFound returns a Result containing an HTTP-404.
func NotFound(internalMsg ...interface{}) Result {
	msgFmt, msgArgs := internalMsgOrDefault("not found", internalMsg)
	return Err(http.StatusNotFound, "The requested resource was not found", msgFmt, msgArgs...)
}

// MethodNotAllowed returns a Result containing an HTTP-405.
func MethodNotAllowed(req *http.Request, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := internalMsgOrDefault("method not allowed", internalMsg)
	userMsg := fmt.Sprintf("Method %s is not allowed for %s", req.Method, req.URL.Path)
	return Err(http.StatusMethodNotAllowed, userMsg, msgFmt, msgArgs...)
}

// Unauthorized returns a Result containing an HTTP-401 along with the
// WWW-Authenticate header that tells the client to send a bearer token.
func Unauthorized(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := internalMsgOrDefault("unauthorized", internalMsg)
	if userMsg == "" {
		userMsg = "You are not authorized to do that"
	}
	return Err(http.StatusUnauthorized, userMsg, msgFmt, msgArgs...).
		WithHeader("WWW-Authenticate", `Bearer realm="cmdq", charset="utf-8"`)
}

// ServiceUnavailable returns a Result containing an HTTP-503, used when the
// inbox cannot take any more commands until the game catches up.
func ServiceUnavailable(userMsg string, internalMsg ...interface{}) Result {
	msgFmt, msgArgs := internalMsgOrDefault("service unavailable", internalMsg)
	return Err(http.StatusServiceUnavailable, userMsg, msgFmt, msgArgs...)
}

// InternalServerError returns a Result containing an HTTP-500 along with a
// more detailed message that is not displayed to the client.
func InternalServerError(internalMsg ...interface{}) Result {
	msgFmt, msgArgs := internalMsgOrDefault("internal server error", internalMsg)
	return Err(http.StatusInternalServerError, "An internal server error occurred", msgFmt, msgArgs...)
}

// Response creates a non-error JSON Result. If status is
// http.StatusNoContent, respObj will not be read and may be nil. Otherwise,
// respObj MUST NOT be nil.
func Response(status int, respObj interface{}, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        respObj,
	}
}

// Err creates an error JSON Result whose body is an ErrorResponse.
func Err(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsJSON:      true,
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp: ErrorResponse{
			Error:  userMsg,
			Status: status,
		},
	}
}

// TextErr is like Err but it avoids JSON encoding of any kind and writes the
// output as plain text.
func TextErr(status int, userMsg, internalMsg string, v ...interface{}) Result {
	return Result{
		IsErr:       true,
		Status:      status,
		InternalMsg: fmt.Sprintf(internalMsg, v...),
		resp:        userMsg,
	}
}

// PrepareMarshaledResponse sets the respJSONBytes to the marshaled version of
// the response if required. If required, and there is a problem marshaling, an
// error is returned. If not required, nil error is always returned.
func (r *Result) PrepareMarshaledResponse() error {
	if r.respJSONBytes != nil {
		return nil
	}

	if r.IsJSON && r.Status != http.StatusNoContent {
		var err error
		r.respJSONBytes, err = json.Marshal(r.resp)
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteResponse writes r to w. It panics if r was never populated or cannot
// be marshaled.
func (r Result) WriteResponse(w http.ResponseWriter) {
	if r.Status == 0 {
		panic("result not populated")
	}

	err := r.PrepareMarshaledResponse()
	if err != nil {
		panic(fmt.Sprintf("could not marshal response: %s", err.Error()))
	}

	var respBytes []byte

	if r.IsJSON {
		w.Header().Set("Content-Type", "application/json")
		respBytes = r.respJSONBytes
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if r.Status != http.StatusNoContent {
			respBytes = []byte(fmt.Sprintf("%v", r.resp))
		}
	}
	w.Header().Set("X-Content-Type-Options", "nosniff")
	for _, h := range r.hdrs {
		w.Header().Set(h[0], h[1])
	}

	w.WriteHeader(r.Status)

	if r.Status != http.StatusNoContent {
		w.Write(respBytes)
	}
}

// WithHeader returns a copy of r that also sets the named header when it is
// written.
func (r Result) WithHeader(name, val string) Result {
	erCopy := r
	erCopy.hdrs = append(append([][2]string(nil), r.hdrs...), [2]string{name, val})
	return erCopy
}
