package supabase

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
)

// APIError is a non-2xx response from any of the backend services.
// Status is zero for PostgREST errors, which only carry a code.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func (e *APIError) Error() string {
	switch {
	case e.Status == 0:
		return fmt.Sprintf("supabase: %s: %s", e.Code, e.Message)
	case e.Code != "":
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, e.Message)
}

// errorBody covers both the PostgREST and the GoTrue error shapes.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Message          string          `json:"message"`
	Msg              string          `json:"msg"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Hint             string          `json:"hint"`
}

func parseError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		apiErr.Message = http.StatusText(status)
		if len(raw) > 0 {
			apiErr.Message = string(raw)
		}
		return apiErr
	}

	apiErr.Code = body.ErrorCode
	if apiErr.Code == "" && len(body.Code) > 0 {
		var s string
		if json.Unmarshal(body.Code, &s) == nil {
			apiErr.Code = s
		}
	}
	if apiErr.Code == "" {
		apiErr.Code = body.Error
	}
	for _, m := range []string{body.Message, body.Msg, body.ErrorDescription, body.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	apiErr.Hint = body.Hint
	return apiErr
}

var (
	authErrRe = regexp.MustCompile(`(?s)^response status code (\d+)(?:: (.*))?$`)
	restErrRe = regexp.MustCompile(`(?s)^\(([^)]*)\) (.*)$`)
)

// authError lifts the status and body out of a gotrue-go error.
func authError(err error) error {
	m := authErrRe.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	status, _ := strconv.Atoi(m[1])
	return parseError(status, []byte(m[2]))
}

// restError lifts the code and message out of a postgrest-go error.
func restError(err error) error {
	m := restErrRe.FindStringSubmatch(err.Error())
	if m == nil {
		return err
	}
	return &APIError{Code: m[1], Message: m[2]}
}

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	ok := errors.As(err, &apiErr)
	return apiErr, ok
}
