package handlers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"

	"budget-tracker/internal/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newJSONContext builds a context for a handler call. A nil userID leaves the request
// unauthenticated; a string body is sent as-is so malformed JSON can be tested.
func newJSONContext(e *echo.Echo, method, target string, body interface{}, userID *uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set(UserIDContextKey, *userID)
	}
	return c, rec
}

// requireAppError asserts that a handler returned a tagged error with the given code.
func requireAppError(s *suite.Suite, err error, code errors.ErrorCode) *errors.AppError {
	s.Require().Error(err)
	appErr, ok := errors.AsAppError(err)
	s.Require().True(ok, "expected *errors.AppError, got %T: %v", err, err)
	s.Equal(code, appErr.Code)
	return appErr
}

func decodeBody(s *suite.Suite, rec *httptest.ResponseRecorder, target interface{}) {
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), target), rec.Body.String())
}
