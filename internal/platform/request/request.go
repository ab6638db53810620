// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away body decoding and context lookups, ensuring consistent error
handling and type safety across handlers.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/taibuivan/accounts/internal/platform/apperr"
	"github.com/taibuivan/accounts/internal/platform/constants"
	"github.com/taibuivan/accounts/internal/platform/ctxutil"
	"github.com/taibuivan/accounts/internal/platform/sec"
	"github.com/taibuivan/accounts/internal/platform/validate"
)

// ErrEmptyBody is returned by [DecodeJSON] when the request has no body at all.
var ErrEmptyBody = apperr.ValidationError("Request body is empty")

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: any (Pointer to the destination value)

Returns:
  - error: ErrEmptyBody, validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target any) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
DecodeForm reads a submitted form into an untyped map.

JSON bodies and url-encoded bodies are both accepted. An empty body or a JSON
null yields a nil map, which account actions treat as "no data provided".
*/
func DecodeForm(writer http.ResponseWriter, request *http.Request) (map[string]any, error) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxRequestBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		return decodeURLEncoded(request)
	}

	var form map[string]any
	if err := DecodeJSON(request, &form); err != nil {
		if errors.Is(err, ErrEmptyBody) {
			return nil, nil
		}
		return nil, err
	}
	return form, nil
}

func decodeURLEncoded(request *http.Request) (map[string]any, error) {
	if err := request.ParseForm(); err != nil {
		return nil, apperr.ValidationError("Invalid form payload")
	}
	if len(request.PostForm) == 0 {
		return nil, nil
	}

	form := make(map[string]any, len(request.PostForm))
	for key, values := range request.PostForm {
		if len(values) == 1 {
			form[key] = values[0]
			continue
		}
		items := make([]any, len(values))
		for i, value := range values {
			items[i] = value
		}
		form[key] = items
	}
	return form, nil
}

/*
BearerToken extracts the token from an "Authorization: Bearer <token>" header.
It returns "" when the header is missing or malformed.
*/
func BearerToken(request *http.Request) string {
	scheme, token, found := strings.Cut(request.Header.Get(constants.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.Claims {
	return ctxutil.GetAuthUser(request.Context())
}

/*
RequiredClaims ensures the request is authenticated and returns the user claims.

Returns:
  - *sec.Claims: The authenticated user claims
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredClaims(request *http.Request) (*sec.Claims, error) {

	// Get user claims
	claims := ctxutil.GetAuthUser(request.Context())

	// If the user is not authenticated, return an error
	if claims == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return claims, nil
}

/*
RequiredUserID returns the User ID of the currently logged-in user.

Returns:
  - string: User UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredUserID(request *http.Request) (string, error) {

	// Get user claims
	claims, err := RequiredClaims(request)

	// If the user is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}
