// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/accounts/internal/platform/apperr"
	"github.com/taibuivan/accounts/internal/platform/constants"
	"github.com/taibuivan/accounts/internal/platform/middleware"
	requestutil "github.com/taibuivan/accounts/internal/platform/request"
	"github.com/taibuivan/accounts/internal/platform/respond"
	"github.com/taibuivan/accounts/internal/platform/sec"
)

// # Definitions & Constructors

// Handler implements the account HTTP endpoints.
//
// Forms are decoded into untyped maps and handed to the [Service] unchanged;
// validation happens there. The refresh token travels only in an HttpOnly cookie.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the account routes.
//
// # Endpoints
//   - POST /signup          : Creates an unverified account.
//   - POST /verify          : Consumes a verification link.
//   - POST /verify/resend   : Mails a new verification link.
//   - POST /forgot-password : Mails a password reset link.
//   - POST /reset-password  : Sets a new password through a reset link.
//   - POST /login           : Opens a session.
//   - POST /refresh         : Rotates the session cookie.
//   - POST /logout          : Ends the session.
//   - GET  /me              : Returns the authenticated account.
//   - GET  /users/{id}      : Returns any account (admin and above).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.signup)
	router.Post("/verify", handler.verify)
	router.Post("/verify/resend", handler.resendVerification)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireRole(sec.RoleAdmin))
		r.Get("/users/{id}", handler.lookup)
	})

	return router
}

/*
Signup registers a new account.

POST /api/v1/account/signup

Response:
  - 201: User: Created account
  - 400: Field errors with previous values
  - 409: Email already in use
  - 503: Verification mail could not be sent
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	form, err := requestutil.DecodeForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Signup(request.Context(), form)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
Verify confirms email ownership.

POST /api/v1/account/verify

Request:
  - Body: {token} or query ?token=

Response:
  - 200: {message, user}
  - 401: Invalid, expired or already used link
*/
func (handler *Handler) verify(writer http.ResponseWriter, request *http.Request) {
	form, err := requestutil.DecodeForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.VerifyAccount(request.Context(), takeToken(request, form))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldMessage: "Email verified successfully",
		FieldUser:    user,
	})
}

// resendVerification always answers with the same message for valid input.
func (handler *Handler) resendVerification(writer http.ResponseWriter, request *http.Request) {
	form, err := requestutil.DecodeForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.ResendVerification(request.Context(), form); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email needs verification, a new link has been sent.",
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/account/forgot-password

Response:
  - 200: Generic message, whether or not the email is registered
  - 400: Field errors
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	form, err := requestutil.DecodeForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RequestPasswordReset(request.Context(), form); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/account/reset-password

Request:
  - Body: {token, password, confirmPassword} (token may also come from ?token=)

Response:
  - 200: Password updated, every session revoked
  - 400: Field errors
  - 401: Invalid link or unknown user
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	form, err := requestutil.DecodeForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	token := takeToken(request, form)
	if err := handler.service.CompletePasswordReset(request.Context(), token, form); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated. Log in with your new password.",
	})
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/account/login

Response:
  - 200: {accessToken, tokenType, expiresIn, user} plus the session cookie
  - 400: Field errors
  - 401: Invalid email or password
  - 403: Account not verified
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	form, err := requestutil.DecodeForm(writer, request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), form, clientMeta(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookie(writer, session)
	respond.OK(writer, sessionPayload(session))
}

/*
Refresh rotates the session held in the cookie.

POST /api/v1/account/refresh

Response:
  - 200: {accessToken, tokenType, expiresIn, user} plus a new session cookie
  - 401: Missing, invalid or superseded session
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized(sec.ErrNoToken.Error()))
		return
	}

	session, err := handler.service.Refresh(request.Context(), cookie.Value, clientMeta(request))
	if err != nil {
		clearSessionCookie(writer)
		respond.Error(writer, request, err)
		return
	}

	setSessionCookie(writer, session)
	respond.OK(writer, sessionPayload(session))
}

// logout clears the cookie even when the session is already gone.
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil {
		if err := handler.service.Logout(request.Context(), cookie.Value); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	clearSessionCookie(writer)
	respond.NoContent(writer)
}

// me returns the account of the access token bearer.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.Profile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Lookup returns an account by ID for support staff.

GET /api/v1/account/users/{id}

Response:
  - 200: User
  - 401: Not authenticated
  - 403: Role below admin
  - 404: Unknown account
*/
func (handler *Handler) lookup(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.service.Profile(request.Context(), chi.URLParam(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// # Helpers

// takeToken removes the token from a decoded form, falling back to ?token=.
func takeToken(request *http.Request, form map[string]any) string {
	if raw, ok := form[FieldToken]; ok {
		delete(form, FieldToken)
		if token, ok := raw.(string); ok && strings.TrimSpace(token) != "" {
			return token
		}
	}
	return request.URL.Query().Get(FieldToken)
}

func clientMeta(request *http.Request) ClientMeta {
	return ClientMeta{
		UserAgent: request.UserAgent(),
		IPAddress: middleware.RealIP(request),
	}
}

func sessionPayload(session *LoginSession) map[string]any {
	return map[string]any{
		FieldAccessToken: session.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   int(sec.IntentAccess.TTL().Seconds()),
		FieldUser:        session.User,
	}
}

func setSessionCookie(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    session.RefreshToken,
		Path:     constants.SessionCookiePath,
		Expires:  session.RefreshExpiresAt,
		MaxAge:   int(sec.RefreshTokenTTL.Seconds()),
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
