/*
 * Copyright (C) 2025 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/nuts-foundation/nuts-wallet/auth/client/iam"
	"github.com/nuts-foundation/nuts-wallet/auth/oauth"
	"github.com/nuts-foundation/nuts-wallet/core"
	"github.com/nuts-foundation/nuts-wallet/storage/session"
	"github.com/nuts-foundation/nuts-wallet/vcr/codec"
	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
	"github.com/nuts-foundation/nuts-wallet/vcr/trust"
	"github.com/nuts-foundation/nuts-wallet/vcr/types"
	"github.com/nuts-foundation/nuts-wallet/vdr/didkey"
	"github.com/nuts-foundation/nuts-wallet/wallet"
)

const basePath = "/internal/wallet/v1"

// identityContextKey holds the oauth.Identity of the caller in the echo context.
const identityContextKey = "!!Identity"

var _ core.Routable = (*Wrapper)(nil)
var _ core.ErrorStatusCodeResolver = (*Wrapper)(nil)

// Wrapper exposes the wallet to its users over HTTP.
type Wrapper struct {
	Wallet wallet.Service
}

// Routes registers the handlers to the echo router
func (w *Wrapper) Routes(router core.EchoRouter) {
	pinRateLimiter := newPINRateLimiter(pinAttemptInterval, pinAttemptBurst)
	router.POST(basePath+"/qr", w.Scan, w.middleware("Scan"))
	router.POST(basePath+"/presentations/:id", w.Respond, w.middleware("Respond"))
	router.GET(basePath+"/pin", w.GetPINStatus, w.middleware("GetPINStatus"))
	router.POST(basePath+"/pin", w.SubmitPIN, w.middleware("SubmitPIN"), pinRateLimiter)
	router.GET(basePath+"/credentials", w.ListCredentials, w.middleware("ListCredentials"))
	router.POST(basePath+"/credentials/:id/deferred", w.PollDeferredCredential, w.middleware("PollDeferredCredential"))
}

// middleware sets the context for error handling and resolves the caller from the identity token in the Authorization header.
func (w *Wrapper) middleware(operationID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(core.OperationIDContextKey, operationID)
			ctx.Set(core.ModuleNameContextKey, wallet.ModuleName)
			ctx.Set(core.StatusCodeResolverContextKey, w)
			identity, err := oauth.ParseIdentityToken(ctx.Request().Header.Get("Authorization"))
			if err != nil {
				return err
			}
			ctx.Set(core.UserContextKey, identity.UserID)
			ctx.Set(identityContextKey, *identity)
			return next(ctx)
		}
	}
}

// ResolveStatusCode maps errors returned by this API to specific HTTP status codes.
func (w *Wrapper) ResolveStatusCode(err error) int {
	return core.ResolveStatusCode(err, map[error]int{
		oauth.ErrInvalidIdentityToken:   http.StatusUnauthorized,
		wallet.ErrUnsupportedPayload:    http.StatusBadRequest,
		wallet.ErrNoSession:             http.StatusBadRequest,
		oauth.ErrInvalidRequest:         http.StatusBadRequest,
		codec.ErrParse:                  http.StatusBadRequest,
		codec.ErrUnsupportedFormat:      http.StatusBadRequest,
		didkey.ErrInvalidKeyFormat:      http.StatusBadRequest,
		didkey.ErrSignatureInvalid:      http.StatusBadRequest,
		didkey.ErrMalformedToken:        http.StatusBadRequest,
		holder.ErrClientIDMismatch:      http.StatusBadRequest,
		holder.ErrVPFormatsNotSupported: http.StatusBadRequest,
		holder.ErrInvalidPIN:            http.StatusBadRequest,
		trust.ErrIssuerNotAuthorized:    http.StatusForbidden,
		holder.ErrPresentationNotFound:  http.StatusNotFound,
		types.ErrNotFound:               http.StatusNotFound,
		types.ErrDeferredNotFound:       http.StatusNotFound,
		holder.ErrPinTimeout:            http.StatusRequestTimeout,
		session.ErrNoSubscriber:         http.StatusConflict,
		holder.ErrNoMatchingCredentials: http.StatusPreconditionFailed,
		holder.ErrPinChannelUnavailable: http.StatusPreconditionFailed,
		iam.ErrAttestationClient:        http.StatusBadGateway,
		iam.ErrAttestationServer:        http.StatusBadGateway,
	})
}

// Scan runs the workflow of a scanned QR code or followed link.
func (w *Wrapper) Scan(ctx echo.Context) error {
	var request ScanRequest
	if err := ctx.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	if strings.TrimSpace(request.Payload) == "" {
		return core.InvalidInputError("missing payload")
	}
	profile, err := holder.ParseProfile(request.Profile)
	if err != nil {
		return core.InvalidInputError("%w", err)
	}
	result, err := w.Wallet.Dispatch(ctx.Request().Context(), wallet.DispatchRequest{
		Identity:    identity(ctx),
		Payload:     request.Payload,
		Profile:     profile,
		BearerToken: request.BearerToken,
		Select:      request.Select,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, result)
}

// Respond presents the selected credentials of a prepared presentation.
func (w *Wrapper) Respond(ctx echo.Context) error {
	var request RespondRequest
	if err := ctx.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	result, err := w.Wallet.Respond(ctx.Request().Context(), identity(ctx), ctx.Param("id"), request.CredentialIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, result)
}

// GetPINStatus tells the user whether an issuance waits for a PIN.
func (w *Wrapper) GetPINStatus(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, PINStatus{Requested: w.Wallet.PINRequested(identity(ctx))})
}

// SubmitPIN delivers the PIN the user entered to the waiting issuance.
func (w *Wrapper) SubmitPIN(ctx echo.Context) error {
	var request PINRequest
	if err := ctx.Bind(&request); err != nil {
		return core.InvalidInputError("invalid request body: %w", err)
	}
	if request.PIN == "" {
		return core.InvalidInputError("missing pin")
	}
	if err := w.Wallet.SubmitPIN(ctx.Request().Context(), identity(ctx), request.PIN); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// ListCredentials returns the credentials of the user.
func (w *Wrapper) ListCredentials(ctx echo.Context) error {
	credentials, err := w.Wallet.Credentials(ctx.Request().Context(), identity(ctx).UserID)
	if err != nil {
		return err
	}
	if credentials == nil {
		credentials = []types.StoredCredential{}
	}
	return ctx.JSON(http.StatusOK, credentials)
}

// PollDeferredCredential asks the issuer for a deferred credential. A credential that is still pending yields 202 Accepted.
func (w *Wrapper) PollDeferredCredential(ctx echo.Context) error {
	credential, err := w.Wallet.PollDeferredCredential(ctx.Request().Context(), identity(ctx).UserID, ctx.Param("id"))
	if errors.Is(err, holder.ErrCredentialNotAvailable) {
		return ctx.NoContent(http.StatusAccepted)
	}
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, credential)
}

func identity(ctx echo.Context) oauth.Identity {
	result, _ := ctx.Get(identityContextKey).(oauth.Identity)
	return result
}
