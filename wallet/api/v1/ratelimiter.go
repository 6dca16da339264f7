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
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nuts-foundation/nuts-wallet/core"
	"golang.org/x/time/rate"
)

const (
	// pinAttemptInterval is the time it takes to earn one more PIN attempt.
	pinAttemptInterval = 10 * time.Second
	// pinAttemptBurst is the number of PIN attempts a user can make at once.
	pinAttemptBurst = 5
)

// newPINRateLimiter limits the PIN submissions per user, so a PIN can't be guessed by trying all of them.
// It must run after the middleware that resolves the caller.
func newPINRateLimiter(interval time.Duration, burst int) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			userID, _ := ctx.Get(core.UserContextKey).(string)
			return userID, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return &echo.HTTPError{
				Code:     middleware.ErrExtractorError.Code,
				Message:  middleware.ErrExtractorError.Message,
				Internal: err,
			}
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return &echo.HTTPError{
				Code:     middleware.ErrRateLimitExceeded.Code,
				Message:  middleware.ErrRateLimitExceeded.Message,
				Internal: err,
			}
		},
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Every(interval),
			Burst:     burst,
			ExpiresIn: time.Duration(burst) * interval,
		}),
	})
}
