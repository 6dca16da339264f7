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

package wallet

import (
	"strings"
	"time"

	"github.com/nuts-foundation/nuts-wallet/vcr/holder"
)

// Config holds the settings of the wallet engine.
type Config struct {
	// Profile is the default profile of workflows that don't specify one.
	Profile string `koanf:"profile"`
	// PIN holds the settings of the PIN channel.
	PIN PINConfig `koanf:"pin"`
	// Deferred holds the settings for resolving deferred credentials under the EBSI profile.
	Deferred DeferredConfig `koanf:"deferred"`
	// TrustedIssuerList is the base URI of the remote trusted issuers list.
	TrustedIssuerList string `koanf:"trustedissuerlist"`
	// TrustedIssuerFile is a YAML file with trusted issuers per credential type, used when no remote list is configured.
	TrustedIssuerFile string `koanf:"trustedissuerfile"`
	// SensitiveScopes are scopes for which the verifier must be a trusted issuer of the requested credential types.
	SensitiveScopes []string `koanf:"sensitivescopes"`
	// ScopeTypes maps a scope to the credential types it requests.
	ScopeTypes map[string][]string `koanf:"scopetypes"`
}

// PINConfig holds the settings of the PIN channel.
type PINConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

// DeferredConfig holds the settings for resolving deferred credentials.
type DeferredConfig struct {
	Delay    time.Duration `koanf:"delay"`
	Attempts uint          `koanf:"attempts"`
}

// DefaultConfig returns the default wallet settings.
func DefaultConfig() Config {
	defs := holder.DefaultConfig()
	return Config{
		Profile:  string(defs.Profile),
		PIN:      PINConfig{Timeout: defs.PINTimeout},
		Deferred: DeferredConfig{Delay: defs.DeferredDelay, Attempts: defs.DeferredAttempts},
	}
}

// holderConfig converts the engine settings to workflow settings.
func (c Config) holderConfig() (holder.Config, error) {
	profile, err := holder.ParseProfile(c.Profile)
	if err != nil {
		return holder.Config{}, err
	}
	sensitiveScopes := make([]string, 0, len(c.SensitiveScopes))
	for _, scope := range c.SensitiveScopes {
		if scope = strings.TrimSpace(scope); scope != "" {
			sensitiveScopes = append(sensitiveScopes, scope)
		}
	}
	return holder.Config{
		Profile:          profile,
		PINTimeout:       c.PIN.Timeout,
		DeferredDelay:    c.Deferred.Delay,
		DeferredAttempts: c.Deferred.Attempts,
		SensitiveScopes:  sensitiveScopes,
		ScopeTypes:       c.ScopeTypes,
	}, nil
}
