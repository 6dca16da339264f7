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

package cmd

import (
	"github.com/nuts-foundation/nuts-wallet/wallet"
	"github.com/spf13/pflag"
)

// FlagSet contains flags relevant for the wallet engine
func FlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("wallet", pflag.ContinueOnError)
	defs := wallet.DefaultConfig()
	flagSet.String("wallet.profile", defs.Profile, "Default profile of issuance and presentation workflows (standard, ebsi, dome).")
	flagSet.Duration("wallet.pin.timeout", defs.PIN.Timeout, "How long an issuance waits for the user to enter a PIN.")
	flagSet.Duration("wallet.deferred.delay", defs.Deferred.Delay, "How long the ebsi profile waits before polling a deferred credential.")
	flagSet.Uint("wallet.deferred.attempts", defs.Deferred.Attempts, "How often the ebsi profile polls a deferred credential before giving up.")
	flagSet.String("wallet.trustedissuerlist", defs.TrustedIssuerList, "Base URI of the trusted issuers list, which is consulted for sensitive scopes.")
	flagSet.String("wallet.trustedissuerfile", defs.TrustedIssuerFile, "YAML file with trusted issuers per credential type, used when wallet.trustedissuerlist is not set.")
	flagSet.StringSlice("wallet.sensitivescopes", defs.SensitiveScopes, "Scopes for which the verifier must be a trusted issuer of the requested credential types.")
	return flagSet
}
