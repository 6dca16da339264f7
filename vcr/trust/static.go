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

package trust

import (
	"context"
	"errors"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ErrNoFilename is returned when trust actions are performed but no file for storing those is specified.
var ErrNoFilename = errors.New("no filename specified")

var _ IssuerList = (*StaticList)(nil)

// StaticList holds the trusted issuers per credential type in a YAML file.
// It is used when no remote trusted issuers list is configured.
type StaticList struct {
	filename       string
	issuersPerType map[string][]string
	mutex          sync.RWMutex
}

// NewStaticList returns a StaticList that loads from and saves to the given file.
func NewStaticList(filename string) *StaticList {
	return &StaticList{
		filename:       filename,
		issuersPerType: map[string][]string{},
	}
}

// Load the trusted issuers per credential type from file
func (s *StaticList) Load() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.filename == "" {
		return ErrNoFilename
	}

	// ignore if not exists
	data, err := os.ReadFile(s.filename)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, &s.issuersPerType)
}

func (s *StaticList) save() error {
	if s.filename == "" {
		return ErrNoFilename
	}

	data, err := yaml.Marshal(s.issuersPerType)
	if err != nil {
		return err
	}

	return os.WriteFile(s.filename, data, 0644)
}

// Capabilities returns an open-ended capability for every credential type the issuer is trusted for.
func (s *StaticList) Capabilities(_ context.Context, issuerID string) ([]CredentialCapability, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	var result []CredentialCapability
	for credentialType, issuers := range s.issuersPerType {
		for _, issuer := range issuers {
			if issuer == issuerID {
				result = append(result, CredentialCapability{CredentialsType: credentialType})
			}
		}
	}
	if len(result) == 0 {
		return nil, ErrIssuerNotAuthorized
	}
	return result, nil
}

// IsTrusted returns true when the given issuer is in the trusted issuers list of the given credentialType
func (s *StaticList) IsTrusted(credentialType string, issuer string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.isTrusted(credentialType, issuer)
}

func (s *StaticList) isTrusted(credentialType string, issuer string) bool {
	for _, i := range s.issuersPerType[credentialType] {
		if i == issuer {
			return true
		}
	}
	return false
}

// AddTrust adds trust in a specific Issuer for a credential type.
// It returns an error if the Save fails
func (s *StaticList) AddTrust(credentialType string, issuer string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.isTrusted(credentialType, issuer) {
		return nil
	}
	s.issuersPerType[credentialType] = append(s.issuersPerType[credentialType], issuer)
	return s.save()
}

// RemoveTrust removes trust in a specific Issuer for a credential type.
// It returns an error if the Save fails
func (s *StaticList) RemoveTrust(credentialType string, issuer string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.isTrusted(credentialType, issuer) {
		return nil
	}
	var issuerList []string
	for _, i := range s.issuersPerType[credentialType] {
		if i != issuer {
			issuerList = append(issuerList, i)
		}
	}
	s.issuersPerType[credentialType] = issuerList
	return s.save()
}
