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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Test_ServerLifecycle tests the lifecycle of the wallet:
// - It starts the wallet
// - Waits for the /status endpoint to return HTTP 200, indicating it started properly
// - Sends SIGINT signal
// - Waits for the main function to return
func Test_ServerLifecycle(t *testing.T) {
	testDirectory := t.TempDir()

	runningCtx, stoppedCallback := context.WithCancel(context.Background())
	address := fmt.Sprintf("localhost:%d", freeTCPPort(t))
	startCtx := startServer(t, testDirectory, address, stoppedCallback)

	// Wait for the wallet to start
	<-startCtx.Done()

	if errors.Is(startCtx.Err(), context.Canceled) {
		t.Log("Wallet successfully started, shutting down...")
		_ = syscall.Kill(syscall.Getpid(), syscall.SIGINT)
		<-runningCtx.Done()
		t.Log("Wallet shut down successfully.")
	} else {
		t.Fatalf("Process didn't start before the time-out expired: %v", startCtx.Err())
	}
}

func startServer(t *testing.T, testDirectory string, address string, exitCallback func()) context.Context {
	config := fmt.Sprintf("datadir: %s\nhttp:\n  address: %s\nwallet:\n  profile: ebsi\n", testDirectory, address)
	configFile := filepath.Join(testDirectory, "wallet.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(config), 0644))

	os.Args = []string{"wallet", "server", "--configfile", configFile}
	timeout := 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	go func() {
		// Wait for the wallet to start, until the given timeout. Check every 100ms
		interval := 100 * time.Millisecond
		attempts := int(timeout / interval)
		statusURL := fmt.Sprintf("http://%s/status", address)
		for i := 0; i < attempts; i++ {
			if isHttpRunning(statusURL) {
				cancel()
				break
			}
			time.Sleep(interval)
		}
	}()

	go func() {
		main()
		exitCallback()
	}()

	return ctx
}

func isHttpRunning(address string) bool {
	response, err := http.Get(address)
	if err != nil {
		return false
	}
	defer response.Body.Close()
	_, _ = io.ReadAll(response.Body)
	return response.StatusCode == http.StatusOK
}

func freeTCPPort(t *testing.T) int {
	listener, err := net.Listen("tcp", "localhost:0")
	require.NoError(t, err)
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}
