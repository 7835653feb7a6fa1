// Copyright 2024 The numastress Authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPidfileCleansUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numastress.pid")

	// the pidfile must exist while fn runs and be gone afterwards, on
	// every exit code
	for _, code := range []int{exitSuccess, exitFailure, exitSkipped} {
		got := withPidfile(path, func() int {
			_, err := os.Stat(path)
			require.NoError(t, err, "pidfile missing during the run")
			return code
		})
		assert.Equal(t, code, got)

		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err), "pidfile left behind after the run")
	}
}

func TestWithPidfileExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numastress.pid")
	require.NoError(t, os.WriteFile(path, []byte("12345\n"), 0644))

	ran := false
	got := withPidfile(path, func() int {
		ran = true
		return exitSuccess
	})
	assert.Equal(t, exitFailure, got)
	assert.False(t, ran, "run must not start on a pidfile collision")
}

func TestWithPidfileDisabled(t *testing.T) {
	got := withPidfile("", func() int { return exitSkipped })
	assert.Equal(t, exitSkipped, got)
}

func TestParseBytes(t *testing.T) {
	tcases := []struct {
		input     string
		expected  uint64
		expectErr bool
	}{
		{input: "4096", expected: 4096},
		{input: "16K", expected: 16 << 10},
		{input: "16k", expected: 16 << 10},
		{input: "4M", expected: 4 << 20},
		{input: "1G", expected: 1 << 30},
		{input: "", expectErr: true},
		{input: "G", expectErr: true},
		{input: "1T", expectErr: true},
		{input: "-1M", expectErr: true},
	}
	for _, tc := range tcases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parseBytes(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}
