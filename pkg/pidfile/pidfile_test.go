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

package pidfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func prepare(t *testing.T) {
	SetPath(filepath.Join(t.TempDir(), "pidfile-test.pid"))
}

func TestWriteRead(t *testing.T) {
	prepare(t)

	require.Nil(t, Write())

	pid, err := Read()
	require.Nil(t, err)
	require.Equal(t, os.Getpid(), pid)

	// a second Write with the file open is a no-op
	require.Nil(t, Write())

	require.Nil(t, Remove())
}

func TestReadMissing(t *testing.T) {
	prepare(t)

	pid, err := Read()
	require.Nil(t, err)
	require.Equal(t, 0, pid)
}

func TestReadGarbage(t *testing.T) {
	prepare(t)

	require.Nil(t, os.WriteFile(GetPath(), []byte("not-a-pid\n"), 0644))

	pid, err := Read()
	require.NotNil(t, err)
	require.Equal(t, -1, pid)

	require.Nil(t, Remove())
}

func TestWriteExisting(t *testing.T) {
	prepare(t)

	require.Nil(t, os.WriteFile(GetPath(), []byte("12345\n"), 0644))
	require.NotNil(t, Write())
	require.Nil(t, Remove())
}
