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

package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerReusesSource(t *testing.T) {
	a := NewLogger("reuse-test")
	b := NewLogger("reuse-test")
	require.Same(t, a, b)
	assert.Equal(t, "reuse-test", a.Source())

	c := NewLogger("[reuse-test] ")
	require.Same(t, a, c, "source names are trimmed of brackets and spaces")
}

func TestEnableDebug(t *testing.T) {
	defer EnableDebug(false)

	l := NewLogger("debug-test")
	assert.False(t, l.DebugEnabled())

	EnableDebug(true)
	assert.True(t, l.DebugEnabled())

	// loggers created after the global switch inherit it
	late := NewLogger("debug-test-late")
	assert.True(t, late.DebugEnabled())

	old := l.EnableDebug(false)
	assert.True(t, old)
	assert.False(t, l.DebugEnabled())
	assert.True(t, late.DebugEnabled(), "per-logger switch leaves others alone")
}
