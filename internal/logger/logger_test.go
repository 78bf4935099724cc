// Copyright 2023 Google Inc. All Rights Reserved.
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

package logger

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// captureStderr captures everything written to os.Stderr during f, including
// output from loggers configured inside f.
func captureStderr(f func()) string {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		os.Stderr = oldStderr
	}()

	f()
	w.Close()

	var buf bytes.Buffer
	io.Copy(&buf, r)
	r.Close()
	return buf.String()
}

func TestInitRespectsSeverityThreshold(t *testing.T) {
	out := captureStderr(func() {
		Init("text", Warning)
		Infof("below threshold")
		Warnf("above threshold")
	})

	assert.NotContains(t, out, "below threshold")
	assert.Contains(t, out, "above threshold")
}

func TestJSONFormatRenamesLevelToSeverity(t *testing.T) {
	out := captureStderr(func() {
		Init("json", Trace)
		Tracef("deep detail")
	})

	assert.Contains(t, out, `"severity":"TRACE"`)
	assert.Contains(t, out, "deep detail")
}

func TestOffSilencesEverything(t *testing.T) {
	out := captureStderr(func() {
		Init("text", Off)
		Errorf("should not appear")
	})

	assert.Empty(t, out)
}

func TestUnknownSeverityDefaultsToInfo(t *testing.T) {
	out := captureStderr(func() {
		Init("text", "BOGUS")
		Debugf("debug hidden")
		Infof("info shown")
	})

	assert.NotContains(t, out, "debug hidden")
	assert.Contains(t, out, "info shown")
}

func TestSeverityName(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{LevelTrace, Trace},
		{LevelDebug, Debug},
		{LevelInfo, Info},
		{LevelWarn, Warning},
		{LevelError, Error},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, severityName(tc.level))
	}
}
