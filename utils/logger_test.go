/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel(" warning "))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("nonsense"))
}

func TestNewLoggerTextFormat(t *testing.T) {
	var buf bytes.Buffer
	ConfigureLogOutput(&buf)
	ConfigureLogFormat("text")

	l := NewLogger("TEST")
	l.SetLevel(logrus.DebugLevel)
	l.WithField("table", "user").Debug("saved row")

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "[      TEST]")
	assert.Contains(t, out, "saved row table=user")

	require.True(t, SetLoggerLevel("TEST", "error"))
	assert.Equal(t, logrus.ErrorLevel, l.GetLevel())
	assert.False(t, SetLoggerLevel("MISSING", "error"))
}

func init() {
	SkipCallerFrames("github.com/tomoncle/tablerepo/utils.logThroughAdapter")
}

func logThroughAdapter(l *Logger, msg string) {
	l.WithField("via", "adapter").Info(msg)
}

func TestCallerSkipsWrappers(t *testing.T) {
	var buf bytes.Buffer
	ConfigureLogOutput(&buf)
	t.Cleanup(func() { ConfigureLogOutput(os.Stdout) })

	ConfigureLogFormat("text")
	l := NewLogger("CALLER")
	_, _, line, _ := runtime.Caller(0)
	logThroughAdapter(l, "wrapped")
	assert.Contains(t, buf.String(), fmt.Sprintf(" logger_test.go:%d : wrapped", line+1))

	buf.Reset()
	ConfigureLogFormat("json")
	t.Cleanup(func() { ConfigureLogFormat("text") })
	l = NewLogger("CALLER_JSON")
	_, _, line, _ = runtime.Caller(0)
	logThroughAdapter(l, "wrapped")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, fmt.Sprintf("logger_test.go:%d", line+1), entry["file"])
	assert.Equal(t, "github.com/tomoncle/tablerepo/utils.TestCallerSkipsWrappers", entry["func"])
	assert.Equal(t, "wrapped", entry["message"])
}

func TestConfigureLogLevelConcurrent(t *testing.T) {
	NewLogger("RACE")
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			ConfigureLogLevel("debug")
		}
	}()
	for i := 0; i < 100; i++ {
		NewLogger(fmt.Sprintf("RACE_%d", i%4))
	}
	<-done
	ConfigureLogLevel("info")

	settingsMu.RLock()
	defer settingsMu.RUnlock()
	assert.Equal(t, logrus.InfoLevel, defaultLevel)
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("UTILS_TEST_BOOL", "true")
	t.Setenv("UTILS_TEST_BAD_BOOL", "yes please")
	t.Setenv("UTILS_TEST_DUR", "3")
	t.Setenv("UTILS_TEST_DUR2", "250ms")

	assert.True(t, EnvDefaultBool("UTILS_TEST_BOOL", false))
	assert.True(t, EnvDefaultBool("UTILS_TEST_BAD_BOOL", true))
	assert.Equal(t, "x", EnvDefaultString("UTILS_TEST_UNSET", "x"))
	assert.Equal(t, 3*time.Second, EnvDefaultDuration("UTILS_TEST_DUR", 0))
	assert.Equal(t, 250*time.Millisecond, EnvDefaultDuration("UTILS_TEST_DUR2", 0))
}
