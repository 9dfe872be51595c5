/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLinearBackOff(t *testing.T) {
	t.Parallel()

	b := &linearBackOff{delay: 10 * time.Millisecond}

	require.Equal(t, 10*time.Millisecond, b.NextBackOff())
	require.Equal(t, 20*time.Millisecond, b.NextBackOff())
	require.Equal(t, 30*time.Millisecond, b.NextBackOff())

	b.Reset()

	require.Equal(t, 10*time.Millisecond, b.NextBackOff())
}

func TestTraceParent(t *testing.T) {
	t.Parallel()

	a := createTraceParent()
	b := createTraceParent()

	require.Regexp(t, `^00-[0-9a-f]{32}-[0-9a-f]{16}-01$`, a)
	require.NotEqual(t, a, b)
	require.Equal(t, strings.Split(a, "-")[1], extractTraceID(a))
	require.Equal(t, "garbage", extractTraceID("garbage"))
}

func TestTraceWriteFile(t *testing.T) {
	t.Parallel()

	trace := NewTrace()
	trace.Record(Exchange{Attempt: 1, Method: "GET", URL: "http://x/users", StatusCode: 500})
	trace.Record(Exchange{Attempt: 2, Method: "GET", URL: "http://x/users", StatusCode: 200})

	// Callers get a copy.
	exchanges := trace.Exchanges()
	exchanges[0].Method = "PUT"
	require.Equal(t, "GET", trace.Exchanges()[0].Method)

	path := filepath.Join(t.TempDir(), "nested", "trace.json")
	require.NoError(t, trace.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var written []Exchange
	require.NoError(t, json.Unmarshal(data, &written))
	require.Len(t, written, 2)
	require.Equal(t, 2, written[1].Attempt)
	require.Equal(t, 200, written[1].StatusCode)
}

func TestEncodeBody(t *testing.T) {
	t.Parallel()

	data, err := encodeBody(nil)
	require.NoError(t, err)
	require.Nil(t, data)

	data, err = encodeBody(json.RawMessage(`{"a":1}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1}`, string(data))

	data, err = encodeBody(NewPost{UserID: 1})
	require.NoError(t, err)
	require.JSONEq(t, `{"userId":1,"title":"","body":""}`, string(data))

	_, err = encodeBody(make(chan int))
	require.Error(t, err)
}
