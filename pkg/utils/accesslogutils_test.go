/*
Copyright 2023.

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

package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_AddAccessLogEntry(t *testing.T) {
	var buf bytes.Buffer
	setAccessLogWriter(&buf)
	defer setAccessLogWriter(nil)

	AddAccessLogEntry(AccessLogData{
		TimeStamp:  "2024-01-02 03:04:05",
		QueryId:    "abc",
		URI:        "/api/percentile?percentile=90",
		StatusCode: 200,
		Duration:   12,
	})
	AddAccessLogEntry(AccessLogData{
		TimeStamp:  "2024-01-02 03:04:06",
		URI:        "/api/health",
		StatusCode: 200,
	})

	assert.Equal(t, "2024-01-02 03:04:05 abc /api/percentile?percentile=90 200 12\n"+
		"2024-01-02 03:04:06 - /api/health 200 0\n", buf.String())
}

func Test_AddAccessLogEntry_Disabled(t *testing.T) {
	setAccessLogWriter(nil)
	assert.NotPanics(t, func() {
		AddAccessLogEntry(AccessLogData{URI: "/api/health"})
	})
}
