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
	"fmt"
	"io"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type AccessLogData struct {
	TimeStamp  string
	QueryId    string
	URI        string
	StatusCode int
	Duration   int64
}

var (
	accessLog io.Writer
	mu        sync.Mutex
)

// InitAccessLog sends access log entries to a rotated file at path. An empty
// path turns the access log off.
func InitAccessLog(path string, maxSizeMB int, compress bool) {
	mu.Lock()
	defer mu.Unlock()
	if path == "" {
		accessLog = nil
		return
	}
	accessLog = &lumberjack.Logger{
		Filename: path,
		MaxSize:  maxSizeMB,
		Compress: compress,
	}
	restartTime := time.Now().Format("2006-01-02 15:04:05")
	_, err := fmt.Fprintf(accessLog, "===== Application Restarted at %s =====\n", restartTime)
	if err != nil {
		log.Errorf("InitAccessLog: unable to write restart marker to %v, err=%v", path, err)
	}
}

func setAccessLogWriter(w io.Writer) {
	mu.Lock()
	accessLog = w
	mu.Unlock()
}

// AddAccessLogEntry writes one line per request:
// timeStamp <query id> <request URI> <response status code> <elapsed time in ms>
func AddAccessLogEntry(data AccessLogData) {
	mu.Lock()
	defer mu.Unlock()
	if accessLog == nil {
		return
	}

	qid := data.QueryId
	if qid == "" {
		qid = "-"
	}
	_, err := fmt.Fprintf(accessLog, "%s %s %s %d %d\n",
		data.TimeStamp,
		qid,
		data.URI,
		data.StatusCode,
		data.Duration,
	)
	if err != nil {
		log.Errorf("AddAccessLogEntry: unable to write to access log, err=%v", err)
	}
}

func DeferableAddAccessLogEntry(startTime time.Time, qid string, uri string, statusCodeFunc func() int) {
	AddAccessLogEntry(AccessLogData{
		TimeStamp:  startTime.Format("2006-01-02 15:04:05"),
		QueryId:    qid,
		URI:        uri,
		StatusCode: statusCodeFunc(),
		Duration:   time.Since(startTime).Milliseconds(),
	})
}
