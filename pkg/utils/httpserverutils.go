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
	"runtime"
	"strings"

	jsoniter "github.com/json-iterator/go"
	log "github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const (
	ContentJson   = "application/json; charset=utf-8"
	ENCODE_FAILED = "ENCODE_FAILED"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type HttpServerResponse struct {
	Message    string `json:"message"`
	StatusCode int    `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func WriteResponse(ctx *fasthttp.RequestCtx, httpResp HttpServerResponse) {
	ctx.SetContentType(ContentJson)
	jval, _ := json.Marshal(httpResp)
	_, err := ctx.Write(jval)
	if err != nil {
		return
	}
}

func WriteJsonResponse(ctx *fasthttp.RequestCtx, httpResp interface{}) {
	ctx.SetContentType(ContentJson)
	jval, err := json.Marshal(httpResp)
	if err != nil {
		log.Errorf("WriteJsonResponse: failed to marshal response, err=%v", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		jval, _ = json.Marshal(ErrorResponse{Error: "failed to encode response", Code: ENCODE_FAILED})
	}
	_, err = ctx.Write(jval)
	if err != nil {
		return
	}
}

func SetBadMsg(ctx *fasthttp.RequestCtx, msg string) {
	if len(msg) == 0 {
		msg = "Bad Request"
	}
	var httpResp HttpServerResponse
	ctx.SetStatusCode(fasthttp.StatusBadRequest)
	httpResp.Message = msg
	httpResp.StatusCode = fasthttp.StatusBadRequest
	WriteResponse(ctx, httpResp)
}

func ExtractParamAsString(_interface interface{}) string {
	switch intfc := _interface.(type) {
	case string:
		return intfc
	default:
		return ""
	}
}

func sendErrorWithStatus(ctx *fasthttp.RequestCtx, messageToUser string, extraMessageToLog string, err error, statusCode int) {
	// Get the caller function name, file name, and line number.
	pc, _, _, _ := runtime.Caller(2) // Get the caller two levels up.
	caller := runtime.FuncForPC(pc)
	callerName := "unknown"
	callerFile := "unknown"
	callerLine := 0

	if caller != nil {
		callerName = caller.Name()
		callerFile, callerLine = caller.FileLine(pc)

		// Only take the function name after the last dot.
		callerName = callerName[strings.LastIndex(callerName, ".")+1:]

		// Only take the /pkg/... part of the file path.
		callerFile = callerFile[strings.LastIndex(callerFile, "/pkg/")+1:]
	}

	if extraMessageToLog == "" {
		log.Errorf("%s at %s:%d: %v, err=%v", callerName, callerFile, callerLine, messageToUser, err)
	} else {
		log.Errorf("%s at %s:%d: %v. %v, err=%v", callerName, callerFile, callerLine, messageToUser, extraMessageToLog, err)
	}

	response := ErrorResponse{Error: messageToUser, Code: GetErrorCode(err)}
	ctx.SetStatusCode(statusCode)
	WriteJsonResponse(ctx, response)
}

func SendError(ctx *fasthttp.RequestCtx, messageToUser string, extraMessageToLog string, err error) {
	sendErrorWithStatus(ctx, messageToUser, extraMessageToLog, err, fasthttp.StatusBadRequest)
}

func SendInternalError(ctx *fasthttp.RequestCtx, messageToUser string, extraMessageToLog string, err error) {
	sendErrorWithStatus(ctx, messageToUser, extraMessageToLog, err, fasthttp.StatusInternalServerError)
}

func SendErrorWithStatus(ctx *fasthttp.RequestCtx, messageToUser string, extraMessageToLog string, err error, statusCode int) {
	sendErrorWithStatus(ctx, messageToUser, extraMessageToLog, err, statusCode)
}
