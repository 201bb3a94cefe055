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
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
)

func Test_WriteJsonResponse(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	WriteJsonResponse(ctx, map[string]interface{}{"value": 2.5})

	assert.Equal(t, ContentJson, string(ctx.Response.Header.ContentType()))
	assert.JSONEq(t, `{"value": 2.5}`, string(ctx.Response.Body()))
}

func Test_WriteJsonResponse_Unencodable(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	WriteJsonResponse(ctx, map[string]interface{}{"value": math.NaN()})

	assert.Equal(t, fasthttp.StatusInternalServerError, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error": "failed to encode response", "code": "ENCODE_FAILED"}`, string(ctx.Response.Body()))
}

func Test_SendErrorWithStatus(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	err := NewErrorWithCode("UNKNOWN_DATASET", errors.New("no such dataset"))
	SendErrorWithStatus(ctx, "dataset not found", "name=foo", err, fasthttp.StatusNotFound)

	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error": "dataset not found", "code": "UNKNOWN_DATASET"}`, string(ctx.Response.Body()))

	ctx = &fasthttp.RequestCtx{}
	SendError(ctx, "bad input", "", errors.New("plain"))
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error": "bad input"}`, string(ctx.Response.Body()))
}

func Test_SetBadMsg(t *testing.T) {
	ctx := &fasthttp.RequestCtx{}
	SetBadMsg(ctx, "")
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"message": "Bad Request", "status": 400}`, string(ctx.Response.Body()))
}
