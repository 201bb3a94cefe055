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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ErrorWithCode(t *testing.T) {
	sentinel := NewErrorWithCode("EMPTY", errors.New("dataset is empty"))
	wrapped := fmt.Errorf("query failed: %w", sentinel)

	assert.True(t, errors.Is(wrapped, sentinel))
	assert.Equal(t, "EMPTY", GetErrorCode(wrapped))
	assert.Equal(t, "", GetErrorCode(errors.New("plain")))
	assert.Equal(t, "ErrorCode=EMPTY; err=dataset is empty", sentinel.Error())
	assert.Equal(t, "EMPTY", sentinel.Code())
}

func Test_ToFixedSeconds(t *testing.T) {
	assert.Equal(t, 1.5, ToFixedSeconds(1500*1_000_000))
}
