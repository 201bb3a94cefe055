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
)

// ErrorWithCode combines an error with a standardized error code
type ErrorWithCode struct {
	code string
	err  error
}

// NewErrorWithCode creates a new error with a code
func NewErrorWithCode(code string, err error) *ErrorWithCode {
	return &ErrorWithCode{
		code: code,
		err:  err,
	}
}

// Error implements the error interface
func (ewc *ErrorWithCode) Error() string {
	return fmt.Sprintf("ErrorCode=%s; err=%v", ewc.code, ewc.err)
}

// Unwrap returns the underlying error
func (ewc *ErrorWithCode) Unwrap() error {
	return ewc.err
}

// String implements the stringer interface
func (ewc *ErrorWithCode) String() string {
	return ewc.Error()
}

func (ewc *ErrorWithCode) Code() string {
	return ewc.code
}

// GetErrorCode returns the code of the first ErrorWithCode in the chain, or "" if there is none.
func GetErrorCode(err error) string {
	var ewc *ErrorWithCode
	if errors.As(err, &ewc) {
		return ewc.code
	}
	return ""
}
