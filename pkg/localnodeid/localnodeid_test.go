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

package localnodeid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadOrCreate(t *testing.T) {
	dir := t.TempDir()

	id, created := loadOrCreate(dir)
	assert.True(t, created)
	assert.NotEmpty(t, id)

	onDisk, err := os.ReadFile(filepath.Join(dir, "common", "id.info"))
	require.NoError(t, err)
	assert.Equal(t, id, string(onDisk))

	again, created := loadOrCreate(dir)
	assert.False(t, created)
	assert.Equal(t, id, again)
}

func Test_LoadOrCreate_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "common"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common", "id.info"), []byte("\n"), 0644))

	id, created := loadOrCreate(dir)
	assert.True(t, created)
	assert.NotEmpty(t, id)
}
