// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeJSONFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "utils")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "sub", "report.json")
	obj := map[string]int{"pictures": 3}
	require.NoError(t, EncodeJSONFile(path, obj))

	data, err := ioutil.ReadFile(path)
	require.NoError(t, err)
	var got map[string]int
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, obj, got)

	assert.Error(t, EncodeJSONFile(path, make(chan int)))
}
