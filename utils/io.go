// Copyright (c) 2019,CAOHONGJU All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package utils

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// EncodeJSONFile 以缩进格式把 obj 写入 JSON 文件，目录不存在时创建
func EncodeJSONFile(path string, obj interface{}) error {
	body, err := json.MarshalIndent(obj, "", "\t")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err = os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err = f.Write(body); err != nil {
		return err
	}
	return f.Sync()
}
