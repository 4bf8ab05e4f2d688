// Copyright 2026 Calyptra Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"path"
	"strings"
)

const (
	objectPrefix = "documents/"
	defaultExt   = ".bin"
)

// ObjectKey derives the object store key for a document: documents/<id>.<ext>,
// with the extension taken from the original filename. Both intake and worker
// derive keys through this function so the two sides always agree; the worker
// recovers the filename from the metadata store when the task omits it.
func ObjectKey(id, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" || ext == "." {
		ext = defaultExt
	}
	return objectPrefix + id + ext
}
