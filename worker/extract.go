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


package worker

import (
	"strings"
	"unicode/utf8"

	"github.com/calyptra/docstream/core"
)

// extractLimit bounds how many raw bytes of a document feed the embedding,
// in bytes.
const extractLimit = 500

// ExtractText derives the embeddable text from raw document bytes: the
// first extractLimit bytes, decoded lossily as UTF-8. Invalid sequences
// become the Unicode replacement character instead of failing the document,
// so binary uploads still produce a (low-value but valid) vector.
func ExtractText(data []byte) string {
	if len(data) > extractLimit {
		data = data[:extractLimit]
	}
	return strings.ToValidUTF8(string(data), "�")
}

// BuildPreview truncates extracted text to the stored preview limit without
// splitting a multi-byte rune at the cut.
func BuildPreview(text string) string {
	if len(text) <= core.PreviewLimit {
		return text
	}
	cut := core.PreviewLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
