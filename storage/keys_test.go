package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKey(t *testing.T) {
	const id = "3e0c3b2a-9f1e-4d7c-8a6b-2f4e1d0c9b8a"

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{name: "pdf", filename: "report.pdf", want: "documents/" + id + ".pdf"},
		{name: "uppercase extension", filename: "REPORT.PDF", want: "documents/" + id + ".pdf"},
		{name: "nested name", filename: "q3/report.docx", want: "documents/" + id + ".docx"},
		{name: "no extension", filename: "README", want: "documents/" + id + ".bin"},
		{name: "trailing dot", filename: "weird.", want: "documents/" + id + ".bin"},
		{name: "empty filename", filename: "", want: "documents/" + id + ".bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(id, tt.filename))
		})
	}
}

func TestObjectKey_StableAcrossCalls(t *testing.T) {
	// Intake and worker derive keys independently; they must always agree.
	const id = "3e0c3b2a-9f1e-4d7c-8a6b-2f4e1d0c9b8a"
	assert.Equal(t, ObjectKey(id, "report.pdf"), ObjectKey(id, "report.pdf"))
}
