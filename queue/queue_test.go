package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testID = "3e0c3b2a-9f1e-4d7c-8a6b-2f4e1d0c9b8a"

func TestDelivery_DecodeTask(t *testing.T) {
	d := Delivery{Data: []byte(`{"id":"` + testID + `","filename":"report.pdf"}`)}

	task, err := d.DecodeTask()
	require.NoError(t, err)
	assert.Equal(t, testID, task.ID)
	assert.Equal(t, "report.pdf", task.Filename)
}

func TestDelivery_DecodeTask_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "not json", data: []byte("not json at all")},
		{name: "empty payload", data: []byte(`{}`)},
		{name: "missing id", data: []byte(`{"filename":"report.pdf"}`)},
		{name: "bad uuid", data: []byte(`{"id":"42","filename":"report.pdf"}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Delivery{Data: tt.data}
			_, err := d.DecodeTask()
			assert.ErrorIs(t, err, ErrMalformedTask)
		})
	}
}

func TestDelivery_NilControlsAreSafe(t *testing.T) {
	var d Delivery
	assert.NoError(t, d.Ack())
	assert.NoError(t, d.Nak(0))
	assert.NoError(t, d.Term())
}
