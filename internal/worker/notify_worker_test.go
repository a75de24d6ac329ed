package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNotification_ShortensQuoteID(t *testing.T) {
	subject, body := formatNotification(NotifyJobPayload{
		QuoteID:    "0f8fad5b-d9cb-469f-a165-70867728950e",
		ClientName: "Maria Silva",
		FromStatus: "pending",
		ToStatus:   "paid",
	})
	assert.Equal(t, `Quote 0f8fad5b: pending → paid`, subject)
	assert.Contains(t, body, "0f8fad5b-d9cb-469f-a165-70867728950e")
	assert.Contains(t, body, "Maria Silva")
}

func TestFormatNotification_ToleratesShortQuoteID(t *testing.T) {
	// Queue entries can be hand-crafted or corrupted; a short id must not
	// panic the worker.
	subject, _ := formatNotification(NotifyJobPayload{
		QuoteID:    "q1",
		FromStatus: "pending",
		ToStatus:   "cancelled",
	})
	assert.Equal(t, `Quote q1: pending → cancelled`, subject)
}
