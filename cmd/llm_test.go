package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/mistakecoach/internal/store"
)

func TestFilterEvents(t *testing.T) {
	events := []store.LLMEventRecord{
		{ID: 1, LLMRequestEventData: store.LLMRequestEventData{Purpose: "chat", Success: true}},
		{ID: 2, LLMRequestEventData: store.LLMRequestEventData{Purpose: "mistake-analysis", Success: false}},
		{ID: 3, LLMRequestEventData: store.LLMRequestEventData{Purpose: "mistake-analysis", Success: true}},
	}

	ids := func(es []store.LLMEventRecord) []int {
		var out []int
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}

	assert.Equal(t, []int{2, 3}, ids(filterEvents(append([]store.LLMEventRecord(nil), events...), "mistake-analysis", false)))
	assert.Equal(t, []int{2}, ids(filterEvents(append([]store.LLMEventRecord(nil), events...), "", true)))
	assert.Equal(t, []int{1, 2, 3}, ids(filterEvents(append([]store.LLMEventRecord(nil), events...), "", false)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "mistake-a…", truncate("mistake-analysis", 10))
}

func TestFormatCost(t *testing.T) {
	assert.Equal(t, "$0.0042", formatCost(0.0042))
	assert.Equal(t, "$1.25", formatCost(1.25))
}
