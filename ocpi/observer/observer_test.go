package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_NotifiesInOrder(t *testing.T) {
	var calls []string
	list := NewList(
		Funcs{Request: func(_ *RequestEvent) { calls = append(calls, "first") }},
		nil,
		Funcs{Request: func(_ *RequestEvent) { calls = append(calls, "second") }},
	)

	list.Request(&RequestEvent{Method: "POST"})

	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 2, list.Len())
}

func TestList_CommandSetsTime(t *testing.T) {
	var got *CommandEvent
	list := NewList(Funcs{Command: func(e *CommandEvent) { got = e }})

	list.Command(&CommandEvent{CommandId: "c1", Stage: StageResult})

	require.NotNil(t, got)
	assert.False(t, got.Time.IsZero())
}

func TestList_NilIsSilent(t *testing.T) {
	var list *List
	assert.NotPanics(t, func() {
		list.Request(&RequestEvent{})
		list.Response(&ResponseEvent{})
		list.Command(&CommandEvent{})
	})
	assert.Equal(t, 0, list.Len())
}
