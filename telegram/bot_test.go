package telegram

import (
	"testing"

	"emsp/ocpi/observer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, `START\_SESSION`, sanitize("START_SESSION"))
	assert.Equal(t, `a\-b\.c\!`, sanitize("a-b.c!"))
	assert.Equal(t, "plain", sanitize("plain"))
}

func TestOnCommand_QueuesFinalResults(t *testing.T) {
	bot := newBot([]int64{1})

	bot.OnCommand(&observer.CommandEvent{CommandId: "c1", CommandType: "START_SESSION", Stage: observer.StageRegistered})
	bot.OnCommand(&observer.CommandEvent{CommandId: "c1", CommandType: "START_SESSION", Stage: observer.StageResponse, Result: "ACCEPTED"})
	bot.OnCommand(&observer.CommandEvent{CommandId: "c1", CommandType: "START_SESSION", Stage: observer.StageResult, Result: "EVSE_OCCUPIED", Message: "busy"})

	require.Len(t, bot.event, 1)
	msg := <-bot.event
	assert.Contains(t, msg.Text, `*START\_SESSION*`)
	assert.Contains(t, msg.Text, "Result: `EVSE\\_OCCUPIED`")
	assert.Contains(t, msg.Text, "busy")
}

func TestOnCommand_RejectedAndExpired(t *testing.T) {
	bot := newBot(nil)

	bot.OnCommand(&observer.CommandEvent{CommandId: "c2", CommandType: "STOP_SESSION", Stage: observer.StageResponse, Result: "UNKNOWN_SESSION"})
	bot.OnCommand(&observer.CommandEvent{CommandId: "c2", CommandType: "STOP_SESSION", Stage: observer.StageExpired, Result: "ACCEPTED"})
	bot.OnCommand(&observer.CommandEvent{CommandId: "c4", CommandType: "STOP_SESSION", Stage: observer.StageExpired, Result: "TIMEOUT"})
	bot.OnCommand(&observer.CommandEvent{CommandId: "c3", CommandType: "STOP_SESSION", Stage: observer.StageExpired, NoResult: true})

	require.Len(t, bot.event, 2)
	assert.Contains(t, (<-bot.event).Text, "Response: `UNKNOWN\\_SESSION`")
	assert.Contains(t, (<-bot.event).Text, "No result received")
}

func TestEnqueue_DropsWhenFull(t *testing.T) {
	bot := newBot(nil)
	for i := 0; i < cap(bot.event)+5; i++ {
		bot.enqueue("x")
	}
	assert.Len(t, bot.event, cap(bot.event))
}
