package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShowAndHide(t *testing.T) {
	n := New()
	assert.False(t, n.Visible())

	n.Show("saved")
	assert.True(t, n.Visible())
	assert.Equal(t, "saved", n.Message())

	n.Hide()
	assert.False(t, n.Visible())
	assert.Equal(t, "saved", n.Message(), "message survives hide until overwritten")
}

func TestLastWriteWins(t *testing.T) {
	n := New()
	n.Show("first")
	n.Show("second")

	assert.Equal(t, "second", n.Message())
	assert.True(t, n.Visible())
}

func TestSubscribe(t *testing.T) {
	n := New()

	type event struct {
		msg     string
		visible bool
	}
	var events []event
	unsubscribe := n.Subscribe(func(msg string, visible bool) {
		events = append(events, event{msg, visible})
	})

	n.Show("hello")
	n.Hide()
	unsubscribe()
	n.Show("ignored")

	assert.Equal(t, []event{{"hello", true}, {"hello", false}}, events)
}
