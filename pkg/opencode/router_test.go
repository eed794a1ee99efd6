package opencode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_Dispatch(t *testing.T) {
	router := NewRouter()

	var order []string
	router.Subscribe(EventSessionIdle, HandlerFunc(func(ev Event) {
		order = append(order, "first:"+ev.(SessionIdle).SessionID)
	}))
	router.Subscribe(EventSessionIdle, HandlerFunc(func(ev Event) {
		order = append(order, "second:"+ev.(SessionIdle).SessionID)
	}))

	router.Dispatch(ServerConnected{})
	router.Dispatch(Unknown{Kind: "message.updated"})
	router.Dispatch(SessionIdle{SessionID: "a"})
	router.Dispatch(SessionIdle{SessionID: "b"})

	assert.Equal(t, []string{"first:a", "second:a", "first:b", "second:b"}, order)
}

func TestRouter_Subscribed(t *testing.T) {
	router := NewRouter()
	assert.False(t, router.Subscribed(EventSessionIdle))

	router.Subscribe(EventSessionIdle, HandlerFunc(func(Event) {}))
	assert.True(t, router.Subscribed(EventSessionIdle))
	assert.False(t, router.Subscribed(EventServerConnected))
}
