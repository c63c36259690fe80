package http

// RunTrigger starts asynchronous pipeline runs; *operations.Scheduler implements it
type RunTrigger interface {
	Trigger(trigger string) (string, error)
	Running() bool
}

// ClientCounter reports connected WebSocket clients; *websocket.Hub implements it
type ClientCounter interface {
	ClientCount() int
}
