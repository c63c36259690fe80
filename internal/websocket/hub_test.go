package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/Vighnesh3232/Data-Pipeline-for-Cold-Drinks-Analysis/internal/operations"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	metrics, err := NewHubMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	hub := NewHub(testLogger(), metrics)
	hub.Start()
	t.Cleanup(hub.Stop)
	return hub
}

func decode(t *testing.T, raw []byte) Message {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal(raw, &msg))
	return msg
}

func TestHub_StartStopIdempotent(t *testing.T) {
	hub := NewHub(testLogger(), nil)
	hub.Start()
	hub.Start()
	hub.Stop()
	hub.Stop()

	// Broadcasting after Stop neither blocks nor panics
	hub.BroadcastUpdate(operations.EventTypeOperationSnapshot, "op", "running", nil)
}

func TestHub_RegisterSendsConnectionMessage(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, newMockConnection(), "trace-1", testLogger())

	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	select {
	case raw := <-client.send:
		msg := decode(t, raw)
		assert.Equal(t, TypeConnection, msg.Type)
		assert.Equal(t, "trace-1", msg.TraceID)
		data := msg.Data.(map[string]interface{})
		assert.Equal(t, client.ID(), data["client_id"])
	case <-time.After(time.Second):
		t.Fatal("no connection message")
	}

	hub.Unregister(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-client.send
	assert.False(t, open, "send channel is closed on unregister")
}

func TestHub_BroadcastSnapshot(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, newMockConnection(), "", testLogger())
	hub.Register(client)
	<-client.send

	snapshot := &operations.OperationSnapshot{OperationID: "op-1", Status: "running", Progress: 50}
	hub.BroadcastUpdate(operations.EventTypeOperationSnapshot, "op-1", "running", snapshot)
	hub.BroadcastUpdate("custom", "extract", "done", nil)

	first := decode(t, <-client.send)
	assert.Equal(t, operations.EventTypeOperationSnapshot, first.Type)
	assert.Empty(t, first.Step, "snapshots carry everything in data")
	data := first.Data.(map[string]interface{})
	assert.Equal(t, "op-1", data["operation_id"])
	assert.EqualValues(t, 50, data["progress"])

	second := decode(t, <-client.send)
	assert.Equal(t, "extract", second.Step)
	assert.Equal(t, "done", second.Status)

	assert.Eventually(t, func() bool {
		return hub.GetHubMetrics()["messages_sent"].(int64) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestHub_SlowClientIsDisconnected(t *testing.T) {
	hub := newTestHub(t)
	client := NewClient(hub, newMockConnection(), "", testLogger())
	hub.Register(client)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	// Nobody drains client.send, so it overflows
	for i := 0; i < sendBufferSize; i++ {
		hub.BroadcastUpdate("tick", "", "", i)
	}
	assert.Eventually(t, func() bool {
		hub.BroadcastUpdate("tick", "", "", 0)
		return hub.ClientCount() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestClient_PumpsWithMockConnection(t *testing.T) {
	hub := newTestHub(t)
	conn := newMockConnection()
	client := NewClient(hub, conn, "", testLogger())
	hub.Register(client)
	go client.WritePump()
	go client.ReadPump()

	conn.reads <- []byte(`{"type":"heartbeat"}`)
	hub.BroadcastUpdate(operations.EventTypeOperationSnapshot, "op-1", "completed", map[string]string{"status": "completed"})

	require.Eventually(t, func() bool { return len(conn.Written()) >= 2 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, string(conn.Written()[0]), `"type":"connection"`)
	assert.Contains(t, string(conn.Written()[1]), `"type":"operation:snapshot"`)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHandler_EndToEnd(t *testing.T) {
	hub := newTestHub(t)
	server := httptest.NewServer(NewHandler(hub, testLogger()))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, TypeConnection, decode(t, raw).Type)

	hub.BroadcastUpdate(operations.EventTypeOperationSnapshot, "op-1", "failed",
		&operations.OperationSnapshot{OperationID: "op-1", Status: "failed", Error: "no input data"})
	_, raw, err = conn.ReadMessage()
	require.NoError(t, err)
	msg := decode(t, raw)
	assert.Equal(t, operations.EventTypeOperationSnapshot, msg.Type)
	assert.Equal(t, "no input data", msg.Data.(map[string]interface{})["error"])
}
