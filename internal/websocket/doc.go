// Package websocket pushes pipeline run snapshots to browser clients.
//
// A Hub owns the connected clients and fans every broadcast out to them. It
// implements operations.WebSocketHub, so the operations StatusBroadcaster can
// publish through it directly. Broadcasting never blocks: when the queue or a
// client buffer is full the message is dropped, and a slow client is
// disconnected.
package websocket
