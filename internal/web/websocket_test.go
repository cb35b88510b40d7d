package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/skywatch/dronerid/internal/core/domain"
)

func TestHub_BroadcastDeliversToConnectedClients(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the upgrade handler time to register the client.
	time.Sleep(50 * time.Millisecond)

	hub.Broadcast(domain.Detection{ID: 42, Record: domain.RemoteIDRecord{SourceAddress: "AA:BB:CC:DD:EE:FF"}})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Contains(t, string(msg), "AA:BB:CC:DD:EE:FF")
}
