package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/dmitrijs2005/citybreaks/internal/common"
	"github.com/dmitrijs2005/citybreaks/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotification(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    MessageType
		wantErr bool
	}{
		{name: "created", in: `{"type":"created","payload":{"_id":"a","name":"Paris","price":1,"version":1}}`, want: TypeCreated},
		{name: "updated", in: `{"type":"updated","payload":{"_id":"a","name":"Paris","price":1,"version":2}}`, want: TypeUpdated},
		{name: "not json", in: `hello`, wantErr: true},
		{name: "unknown type", in: `{"type":"deleted","payload":{"_id":"a","name":"x"}}`, wantErr: true},
		{name: "authorization echo", in: `{"type":"authorization","payload":{"token":"t"}}`, wantErr: true},
		{name: "invalid record", in: `{"type":"created","payload":{"_id":"a","name":"x","price":-5}}`, wantErr: true},
		{name: "missing id", in: `{"type":"updated","payload":{"name":"x"}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := ParseNotification([]byte(tt.in))
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Type)
			assert.Equal(t, "a", n.Record.ID)
		})
	}
}

func TestNewAuthorization(t *testing.T) {
	m, err := NewAuthorization("jwt-1")
	require.NoError(t, err)

	b, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"authorization","payload":{"token":"jwt-1"}}`, string(b))
}

func TestNewClient_URL(t *testing.T) {
	c, err := NewClient("https://example.com:8443/api", nil, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "wss://example.com:8443/", c.url)

	c, err = NewClient("http://127.0.0.1:3000", nil, logging.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:3000/", c.url)

	_, err = NewClient("ftp://x", nil, logging.NewNopLogger())
	require.Error(t, err)
}

func TestClient_HandshakeAndNotifications(t *testing.T) {
	gotAuth := make(chan Message, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.CloseNow()

		var auth Message
		if err := wsjson.Read(r.Context(), conn, &auth); err != nil {
			return
		}
		gotAuth <- auth

		frames := []string{
			`{"type":"created","payload":{"_id":"a","name":"Paris","price":200,"version":1}}`,
			`garbage`,
			`{"type":"updated","payload":{"_id":"a","name":"Paris","price":250,"version":2}}`,
		}
		for _, f := range frames {
			if err := conn.Write(r.Context(), websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		// keep the connection open until the client goes away
		_, _, _ = conn.Read(r.Context())
	}))
	t.Cleanup(srv.Close)

	got := make(chan Notification, 4)
	c, err := NewClient(srv.URL, func(ctx context.Context, n Notification) { got <- n }, logging.NewNopLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, "jwt-1") }()

	select {
	case auth := <-gotAuth:
		assert.Equal(t, TypeAuthorization, auth.Type)
		assert.JSONEq(t, `{"token":"jwt-1"}`, string(auth.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("no authorization message")
	}

	var received []Notification
	for len(received) < 2 {
		select {
		case n := <-got:
			received = append(received, n)
		case <-time.After(2 * time.Second):
			t.Fatalf("received only %d notifications", len(received))
		}
	}
	assert.Equal(t, TypeCreated, received[0].Type)
	assert.Equal(t, TypeUpdated, received[1].Type)
	assert.Equal(t, int64(2), received[1].Record.Version)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestClient_RetriesWhenServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, nil, logging.NewNopLogger())
	require.NoError(t, err)
	c.minDelay = time.Millisecond
	c.maxDelay = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, c.Run(ctx, "t"), context.DeadlineExceeded)
}
