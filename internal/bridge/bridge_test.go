package bridge_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/gorilla/websocket"

	"scenevox/internal/bridge"
)

// fakeHost upgrades to websocket and answers exec/ping frames the way the
// host addon does.
func fakeHost(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := ws.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			var msg bridge.Message
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Kind {
			case bridge.KindPing:
				_ = conn.WriteJSON(bridge.Message{ID: msg.ID, Kind: bridge.KindPong})
			case bridge.KindExec:
				if strings.Contains(msg.Code, "raise") {
					_ = conn.WriteJSON(bridge.Message{ID: msg.ID, Kind: bridge.KindResult, OK: false, Output: "RuntimeError: boom"})
				} else {
					_ = conn.WriteJSON(bridge.Message{ID: msg.ID, Kind: bridge.KindResult, OK: true, Output: "ok"})
				}
			}
		}
	}))
}

func dialTest(t *testing.T) *bridge.Bridge {
	t.Helper()
	srv := fakeHost(t)
	t.Cleanup(srv.Close)

	b, err := bridge.Dial(bridge.Config{URL: "ws" + strings.TrimPrefix(srv.URL, "http")})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	go b.Run()
	return b
}

func TestBridge_Ping(t *testing.T) {
	t.Parallel()
	b := dialTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.Ping(ctx); err != nil {
		t.Errorf("ping: %v", err)
	}
}

func TestBridge_Execute(t *testing.T) {
	t.Parallel()
	b := dialTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := b.Execute(ctx, "import bpy\nbpy.ops.mesh.primitive_torus_add()")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "ok" {
		t.Errorf("output = %q, want %q", out, "ok")
	}
}

func TestBridge_ExecuteHostError(t *testing.T) {
	t.Parallel()
	b := dialTest(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := b.Execute(ctx, "raise RuntimeError('boom')")
	if err == nil {
		t.Fatal("expected host evaluation error")
	}
	if !strings.Contains(err.Error(), "RuntimeError") {
		t.Errorf("error should carry the host message verbatim, got: %v", err)
	}
}

func TestBridge_ExecuteContextTimeout(t *testing.T) {
	t.Parallel()
	// Host that accepts but never answers.
	upgrader := ws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)

	b, err := bridge.Dial(bridge.Config{URL: "ws" + strings.TrimPrefix(srv.URL, "http")})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	go b.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := b.Execute(ctx, "print(1)"); err == nil {
		t.Error("expected timeout error from silent host")
	}
}
