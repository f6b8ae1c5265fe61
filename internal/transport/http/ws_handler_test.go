package http

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sot015/ocp-quiz-app/internal/app"
	"github.com/sot015/ocp-quiz-app/internal/auth"
	"github.com/sot015/ocp-quiz-app/internal/domain"
	"github.com/sot015/ocp-quiz-app/internal/infra/memory"
)

func TestWebSocketStateFeed(t *testing.T) {
	answer := 0
	session := app.NewSession(memory.NewStaticSource([]domain.Question{
		{Text: "Pick a", Options: []string{"a", "b"}, Answer: &answer},
	}), 0)
	handler := NewHandler(session, auth.New("secret"), "")
	server := httptest.NewServer(handler.Routes())
	defer server.Close()

	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Initial snapshot arrives first.
	state := readState(t, conn)
	if state.Phase != domain.PhaseLobby {
		t.Fatalf("expected lobby snapshot, got %s", state.Phase)
	}

	if _, err := session.Register("Alice"); err != nil {
		t.Fatalf("register: %v", err)
	}
	state = readState(t, conn)
	if state.PlayerCount != 1 {
		t.Fatalf("expected registration update, got %+v", state)
	}

	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	state = readState(t, conn)
	if state.Phase != domain.PhaseQuestion || state.Question == nil {
		t.Fatalf("expected question update, got %+v", state)
	}
	if state.Question.Text != "Pick a" {
		t.Fatalf("unexpected question %+v", state.Question)
	}
}

func readState(t *testing.T, conn *websocket.Conn) domain.PublicState {
	t.Helper()
	var msg outboundMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "state" {
		t.Fatalf("expected state message, got %s", msg.Type)
	}
	return msg.Payload
}
