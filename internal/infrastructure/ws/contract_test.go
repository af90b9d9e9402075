package ws

import (
	"errors"
	"testing"
)

func TestDecodeFrameJoin(t *testing.T) {
	raw := []byte(`{"event":"join","data":{"roomId":"room-1","username":"alice"}}`)

	ev, err := DecodeFrame(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	join, ok := ev.(JoinEvent)
	if !ok {
		t.Fatalf("expected JoinEvent, got %T", ev)
	}
	if join.RoomID != "room-1" || join.Username != "alice" {
		t.Errorf("unexpected payload: %+v", join)
	}
}

func TestDecodeFrameVariants(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{"code-change", `{"event":"code-change","data":{"roomId":"r","code":"x"}}`, CodeChangeEvent{RoomID: "r", Code: "x"}},
		{"get-code", `{"event":"get-code","data":{"roomId":"r"}}`, GetCodeEvent{RoomID: "r"}},
		{"send-code", `{"event":"send-code","data":{"code":"x","socketId":"s1"}}`, SendCodeEvent{Code: "x", SocketID: "s1"}},
		{"send-message", `{"event":"send-message","data":{"roomId":"r","username":"a","message":"hi"}}`, SendMessageEvent{RoomID: "r", Username: "a", Message: "hi"}},
		{"leave-room", `{"event":"leave-room","data":{"roomId":"r"}}`, LeaveRoomEvent{RoomID: "r"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := DecodeFrame([]byte(tt.raw))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ev != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, ev)
			}
		})
	}
}

func TestDecodeFrameUnknownEvent(t *testing.T) {
	_, err := DecodeFrame([]byte(`{"event":"no-such-event","data":{}}`))
	if !errors.Is(err, ErrUnknownEvent) {
		t.Errorf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestDecodeFrameMalformed(t *testing.T) {
	if _, err := DecodeFrame([]byte(`not json`)); err == nil {
		t.Error("expected an error for malformed frame")
	}
	if _, err := DecodeFrame([]byte(`{"event":"join","data":"not-an-object"}`)); err == nil {
		t.Error("expected an error for malformed payload")
	}
}
