package ws

import (
	"context"
	"sync"
	"testing"
	"time"
)

// drain empties a client's outbound queue without blocking.
func drain(cl *Client) []*Message {
	var out []*Message
	for {
		select {
		case msg := <-cl.Message:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// join runs the admission path directly on the reactor's handler, the way
// dispatch would after a join frame.
func join(c *Core, cl *Client, room, username string) {
	c.handleJoin(cl, JoinEvent{RoomID: room, Username: username})
}

func TestJoinBroadcastsToEveryoneIncludingNewcomer(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	bob := newMember("s2")

	join(core, alice, "room-1", "alice")
	drain(alice)

	join(core, bob, "room-1", "bob")

	for _, cl := range []*Client{alice, bob} {
		msgs := drain(cl)
		if len(msgs) != 1 {
			t.Fatalf("client %s: expected 1 joined event, got %d", cl.ID, len(msgs))
		}
		if msgs[0].Event != EventJoined {
			t.Errorf("client %s: expected %q, got %q", cl.ID, EventJoined, msgs[0].Event)
		}
		payload, ok := msgs[0].Data.(JoinedPayload)
		if !ok {
			t.Fatalf("client %s: unexpected payload type %T", cl.ID, msgs[0].Data)
		}
		if payload.Username != "bob" || payload.SocketID != "s2" {
			t.Errorf("client %s: joined payload should name the newcomer, got %+v", cl.ID, payload)
		}
		if len(payload.Clients) != 2 {
			t.Errorf("client %s: expected 2 clients in payload, got %d", cl.ID, len(payload.Clients))
		}
	}
}

func TestJoinDedupesMemberListByName(t *testing.T) {
	core := NewCore(NewRegistry())

	first := newMember("s1")
	second := newMember("s2")

	join(core, first, "room-1", "alice")
	join(core, second, "room-1", "alice")

	msgs := drain(second)
	payload := msgs[len(msgs)-1].Data.(JoinedPayload)
	if len(payload.Clients) != 1 {
		t.Errorf("expected 1 client after name dedup, got %d", len(payload.Clients))
	}
}

func TestJoinDifferentRoomAnnouncesToOldRoom(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	bob := newMember("s2")
	join(core, alice, "room-1", "alice")
	join(core, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	// bob hops to another room; room-1 must hear a departure so its
	// member panel does not keep a stale entry.
	join(core, bob, "room-2", "bob")

	msgs := drain(alice)
	if len(msgs) != 1 || msgs[0].Event != EventDisconnected {
		t.Fatalf("old room should hear a disconnected event, got %v", msgs)
	}
	payload := msgs[0].Data.(DisconnectedPayload)
	if payload.SocketID != "s2" || payload.Username != "bob" {
		t.Errorf("disconnected payload should name the mover, got %+v", payload)
	}

	msgs = drain(bob)
	last := msgs[len(msgs)-1]
	if last.Event != EventJoined {
		t.Fatalf("mover should land in the new room, got %v", msgs)
	}
	if joined := last.Data.(JoinedPayload); len(joined.Clients) != 1 {
		t.Errorf("new room should hold only the mover, got %d clients", len(joined.Clients))
	}
}

// Member panels read Participants from HTTP goroutines while the reactor
// handles rejoins. Run with -race.
func TestRejoinSafeAgainstPanelReaders(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	join(core, alice, "room-1", "alice")

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				for _, p := range core.registry.Participants("room-1") {
					_ = p.Username
					_ = p.JoinedAt
				}
			}
		}
	}()

	for i := 0; i < 200; i++ {
		join(core, alice, "room-1", "alice")
		drain(alice)
	}

	close(stop)
	<-done
}

func TestJoinRejectsInvalidInput(t *testing.T) {
	core := NewCore(NewRegistry())
	cl := newMember("s1")

	core.handleJoin(cl, JoinEvent{RoomID: "", Username: "alice"})
	msgs := drain(cl)
	if len(msgs) != 1 || msgs[0].Event != EventError {
		t.Fatalf("expected an error event for empty room id, got %v", msgs)
	}
	if core.registry.ParticipantCount() != 0 {
		t.Error("invalid join must not register the participant")
	}

	core.handleJoin(cl, JoinEvent{RoomID: "room-1", Username: "   "})
	msgs = drain(cl)
	if len(msgs) != 1 || msgs[0].Event != EventError {
		t.Fatalf("expected an error event for blank username, got %v", msgs)
	}
}

func TestCodeChangeExcludesSender(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	bob := newMember("s2")
	carol := newMember("s3")
	for i, cl := range []*Client{alice, bob, carol} {
		join(core, cl, "room-1", []string{"alice", "bob", "carol"}[i])
	}
	for _, cl := range []*Client{alice, bob, carol} {
		drain(cl)
	}

	core.handleCodeChange(alice, CodeChangeEvent{RoomID: "room-1", Code: "print(42)"})

	if msgs := drain(alice); len(msgs) != 0 {
		t.Errorf("sender must not receive its own code-change, got %d messages", len(msgs))
	}
	for _, cl := range []*Client{bob, carol} {
		msgs := drain(cl)
		if len(msgs) != 1 || msgs[0].Event != EventCodeChange {
			t.Fatalf("client %s: expected 1 code-change, got %v", cl.ID, msgs)
		}
		if payload := msgs[0].Data.(CodeChangePayload); payload.Code != "print(42)" {
			t.Errorf("client %s: code relayed verbatim expected, got %q", cl.ID, payload.Code)
		}
	}
}

func TestChatIncludesSender(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	bob := newMember("s2")
	join(core, alice, "room-1", "alice")
	join(core, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	core.handleChat(alice, SendMessageEvent{RoomID: "room-1", Username: "alice", Message: "hello"})

	for _, cl := range []*Client{alice, bob} {
		msgs := drain(cl)
		if len(msgs) != 1 || msgs[0].Event != EventReceiveMessage {
			t.Fatalf("client %s: expected 1 chat message, got %v", cl.ID, msgs)
		}
		payload := msgs[0].Data.(ChatPayload)
		if payload.Username != "alice" || payload.Message != "hello" {
			t.Errorf("client %s: unexpected chat payload %+v", cl.ID, payload)
		}
	}
}

func TestChatRejectsOversizeMessage(t *testing.T) {
	core := NewCore(NewRegistry(), WithChatLimit(8))

	alice := newMember("s1")
	bob := newMember("s2")
	join(core, alice, "room-1", "alice")
	join(core, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	core.handleChat(alice, SendMessageEvent{RoomID: "room-1", Username: "alice", Message: "this is far too long"})

	msgs := drain(alice)
	if len(msgs) != 1 || msgs[0].Event != EventError {
		t.Fatalf("sender should get an error for an oversize message, got %v", msgs)
	}
	if msgs := drain(bob); len(msgs) != 0 {
		t.Errorf("oversize message must not be relayed, got %v", msgs)
	}
}

func TestChatFallsBackToSenderUsername(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	join(core, alice, "room-1", "alice")
	drain(alice)

	core.handleChat(alice, SendMessageEvent{RoomID: "room-1", Message: "hi"})

	msgs := drain(alice)
	if payload := msgs[0].Data.(ChatPayload); payload.Username != "alice" {
		t.Errorf("expected sender username fallback, got %q", payload.Username)
	}
}

func TestGetCodeAsksElderToPushToRequester(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	bob := newMember("s2")
	carol := newMember("s3")
	join(core, alice, "room-1", "alice")
	join(core, bob, "room-1", "bob")
	join(core, carol, "room-1", "carol")
	for _, cl := range []*Client{alice, bob, carol} {
		drain(cl)
	}

	core.handleGetCode(carol, GetCodeEvent{RoomID: "room-1"})

	msgs := drain(alice)
	if len(msgs) != 1 || msgs[0].Event != EventSendCode {
		t.Fatalf("elder should receive the push request, got %v", msgs)
	}
	payload := msgs[0].Data.(SendCodePayload)
	if payload.SocketID != "s3" || payload.Code != "" {
		t.Errorf("push request should name the requester and carry no code, got %+v", payload)
	}

	if msgs := drain(bob); len(msgs) != 0 {
		t.Errorf("non-elder must not receive the push request, got %d messages", len(msgs))
	}
	if msgs := drain(carol); len(msgs) != 0 {
		t.Errorf("requester must not receive the push request, got %d messages", len(msgs))
	}
}

func TestGetCodeAloneIsNoop(t *testing.T) {
	core := NewCore(NewRegistry())

	carol := newMember("s1")
	join(core, carol, "room-1", "carol")
	drain(carol)

	core.handleGetCode(carol, GetCodeEvent{RoomID: "room-1"})

	if msgs := drain(carol); len(msgs) != 0 {
		t.Errorf("sole member bootstrap should be silent, got %v", msgs)
	}
}

func TestSendCodeRelaysToTargetOnly(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	bob := newMember("s2")
	carol := newMember("s3")
	join(core, alice, "room-1", "alice")
	join(core, bob, "room-1", "bob")
	join(core, carol, "room-1", "carol")
	for _, cl := range []*Client{alice, bob, carol} {
		drain(cl)
	}

	core.handleSendCode(alice, SendCodeEvent{Code: "x = 1", SocketID: "s3"})

	msgs := drain(carol)
	if len(msgs) != 1 || msgs[0].Event != EventSendCode {
		t.Fatalf("target should receive the pushed code, got %v", msgs)
	}
	if payload := msgs[0].Data.(SendCodePayload); payload.Code != "x = 1" {
		t.Errorf("expected pushed code, got %q", payload.Code)
	}

	if msgs := drain(bob); len(msgs) != 0 {
		t.Errorf("push must never broadcast, got %d messages", len(msgs))
	}
}

func TestSendCodeToGoneTargetIsDropped(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	join(core, alice, "room-1", "alice")
	drain(alice)

	core.handleSendCode(alice, SendCodeEvent{Code: "x = 1", SocketID: "no-such"})

	if msgs := drain(alice); len(msgs) != 0 {
		t.Errorf("push to a gone target should be silent, got %v", msgs)
	}
}

func TestLeaveAnnouncesToRemainingOnly(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	bob := newMember("s2")
	join(core, alice, "room-1", "alice")
	join(core, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	core.handleLeave(bob, LeaveRoomEvent{RoomID: "room-1"})

	msgs := drain(alice)
	if len(msgs) != 1 || msgs[0].Event != EventDisconnected {
		t.Fatalf("expected a disconnected event, got %v", msgs)
	}
	payload := msgs[0].Data.(DisconnectedPayload)
	if payload.SocketID != "s2" || payload.Username != "bob" {
		t.Errorf("disconnected payload should name the leaver, got %+v", payload)
	}

	if msgs := drain(bob); len(msgs) != 0 {
		t.Errorf("leaver should not receive its own announcement, got %v", msgs)
	}
}

func TestLeaveThenDisconnectAnnouncesOnce(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	bob := newMember("s2")
	join(core, alice, "room-1", "alice")
	join(core, bob, "room-1", "bob")
	drain(alice)
	drain(bob)

	// Voluntary leave, then the socket closes. The second removal finds
	// nothing and stays silent.
	core.handleLeave(bob, LeaveRoomEvent{RoomID: "room-1"})
	core.handleDisconnect(bob)

	if msgs := drain(alice); len(msgs) != 1 {
		t.Errorf("expected exactly one disconnected announcement, got %d", len(msgs))
	}
}

func TestRoomStartsFreshAfterLastMemberLeaves(t *testing.T) {
	core := NewCore(NewRegistry())

	alice := newMember("s1")
	join(core, alice, "room-1", "alice")
	core.handleDisconnect(alice)

	if core.registry.RoomCount() != 0 {
		t.Fatalf("expected room gone, got %d rooms", core.registry.RoomCount())
	}

	bob := newMember("s2")
	join(core, bob, "room-1", "bob")

	msgs := drain(bob)
	payload := msgs[0].Data.(JoinedPayload)
	if len(payload.Clients) != 1 {
		t.Errorf("fresh room should carry no stale members, got %d", len(payload.Clients))
	}
}

func TestFullBufferDropsInsteadOfBlocking(t *testing.T) {
	core := NewCore(NewRegistry())

	slow := &Client{ID: "s1", Message: make(chan *Message, 1)}
	fast := newMember("s2")
	core.handleJoin(slow, JoinEvent{RoomID: "room-1", Username: "slow"})
	join(core, fast, "room-1", "fast")
	drain(fast)

	done := make(chan struct{})
	go func() {
		// slow's buffer of 1 is already full with its joined event; these
		// must drop, not block the reactor.
		core.handleChat(fast, SendMessageEvent{RoomID: "room-1", Username: "fast", Message: "one"})
		core.handleChat(fast, SendMessageEvent{RoomID: "room-1", Username: "fast", Message: "two"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reactor blocked on a slow client")
	}
}

// fakeRecorder captures presence callbacks for assertions. Calls arrive on
// goroutines, so it is channel-backed.
type fakeRecorder struct {
	calls chan string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{calls: make(chan string, 16)}
}

func (f *fakeRecorder) MemberJoined(_ context.Context, roomID, username string, _ int) {
	f.calls <- "joined:" + roomID + ":" + username
}

func (f *fakeRecorder) MemberLeft(_ context.Context, roomID, username string, _ int) {
	f.calls <- "left:" + roomID + ":" + username
}

func (f *fakeRecorder) RoomOpened(_ context.Context, roomID string) {
	f.calls <- "opened:" + roomID
}

func (f *fakeRecorder) RoomClosed(_ context.Context, roomID string) {
	f.calls <- "closed:" + roomID
}

func (f *fakeRecorder) await(t *testing.T, want ...string) {
	t.Helper()
	got := make(map[string]bool)
	for range want {
		select {
		case call := <-f.calls:
			got[call] = true
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for recorder calls, have %v", got)
		}
	}
	for _, w := range want {
		if !got[w] {
			t.Errorf("missing recorder call %q, have %v", w, got)
		}
	}
}

func TestRecorderSeesRoomLifecycle(t *testing.T) {
	rec := newFakeRecorder()
	core := NewCore(NewRegistry(), WithRecorder(rec))

	alice := newMember("s1")
	join(core, alice, "room-1", "alice")
	rec.await(t, "opened:room-1", "joined:room-1:alice")

	bob := newMember("s2")
	join(core, bob, "room-1", "bob")
	rec.await(t, "joined:room-1:bob")

	core.handleDisconnect(bob)
	rec.await(t, "left:room-1:bob")

	core.handleDisconnect(alice)
	rec.await(t, "left:room-1:alice", "closed:room-1")
}

func TestRunSerializesEventsAndClosesChannelOnUnregister(t *testing.T) {
	core := NewCore(NewRegistry())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		core.Run(ctx)
	}()

	alice := newMember("s1")
	core.Inbound() <- Envelope{Sender: alice, Event: JoinEvent{RoomID: "room-1", Username: "alice"}}
	core.Unregister() <- alice

	// The reactor owns the close; after unregister the channel must drain
	// and then report closed.
	deadline := time.After(time.Second)
	for {
		select {
		case _, open := <-alice.Message:
			if !open {
				cancel()
				wg.Wait()
				return
			}
		case <-deadline:
			t.Fatal("client channel never closed after unregister")
		}
	}
}
