package ccsession

import (
	"context"
	"testing"
	"time"
)

// gatedSink blocks every Emit until released, so tests can fill the
// dispatcher buffer deterministically.
type gatedSink struct {
	gate    chan struct{}
	emitted chan AuditEvent
}

func newGatedSink() *gatedSink {
	return &gatedSink{
		gate:    make(chan struct{}),
		emitted: make(chan AuditEvent, 64),
	}
}

func (s *gatedSink) Emit(_ context.Context, event AuditEvent) {
	<-s.gate
	s.emitted <- event
}

func TestAuditDispatcherDelivers(t *testing.T) {
	sink := NewChannelSink(8)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 8}, sink)
	defer d.Close()

	d.Emit(context.Background(), AuditEvent{EventType: "login_applied", Success: true})

	select {
	case event := <-sink.Events():
		if event.EventType != "login_applied" || !event.Success {
			t.Fatalf("event = %+v", event)
		}
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestAuditDispatcherDisabled(t *testing.T) {
	if d := newAuditDispatcher(AuditConfig{Enabled: false}, NewChannelSink(1)); d != nil {
		t.Fatal("disabled config produced a dispatcher")
	}

	// A nil dispatcher absorbs calls; the coordinator never checks.
	var d *auditDispatcher
	d.Emit(context.Background(), AuditEvent{})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher reported drops")
	}
}

func TestAuditDispatcherDropsUnderBackpressure(t *testing.T) {
	sink := newGatedSink()
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 2, DropIfFull: true}, sink)

	// The run loop parks on the gated sink with one event; two more fill
	// the buffer; everything after that must drop without blocking.
	for i := 0; i < 8; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	}

	deadline := time.After(time.Second)
	for d.Dropped() == 0 {
		select {
		case <-deadline:
			t.Fatal("no events dropped with a full buffer")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	close(sink.gate)
	d.Close()
}

func TestAuditDispatcherCloseDrains(t *testing.T) {
	sink := NewChannelSink(16)
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 16}, sink)

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	}
	d.Close()

	for i := 0; i < 5; i++ {
		select {
		case <-sink.Events():
		default:
			t.Fatalf("only %d of 5 events delivered after Close", i)
		}
	}

	// Events after Close are ignored.
	d.Emit(context.Background(), AuditEvent{EventType: "logout"})
	select {
	case <-sink.Events():
		t.Fatal("event accepted after Close")
	default:
	}
}
