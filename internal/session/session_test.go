package session

import (
	"context"
	"testing"
)

func TestCurrent_GuestWhenUnbound(t *testing.T) {
	if Current(context.Background()) != Guest() {
		t.Error("Current() on a bare context should return the guest session")
	}
	if Current(nil) != Guest() {
		t.Error("Current(nil) should return the guest session")
	}
}

func TestWithSession_NilSubstitutesGuest(t *testing.T) {
	ctx := WithSession(context.Background(), nil)
	if Current(ctx) != Guest() {
		t.Error("WithSession(ctx, nil) should bind the guest session")
	}
}

func TestWithSession_RoundTrip(t *testing.T) {
	sess := New("bob")
	ctx := WithSession(context.Background(), sess)

	if got := Current(ctx); got != sess {
		t.Errorf("Current() = %v, want %v", got, sess)
	}
}

func TestPutAll_MergesProperties(t *testing.T) {
	sess := New("carol")
	sess.PutAll(map[string]any{"role": "admin"})
	sess.PutAll(map[string]any{"team": "platform"})

	props := sess.Properties()
	if props["role"] != "admin" || props["team"] != "platform" {
		t.Errorf("Properties() = %v, missing merged keys", props)
	}
}

func TestSnapshot_IsIndependentCopy(t *testing.T) {
	sess := New("dave")
	sess.PutAll(map[string]any{"k": "v1"})

	snap := Snapshot(sess)
	sess.PutAll(map[string]any{"k": "v2"})

	if snap["k"] != "v1" {
		t.Errorf("snapshot should not observe later mutations, got %v", snap["k"])
	}
	if sess.Properties()["k"] != "v2" {
		t.Error("live session should observe the later mutation")
	}
}

func TestSnapshot_Nil(t *testing.T) {
	if Snapshot(nil) != nil {
		t.Error("Snapshot(nil) should return nil")
	}
}
