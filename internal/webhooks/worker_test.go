package webhooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"fleetcomp/internal/model"
	"fleetcomp/internal/store"
)

func TestSignVerify(t *testing.T) {
	body := []byte(`{"type":"violation.recorded"}`)
	sig := Sign("s3cret", body)
	if !Verify("s3cret", body, sig) {
		t.Fatal("signature must verify")
	}
	if Verify("wrong", body, sig) {
		t.Fatal("wrong secret must not verify")
	}
	if Verify("s3cret", []byte("tampered"), sig) {
		t.Fatal("tampered body must not verify")
	}
}

func TestNextBackoff(t *testing.T) {
	if nextBackoff(1) != 500*time.Millisecond {
		t.Fatalf("attempt 1 = %v", nextBackoff(1))
	}
	if nextBackoff(3) != 2*time.Second {
		t.Fatalf("attempt 3 = %v", nextBackoff(3))
	}
	if nextBackoff(12) != 30*time.Second {
		t.Fatalf("cap = %v", nextBackoff(12))
	}
}

func TestPublishDeliversSignedEvent(t *testing.T) {
	got := make(chan *http.Request, 1)
	bodies := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got <- r
		bodies <- b
		rw.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	st := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := st.CreateSubscription(ctx, model.Subscription{
		ID: "s1", URL: srv.URL, Events: []string{EventViolationRecorded}, Secret: "topsecret",
	}); err != nil {
		t.Fatalf("subscription: %v", err)
	}

	w := NewWorker(st, nil, nil, 3, time.Second)
	w.Start(ctx)
	w.Publish(ctx, EventViolationRecorded, map[string]string{"driverId": "d1"})

	select {
	case r := <-got:
		if r.Header.Get("X-Fleetcomp-Event") != EventViolationRecorded {
			t.Fatalf("event header = %s", r.Header.Get("X-Fleetcomp-Event"))
		}
		body := <-bodies
		if !Verify("topsecret", body, r.Header.Get(SignatureHeader)) {
			t.Fatal("delivered body does not verify")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("delivery never arrived")
	}
}

func TestPublishSkipsUnmatchedEvents(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		rw.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := st.CreateSubscription(ctx, model.Subscription{
		ID: "s1", URL: srv.URL, Events: []string{EventAssignmentBlocked},
	}); err != nil {
		t.Fatalf("subscription: %v", err)
	}

	w := NewWorker(st, nil, nil, 3, time.Second)
	w.Start(ctx)
	w.Publish(ctx, EventDutyStatusChanged, nil)
	time.Sleep(200 * time.Millisecond)
	if hits.Load() != 0 {
		t.Fatalf("unmatched event delivered %d times", hits.Load())
	}
}

func TestDeliveryRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			rw.WriteHeader(http.StatusInternalServerError)
			return
		}
		rw.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	st := store.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if _, err := st.CreateSubscription(ctx, model.Subscription{ID: "s1", URL: srv.URL}); err != nil {
		t.Fatalf("subscription: %v", err)
	}

	w := NewWorker(st, nil, nil, 3, time.Second)
	w.Start(ctx)
	w.Publish(ctx, EventAssignmentCompleted, nil)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if calls.Load() >= 2 {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("calls = %d, want retry after 500", calls.Load())
}
