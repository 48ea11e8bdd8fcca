package middleware

import (
	"testing"
	"time"
)

func TestTokenBucketExhaustion(t *testing.T) {
	bucket := NewTokenBucket(3, 0.0001) // effectively no refill during the test

	for i := 0; i < 3; i++ {
		if !bucket.Allow() {
			t.Fatalf("request %d denied before bucket emptied", i+1)
		}
	}
	if bucket.Allow() {
		t.Error("request allowed after bucket emptied")
	}
}

func TestTokenBucketRefill(t *testing.T) {
	bucket := NewTokenBucket(1, 1000) // refills fast enough to observe

	if !bucket.Allow() {
		t.Fatal("first request denied")
	}
	if bucket.Allow() {
		t.Fatal("second immediate request should be denied")
	}

	time.Sleep(5 * time.Millisecond)
	if !bucket.Allow() {
		t.Error("request denied after refill window")
	}
}

func TestRateLimiterIsolatesKeys(t *testing.T) {
	rl := NewRateLimiter(1, 3600)

	if !rl.Allow("1.1.1.1") {
		t.Fatal("first client denied")
	}
	if rl.Allow("1.1.1.1") {
		t.Error("first client should be exhausted")
	}
	if !rl.Allow("2.2.2.2") {
		t.Error("second client must have its own bucket")
	}
}
