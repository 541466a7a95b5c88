package ticket

import (
	"sync"
	"testing"
	"time"
)

type mapReplayCache struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newMapReplayCache() *mapReplayCache {
	return &mapReplayCache{seen: make(map[string]bool)}
}

func (c *mapReplayCache) CheckAndMark(jti string, ttl time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seen[jti] {
		return true
	}
	c.seen[jti] = true
	return false
}

func TestMintAndVerifyRoundTrip(t *testing.T) {
	minter := NewMinter("shared-secret", time.Minute)
	verifier := NewVerifier("shared-secret", newMapReplayCache())

	raw, err := minter.Mint("alice", "room-7")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	claims, err := verifier.Verify(raw)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Username != "alice" || claims.RoomID != "room-7" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyRejectsBadSecret(t *testing.T) {
	minter := NewMinter("secret-a", time.Minute)
	verifier := NewVerifier("secret-b", newMapReplayCache())

	raw, err := minter.Mint("alice", "room-7")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := verifier.Verify(raw); err == nil {
		t.Fatalf("expected verification to fail with a mismatched secret")
	}
}

func TestVerifyRejectsExpiredTicket(t *testing.T) {
	minter := NewMinter("shared-secret", -time.Minute)
	verifier := NewVerifier("shared-secret", newMapReplayCache())

	raw, err := minter.Mint("alice", "room-7")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := verifier.Verify(raw); err != ErrExpired {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerifyRejectsReplayedTicket(t *testing.T) {
	minter := NewMinter("shared-secret", time.Minute)
	verifier := NewVerifier("shared-secret", newMapReplayCache())

	raw, err := minter.Mint("alice", "room-7")
	if err != nil {
		t.Fatalf("mint failed: %v", err)
	}
	if _, err := verifier.Verify(raw); err != nil {
		t.Fatalf("first verify should succeed: %v", err)
	}
	if _, err := verifier.Verify(raw); err != ErrReplayed {
		t.Fatalf("expected ErrReplayed on second use, got %v", err)
	}
}
