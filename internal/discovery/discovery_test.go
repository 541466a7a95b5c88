package discovery

import (
	"encoding/json"
	"testing"

	"riichiserver/internal/config"
)

func TestNodeKeyIsNamespacedUnderGame(t *testing.T) {
	n := Node{NodeID: "node-1", Addr: "10.0.0.5:9000", Load: 0.5}
	if got, want := n.key(), "game/node-1"; got != want {
		t.Fatalf("key() = %q, want %q", got, want)
	}
}

func TestNodeRoundTripsThroughJSON(t *testing.T) {
	n := Node{NodeID: "node-1", Addr: "10.0.0.5:9000", Load: 0.75}
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Node
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != n {
		t.Fatalf("round trip mismatch: got %+v, want %+v", out, n)
	}
}

func TestRegisterRejectsEmptyNodeID(t *testing.T) {
	_, err := Register(config.EtcdConf{Addrs: []string{"127.0.0.1:2379"}}, "", "127.0.0.1:9000")
	if err == nil {
		t.Fatalf("expected an error for an empty nodeID")
	}
}
