package admin

import (
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"riichiserver/internal/mahjong"
	"riichiserver/internal/service"
	"riichiserver/internal/session"
	"riichiserver/internal/ticket"
)

func testManager() *session.Manager {
	svc := service.New(mahjong.DefaultRuleConfig(), nil)
	return session.NewManager(svc, 60, 8, 30, "")
}

func testMinter() *ticket.Minter {
	return ticket.NewMinter("test-secret", time.Minute)
}

type fakeLoad struct{ v float64 }

func (f fakeLoad) Sample() float64 { return f.v }

func freePort(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := lis.Addr().String()
	lis.Close()
	return addr
}

func TestHealthzReportsLoadSample(t *testing.T) {
	dir := t.TempDir()
	s, err := New("127.0.0.1:0", freePort(t), dir, false, fakeLoad{v: 0.42}, testManager(), testMinter())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.grpcLis.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if want := `"load":0.42`; !contains(rec.Body.String(), want) {
		t.Fatalf("expected body to report the load sample, got %s", rec.Body.String())
	}
}

func TestDownloadReplayRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	s, err := New("127.0.0.1:0", freePort(t), dir, false, nil, testManager(), testMinter())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.grpcLis.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/replays/..%2Fsecret", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Fatalf("expected a path-traversal game id to be rejected")
	}
}

func TestDownloadReplayServesExistingFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "g1.ndjson"), []byte(`{"type":"header"}`+"\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	s, err := New("127.0.0.1:0", freePort(t), dir, false, nil, testManager(), testMinter())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.grpcLis.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/replays/g1", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestCreateRoomReturnsAFreshRoomID(t *testing.T) {
	dir := t.TempDir()
	s, err := New("127.0.0.1:0", freePort(t), dir, false, nil, testManager(), testMinter())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.grpcLis.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/rooms", nil)
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !contains(rec.Body.String(), `"room_id"`) {
		t.Fatalf("expected a room_id in the response, got %s", rec.Body.String())
	}
}

func TestIssueTicketRejectsMissingFields(t *testing.T) {
	dir := t.TempDir()
	s, err := New("127.0.0.1:0", freePort(t), dir, false, nil, testManager(), testMinter())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.grpcLis.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tickets", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a missing username/room_id, got %d", rec.Code)
	}
}

func TestIssueTicketMintsASignedTicket(t *testing.T) {
	dir := t.TempDir()
	s, err := New("127.0.0.1:0", freePort(t), dir, false, nil, testManager(), testMinter())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer s.grpcLis.Close()

	rec := httptest.NewRecorder()
	body := `{"username":"alice","room_id":"r1"}`
	req := httptest.NewRequest(http.MethodPost, "/tickets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.httpSrv.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !contains(rec.Body.String(), `"ticket"`) {
		t.Fatalf("expected a ticket in the response, got %s", rec.Body.String())
	}
}

func contains(haystack, needle string) bool {
	return len(haystack) >= len(needle) && (func() bool {
		for i := 0; i+len(needle) <= len(haystack); i++ {
			if haystack[i:i+len(needle)] == needle {
				return true
			}
		}
		return false
	})()
}
