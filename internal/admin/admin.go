// Package admin is the operational side-channel: an HTTP mux for health,
// replay download, and the minimal room/ticket bootstrap the out-of-scope
// lobby service would otherwise own, plus a standard gRPC health service
// other infra can poll. Generalized from the teacher's gate/app.Run
// lifecycle (gin server started in its own goroutine, graceful Shutdown on
// signal) and common/http's thin gin wrapper, narrowed to this spec's small
// admin surface — no lobby login/session RPC, no user accounts (spec.md
// §1: the lobby/auth web server is out of scope).
package admin

import (
	"context"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/arl/statsviz"
	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"riichiserver/internal/obs"
	"riichiserver/internal/session"
	"riichiserver/internal/ticket"
)

// LoadSampler reports a 0..1-ish load figure the /healthz endpoint and the
// etcd lease both want to publish; cmd/gameserver adapts internal/obs's
// gopsutil-backed Sample/LoadInfo.Score into this interface.
type LoadSampler interface {
	Sample() float64
}

// Server bundles the gin HTTP mux and the grpc health service. Both listen
// on their own addresses (HTTPAddr, GrpcAddr) the way the teacher's gate
// and connector nodes each own a distinct port.
type Server struct {
	httpSrv   *http.Server
	grpcSrv   *grpc.Server
	grpcLis   net.Listener
	health    *health.Server
	replayDir string
	mgr       *session.Manager
	minter    *ticket.Minter
}

// New builds the admin surface: /healthz (200 while the health server
// reports SERVING), /debug/statsviz when enableStatsviz is set,
// /replays/:gameId for downloading a finished game's NDJSON file, and the
// room/ticket bootstrap routes (/rooms, /tickets) that stand in for the
// out-of-scope lobby service's room-creation and ticket-issuance calls —
// without them nothing in this process can ever create the room a ticket
// names, so some boundary has to expose Manager.CreateRoom and
// Minter.Mint to a caller outside the WebSocket protocol itself.
func New(httpAddr, grpcAddr, replayDir string, enableStatsviz bool, load LoadSampler, mgr *session.Manager, minter *ticket.Minter) (*Server, error) {
	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return nil, err
	}

	hsrv := health.NewServer()
	hsrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	gsrv := grpc.NewServer()
	healthpb.RegisterHealthServer(gsrv, hsrv)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		httpSrv:   &http.Server{Addr: httpAddr, Handler: engine},
		grpcSrv:   gsrv,
		grpcLis:   lis,
		health:    hsrv,
		replayDir: replayDir,
		mgr:       mgr,
		minter:    minter,
	}

	engine.GET("/healthz", func(c *gin.Context) {
		status := "ok"
		sample := 0.0
		if load != nil {
			sample = load.Sample()
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "load": sample})
	})
	engine.GET("/replays/:gameId", s.downloadReplay)
	engine.POST("/rooms", s.createRoom)
	engine.POST("/tickets", s.issueTicket)
	if enableStatsviz {
		sv, err := statsviz.NewServer()
		if err == nil {
			engine.GET("/debug/statsviz/*any", gin.WrapH(sv.Index()))
			engine.GET("/debug/statsviz/ws", gin.WrapH(sv.Ws()))
		} else {
			obs.Warn("admin: statsviz init failed: %v", err)
		}
	}

	return s, nil
}

func (s *Server) downloadReplay(c *gin.Context) {
	gameID := c.Param("gameId")
	if gameID == "" || filepath.Base(gameID) != gameID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}
	path := filepath.Join(s.replayDir, gameID+".ndjson")
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such replay"})
		return
	}
	c.File(path)
}

// createRoom opens a fresh lobby room and returns its id, the boundary call
// a lobby process makes before minting any ticket that names it.
func (s *Server) createRoom(c *gin.Context) {
	room := s.mgr.CreateRoom()
	c.JSON(http.StatusOK, gin.H{"room_id": room.ID})
}

// issueTicket mints a signed game ticket for {username, room_id}, the
// boundary call a lobby process makes once a player has been seated into
// a room it created elsewhere.
func (s *Server) issueTicket(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		RoomID   string `json:"room_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and room_id are required"})
		return
	}
	tok, err := s.minter.Mint(req.Username, req.RoomID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mint ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": tok})
}

// UpdateLoad flips the grpc health status to NOT_SERVING once load crosses
// 1.0 (fully saturated), so an etcd-watching front door stops routing new
// joins here before the node actually falls over.
func (s *Server) UpdateLoad(load float64) {
	status := healthpb.HealthCheckResponse_SERVING
	if load >= 1.0 {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Start runs the HTTP and gRPC servers in their own goroutines. Errors are
// logged, not returned — this mirrors the teacher's app.Run pattern of a
// fire-and-forget listener goroutine plus a synchronous Shutdown path.
func (s *Server) Start() {
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			obs.Error("admin: http server failed: %v", err)
		}
	}()
	go func() {
		if err := s.grpcSrv.Serve(s.grpcLis); err != nil {
			obs.Error("admin: grpc server failed: %v", err)
		}
	}()
}

// Shutdown drains both servers. The grpc health server is told NOT_SERVING
// first so an etcd-watching client stops routing here mid-drain.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()
	s.grpcSrv.GracefulStop()
	_ = s.httpSrv.Shutdown(ctx)
}
