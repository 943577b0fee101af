package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"log/slog"

	"dlassist/internal/api"
	"dlassist/internal/daemon"
	"dlassist/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Dlassist", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String("impact", "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String("impact", "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually or rerun dlassist daemon stop"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.log().Debug("daemon stop requested")
	s.daemon.Stop()
	resp.Stopped = true
	s.log().Info("daemon stopped via IPC",
		logging.String(logging.FieldEventType, "daemon_stop"))
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	resp.StartedAt = status.StartedAt
	resp.DownloadsFolder = status.DownloadsFolder
	resp.JournalDBPath = status.JournalDBPath
	resp.LockPath = status.LockFilePath
	resp.SocketPath = status.SocketPath
	resp.DashboardAddr = status.DashboardAddr
	resp.Dependencies = api.FromDependencyStatuses(status.Dependencies)
	resp.Intakes = status.Intakes
	return nil
}

func (s *service) ProcessExisting(_ ProcessExistingRequest, resp *ProcessExistingResponse) error {
	s.log().Debug("existing-file sweep requested")
	dispatched, err := s.daemon.ProcessExisting(s.ctx)
	if err != nil {
		return err
	}
	resp.Dispatched = dispatched
	s.log().Info("existing files dispatched",
		logging.String(logging.FieldEventType, "process_existing"),
		logging.Int("dispatched_count", dispatched))
	return nil
}

func (s *service) RecentIntakes(req RecentIntakesRequest, resp *RecentIntakesResponse) error {
	entries, err := s.daemon.RecentIntakes(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = api.FromJournalEntries(entries)
	return nil
}

func (s *service) QuarantineEntries(_ QuarantineEntriesRequest, resp *QuarantineEntriesResponse) error {
	files, err := s.daemon.QuarantineEntries(s.ctx)
	if err != nil {
		return err
	}
	resp.Files = files
	return nil
}

func (s *service) ConfigGet(req ConfigGetRequest, resp *ConfigGetResponse) error {
	value, err := s.daemon.ConfigGet(req.Key)
	if err != nil {
		return err
	}
	resp.Key = req.Key
	resp.Value = value
	return nil
}

func (s *service) ConfigSet(req ConfigSetRequest, resp *ConfigSetResponse) error {
	if err := s.daemon.ConfigSet(req.Key, req.Value); err != nil {
		return err
	}
	value, err := s.daemon.ConfigGet(req.Key)
	if err != nil {
		return err
	}
	resp.Key = req.Key
	resp.Value = value
	s.log().Info("configuration updated via IPC",
		logging.String(logging.FieldEventType, "config_set"),
		logging.String("key", req.Key))
	return nil
}

func (s *service) ConfigAll(_ ConfigAllRequest, resp *ConfigAllResponse) error {
	tree, err := s.daemon.ConfigAll()
	if err != nil {
		return err
	}
	resp.Config = tree
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.daemon.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
