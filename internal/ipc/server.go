package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"dirchurn/internal/api"
	"dirchurn/internal/daemon"
	"dirchurn/internal/logging"
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
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
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
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"))
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
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
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

func (s *service) StartCreating(_ WorkerRequest, resp *AckResponse) error {
	if err := s.daemon.StartCreating(); err != nil {
		return err
	}
	*resp = AckResponse{OK: true, Message: "file creation started"}
	s.log().Info("producer started via IPC", logging.String(logging.FieldEventType, "ipc_start_creating"))
	return nil
}

func (s *service) StopCreating(_ WorkerRequest, resp *AckResponse) error {
	s.daemon.StopCreating()
	*resp = AckResponse{OK: true, Message: "file creation stopped"}
	s.log().Info("producer stopped via IPC", logging.String(logging.FieldEventType, "ipc_stop_creating"))
	return nil
}

func (s *service) SetCreationInterval(req IntervalRequest, resp *AckResponse) error {
	if err := s.daemon.SetCreationInterval(req.IntervalMillis); err != nil {
		return err
	}
	*resp = AckResponse{OK: true, Message: fmt.Sprintf("creation interval set to %d ms", req.IntervalMillis)}
	return nil
}

func (s *service) StartDeleting(_ WorkerRequest, resp *AckResponse) error {
	if err := s.daemon.StartDeleting(); err != nil {
		return err
	}
	*resp = AckResponse{OK: true, Message: "file deletion started"}
	s.log().Info("consumer started via IPC", logging.String(logging.FieldEventType, "ipc_start_deleting"))
	return nil
}

func (s *service) StopDeleting(_ WorkerRequest, resp *AckResponse) error {
	s.daemon.StopDeleting()
	*resp = AckResponse{OK: true, Message: "file deletion stopped"}
	s.log().Info("consumer stopped via IPC", logging.String(logging.FieldEventType, "ipc_stop_deleting"))
	return nil
}

func (s *service) SetDeletionInterval(req IntervalRequest, resp *AckResponse) error {
	if err := s.daemon.SetDeletionInterval(req.IntervalMillis); err != nil {
		return err
	}
	*resp = AckResponse{OK: true, Message: fmt.Sprintf("deletion interval set to %d ms", req.IntervalMillis)}
	return nil
}

func (s *service) Toggle(_ ToggleRequest, resp *ToggleResponse) error {
	running, err := s.daemon.Toggle()
	if err != nil {
		return err
	}
	resp.Running = running
	return nil
}

func (s *service) UpdatePath(req UpdatePathRequest, resp *UpdatePathResponse) error {
	if err := s.daemon.UpdatePath(req.Path); err != nil {
		if !errors.Is(err, daemon.ErrWatchFailed) {
			return err
		}
		resp.Warning = err.Error()
	}
	resp.Dir = s.daemon.Dir()
	return nil
}

func (s *service) CurrentFiles(_ CurrentFilesRequest, resp *CurrentFilesResponse) error {
	resp.Dir = s.daemon.Dir()
	resp.Files = s.daemon.CurrentFiles()
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	resp.Status = daemon.StatusPayload(s.daemon.Status())
	return nil
}

func (s *service) EmptyFolder(_ EmptyFolderRequest, resp *EmptyFolderResponse) error {
	removed, err := s.daemon.EmptyFolder()
	resp.Removed = removed
	return err
}

func (s *service) Journal(req JournalRequest, resp *JournalResponse) error {
	entries, err := s.daemon.Journal(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = api.FromJournalEntries(entries)
	return nil
}
