package server

import (
	"context"
	"io"
	"net"
	"time"

	"tomat/internal/format"
	"tomat/internal/logging"
	"tomat/internal/protocol"
)

// watch pushes a status line every interval until the client goes away
// or ctx is cancelled. The lock is only held while taking each snapshot.
func (s *Server) watch(ctx context.Context, conn net.Conn, req protocol.Request) {
	var args protocol.WatchArgs
	if err := req.DecodeArgs(&args); err != nil {
		s.write(conn, protocol.Failure(err.Error()))
		return
	}
	interval, err := args.IntervalDuration()
	if err != nil {
		s.write(conn, protocol.Failure(err.Error()))
		return
	}
	kind, err := format.ParseKind(args.Output)
	if err != nil {
		s.write(conn, protocol.Failure(err.Error()))
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Client input is discarded; EOF or a read error ends the stream
	go func() {
		_, _ = io.Copy(io.Discard, conn)
		cancel()
	}()

	logging.Logger.Debug("Watch started", "interval", interval, "output", kind)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if !s.write(conn, s.statusResponse(s.Snapshot(), kind, args.Format)) {
			return
		}

		select {
		case <-ctx.Done():
			logging.Logger.Debug("Watch ended")
			return
		case <-ticker.C:
		}
	}
}
