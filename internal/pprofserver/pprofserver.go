// Package pprofserver exposes the runtime profiling endpoints on a loopback
// port separate from the API listener, so profiles are reachable from the host
// without ever being routed to players.
package pprofserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
)

func Handle(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
}

// Launch starts the pprof server on the ipv6 loopback address ::1 and the
// given port, e.g. ":6060".
func Launch(port string, logger *slog.Logger) {
	go func() {
		mux := http.NewServeMux()
		Handle(mux)
		addr := fmt.Sprintf("[::1]%s", port)
		logger.Info("starting pprof server", "pprof_addr", addr)
		server := &http.Server{
			Addr:    addr,
			Handler: mux,
		}
		err := server.ListenAndServe()
		logger.Error(err.Error())
		os.Exit(0)
	}()
}
