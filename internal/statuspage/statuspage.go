// Package statuspage serves the read-only lobby-count HTML page and the
// Legacy-era ad-banner responder described in spec.md §6.
// Grounded on Seednode-partybox's web.go (httprouter.New, http.Server with
// explicit Idle/Read timeouts) for the server shape, and
// original_source/InternetGamesServer/SocketHttp.cpp for the status page's
// exact header framing (Content-Length computed from the rendered body,
// Connection: close, no chunked encoding).
package statuspage

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/udisondev/boardlink/internal/constants"
	"github.com/udisondev/boardlink/internal/lobby"
)

const readTimeout = 10 * time.Second

// LobbyCounter is the subset of lobby.Manager the page needs.
type LobbyCounter interface {
	Counts() []lobby.BucketCount
}

// New builds the HTTP server; Serve blocks until ctx is cancelled.
func New(bind string, port int, disableXPAdBanner bool, counter LobbyCounter) *http.Server {
	router := httprouter.New()
	router.GET("/", serveStatus(counter))
	if !disableXPAdBanner {
		router.GET("/windows/ad.asp", serveAdHTML())
		router.GET("/banner.png", serveBannerPNG())
	}

	return &http.Server{
		Addr:              net.JoinHostPort(bind, strconv.Itoa(port)),
		Handler:           router,
		IdleTimeout:       10 * time.Minute,
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readTimeout,
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down gracefully. If
// ln is non-nil, srv serves on it directly (the caller already bound the
// socket, e.g. to fall back off the privileged default port); otherwise
// Serve binds srv.Addr itself.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	var err error
	if ln != nil {
		err = srv.Serve(ln)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("status page server: %w", err)
	}
	return nil
}

func writeHTMLResponse(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/html; charset=UTF-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Connection", "close")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func serveStatus(counter LobbyCounter) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		writeHTMLResponse(w, renderStatusPage(counter.Counts()))
	}
}

func renderStatusPage(counts []lobby.BucketCount) string {
	var rows strings.Builder
	for _, bc := range counts {
		fmt.Fprintf(&rows, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td></tr>\n",
			html.EscapeString(bc.Era.String()),
			html.EscapeString(bc.Game.String()),
			html.EscapeString(bc.Skill.String()),
			bc.Waiting,
			bc.Total,
		)
	}
	return `<html>
	<head>
		<title>Lobbies - boardlink</title>
		<style>
			table { font-size: large; border: 1px solid black; border-collapse: collapse; }
			table tr * { padding: 10px; }
			table tr td, table tr th { text-align: center; white-space: pre; border: 1px solid black; }
		</style>
	</head>
	<body>
		<table>
			<tr><th>Era</th><th>Game</th><th>Skill</th><th>Waiting</th><th>Total</th></tr>
` + rows.String() + `		</table>
	</body>
</html>
`
}
