package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	rierrors "github.com/markm-portfolio/repoindex/pkg/errors"
)

const (
	indexFile       = "index.html"
	shutdownTimeout = 5 * time.Second
)

// serveCommand creates the command that serves the generated site.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generated site over HTTP",
		Long: `Serve publishes the directory holding the generated index. Requests for a
directory return its index.html; anything missing is a 404.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Serve.Addr
			}
			if !cmd.Flags().Changed("dir") {
				dir = filepath.Dir(cfg.Output)
			}
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				return rierrors.New(rierrors.ErrCodeFileNotFound, "site directory %s does not exist; run \"repoindex generate\" first", dir)
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return rierrors.Wrap(rierrors.ErrCodeNetwork, err, "listen on %s", addr)
			}
			printSuccess(cmd.OutOrStdout(), "Serving %s on %s", dir, StyleLink.Render("http://"+ln.Addr().String()))
			return serveSite(cmd.Context(), ln, newSiteHandler(os.DirFS(dir), c.Logger), c.Logger)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().StringVar(&dir, "dir", "", "site directory (default: the output file's directory)")

	return cmd
}

// serveSite runs an HTTP server on ln until ctx is done, then shuts it down
// gracefully.
func serveSite(ctx context.Context, ln net.Listener, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// newSiteHandler routes GET and HEAD requests to files in site.
func newSiteHandler(site fs.FS, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(middleware.GetHead)
	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		serveFile(w, req, site, chi.URLParam(req, "*"))
	})
	return r
}

// serveFile writes the file named by the URL path p. Directories resolve to
// their index.html.
func serveFile(w http.ResponseWriter, r *http.Request, site fs.FS, p string) {
	name := strings.TrimPrefix(path.Clean("/"+p), "/")
	if name == "" {
		name = "."
	}

	info, err := fs.Stat(site, name)
	if err == nil && info.IsDir() {
		name = path.Join(name, indexFile)
		info, err = fs.Stat(site, name)
	}
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	f, err := site.Open(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	rs, ok := f.(io.ReadSeeker)
	if !ok {
		http.Error(w, "file is not seekable", http.StatusInternalServerError)
		return
	}
	http.ServeContent(w, r, path.Base(name), info.ModTime(), rs)
}

// requestLogger logs one debug line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start))
		})
	}
}
