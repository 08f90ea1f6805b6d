package filestore

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DefaultPath is where uploads and reads are handled. It sits beside the
// files it serves under /vegetable/.
const DefaultPath = "/vegetable/api_endpoint.php"

// Server stores uploaded files in a directory and serves them back.
type Server struct {
	Dir    string
	Logger *zap.Logger
	engine *gin.Engine
}

type uploadRequest struct {
	FileName *string `json:"file_name"`
	Data     *string `json:"data"`
}

// New creates a Server. The endpoint answers every method on path; stored
// files are also served read-only under /vegetable/:name.
func New(dir, path string, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	if path == "" {
		path = DefaultPath
	}
	s := &Server{Dir: dir, Logger: logger, engine: gin.New()}
	s.engine.Use(gin.Recovery(), s.logRequests)
	s.engine.Any(path, s.endpoint)
	s.engine.GET("/vegetable/:name", func(c *gin.Context) { s.read(c, c.Param("name")) })
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.Logger.Info("file endpoint listening", zap.String("addr", addr), zap.String("dir", s.Dir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) endpoint(c *gin.Context) {
	switch c.Request.Method {
	case http.MethodPost:
		s.write(c)
	case http.MethodGet:
		name := c.Query("file_name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "File name not provided"})
			return
		}
		s.read(c, name)
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	}
}

func (s *Server) write(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.FileName == nil || req.Data == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format"})
		return
	}
	path, ok := s.path(*req.FileName)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data format"})
		return
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		s.Logger.Error("create data dir", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	if err := os.WriteFile(path, []byte(*req.Data), 0o644); err != nil {
		s.Logger.Error("save file", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File saved successfully"})
}

func (s *Server) read(c *gin.Context, name string) {
	path, ok := s.path(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

// path keeps only the base name so uploads cannot escape Dir.
func (s *Server) path(name string) (string, bool) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." || base == "" {
		return "", false
	}
	return filepath.Join(s.Dir, base), true
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.Logger.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)))
}
