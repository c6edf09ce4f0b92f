// Package server serves the simulator UI assets over loopback HTTP so a
// generated share link opens against a local checkout of the UI.
package server

import (
	"fmt"
	"net"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
)

// Server hosts a simulator-tools checkout. Asset requests use a handful of
// absolute prefixes that all resolve inside the checkout, with everything
// else falling back to the UI bundle directory.
type Server struct {
	router   *gin.Engine
	listener net.Listener
}

// assetPrefixes are checkout-rooted directories the UI requests absolutely.
var assetPrefixes = []string{"icons", "courseimages", "fonts", "strings"}

// assetFiles are checkout-rooted JSON files the UI requests absolutely.
var assetFiles = []string{"skill_meta.json", "umas.json", "icons.json"}

// New builds the asset router. toolsDir is the simulator-tools checkout;
// the UI bundle itself lives in toolsDir/<bundle>.
func New(toolsDir, bundle string) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Static("/uma-tools", toolsDir)
	for _, prefix := range assetPrefixes {
		router.Static("/"+prefix, filepath.Join(toolsDir, prefix))
	}
	for _, file := range assetFiles {
		router.StaticFile("/"+file, filepath.Join(toolsDir, file))
	}
	router.NoRoute(gin.WrapH(http.FileServer(http.Dir(filepath.Join(toolsDir, bundle)))))

	return &Server{router: router}
}

// Start listens on 127.0.0.1:port (0 picks an ephemeral port) and serves in
// the background. It returns the bound port.
func (s *Server) Start(port int) (int, error) {
	l, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, fmt.Errorf("cannot listen: %w", err)
	}
	s.listener = l

	go func() {
		_ = http.Serve(l, s.router)
	}()

	return l.Addr().(*net.TCPAddr).Port, nil
}

// Close stops the listener.
func (s *Server) Close() error {
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}
