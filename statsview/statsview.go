// Package statsview serves live charts of the emulator process, heap,
// goroutines and GC pauses, while a game runs.
package statsview

import (
	"errors"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/golang/glog"
)

// DefaultAddress is where -statsview listens unless -statsaddr says otherwise.
const DefaultAddress = "localhost:12600"

const path = "/debug/statsview"

// Server is a statistics page running in the background.
type Server struct {
	addr string
	mgr  *statsview.ViewManager
}

// Start serves the statistics on addr. Failing to listen is logged, the
// emulator keeps running without the page.
func Start(addr string) *Server {
	viewer.SetConfiguration(viewer.WithAddr(addr), viewer.WithTheme(viewer.ThemeWesteros))
	s := &Server{addr: addr, mgr: statsview.New()}
	go func() {
		if err := s.mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			glog.Errorf("Runtime statistics server stopped: %v", err)
		}
	}()
	glog.Infof("Runtime statistics at %s", s.URL())
	return s
}

// URL returns the address of the charts page.
func (s *Server) URL() string {
	return "http://" + s.addr + path
}

func (s *Server) Stop() {
	s.mgr.Stop()
}
