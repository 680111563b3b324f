// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/bubbletea"
	"github.com/charmbracelet/wish/logging"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/binkynet/SwitchHal/pkg/service"
	"github.com/binkynet/SwitchHal/pkg/ui"
)

// Config for the HTTP server.
type Config struct {
	// Host interface to listen on
	Host string
	// Port to listen on for HTTP requests
	HTTPPort int
	// Port to listen on for SSH console sessions (0 disables the console)
	SSHPort int
	// Path of the SSH host key, created when missing
	SSHHostKeyPath string
}

// Service that the server exposes.
type Service interface {
	Switches() []service.Status
	Get(name string) (service.Status, error)
	Execute(name string, action service.Action) (service.Status, error)
}

// Server runs the HTTP server for the service.
type Server struct {
	Config
	log     zerolog.Logger
	service Service
}

// New configures a new Server.
func New(cfg Config, log zerolog.Logger, svc Service) (*Server, error) {
	return &Server{
		Config:  cfg,
		log:     log.With().Str("component", "server").Logger(),
		service: svc,
	}, nil
}

// Run the server until the given context is canceled.
func (s *Server) Run(ctx context.Context) error {
	log := s.log
	httpAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.HTTPPort))
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on address %s", httpAddr)
	}
	httpSrv := http.Server{
		Handler: s.newRouter(),
	}

	serveErr := make(chan error, 1)
	log.Debug().Str("address", httpAddr).Msg("Serving HTTP")
	go func() {
		if err := httpSrv.Serve(httpLis); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
		close(serveErr)
		log.Debug().Str("address", httpAddr).Msg("Done Serving HTTP")
	}()

	var sshServer *ssh.Server
	sshErr := make(chan error, 1)
	if s.SSHPort > 0 {
		sshAddr := net.JoinHostPort(s.Host, strconv.Itoa(s.SSHPort))
		sshServer, err = s.newSSHServer(sshAddr)
		if err != nil {
			httpSrv.Close()
			return errors.Wrap(err, "could not start SSH server")
		}
		log.Debug().Str("address", sshAddr).Msg("Serving SSH")
		go func() {
			if err := sshServer.ListenAndServe(); err != nil && err != ssh.ErrServerClosed {
				sshErr <- err
			}
			close(sshErr)
			log.Debug().Str("address", sshAddr).Msg("Done Serving SSH")
		}()
	}

	var result error
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		result = errors.Wrap(err, "failed to serve HTTP")
	case err := <-sshErr:
		result = errors.Wrap(err, "failed to serve SSH")
	}

	log.Info().Msg("Closing server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()
	if sshServer != nil {
		sshServer.Shutdown(shutdownCtx)
	}
	if err := httpSrv.Shutdown(shutdownCtx); err != nil && result == nil {
		result = err
	}
	return result
}

// newSSHServer builds an SSH server that runs the switch console in
// every session.
func (s *Server) newSSHServer(addr string) (*ssh.Server, error) {
	keyPath := s.SSHHostKeyPath
	if keyPath == "" {
		keyPath = ".ssh/id_ed25519"
	}
	return wish.NewServer(
		wish.WithAddress(addr),
		wish.WithHostKeyPath(keyPath),
		wish.WithMiddleware(
			bubbletea.Middleware(s.consoleHandler),
			// The last item in the chain is the first to be called.
			activeterm.Middleware(),
			logging.Middleware(),
		),
	)
}

func (s *Server) consoleHandler(sess ssh.Session) (tea.Model, []tea.ProgramOption) {
	s.log.Debug().Str("user", sess.User()).Msg("Console session")
	return ui.NewConsole(s.service), []tea.ProgramOption{tea.WithAltScreen()}
}

// newRouter builds the HTTP routes.
func (s *Server) newRouter() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/v1/switches", s.handleList)
	e.GET("/v1/switches/:name", s.handleGet)
	e.PUT("/v1/switches/:name/:action", s.handleExecute)
	return e
}

func (s *Server) handleList(c echo.Context) error {
	return c.JSON(http.StatusOK, s.service.Switches())
}

func (s *Server) handleGet(c echo.Context) error {
	st, err := s.service.Get(c.Param("name"))
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (s *Server) handleExecute(c echo.Context) error {
	action, err := service.ParseAction(c.Param("action"))
	if err != nil {
		return s.sendError(c, err)
	}
	st, err := s.service.Execute(c.Param("name"), action)
	if err != nil {
		return s.sendError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

type errorResponse struct {
	Error string `json:"error"`
}

// sendError sends the given error with a status code that matches its cause.
func (s *Server) sendError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrUnknownSwitch):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidAction), errors.Is(err, service.ErrNotAnOutput):
		status = http.StatusBadRequest
	default:
		s.log.Warn().Err(err).Str("path", c.Path()).Msg("Request failed")
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}
