// Package xcallure converts recorded Xcode test cases into normalized
// allure-style report records and serves them over HTTP.
package xcallure

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xcreports/xcallure/internal/convert"
	"github.com/xcreports/xcallure/internal/hook"
	"github.com/xcreports/xcallure/internal/metric"
	"github.com/xcreports/xcallure/internal/storage"
)

type Server struct {
	config     Config
	configFile string

	log *slog.Logger

	storage *storage.Storage
	hooks   []hook.ReportListener
	cron    *cron.Cron

	historyID  convert.HistoryIDProvider
	parameters convert.ParametersProvider

	started    chan struct{}
	port       int
	httpServer *http.Server
}

type option func(s *Server)

// New configures a new Server instance.
func New(opts ...option) *Server {
	s := &Server{
		config:     defaultConfig(),
		log:        slog.Default(),
		historyID:  convert.FullNameHistoryID{},
		parameters: convert.DestinationParameters{},
		started:    make(chan struct{}),
	}

	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *Server) Run() error {
	if err := s.parseFlags(); err != nil {
		return err
	}

	if err := s.initHooks(); err != nil {
		return err
	}

	st, err := storage.New(s.config.DatabaseFile, s.log)
	if err != nil {
		return err
	}
	s.storage = st

	if err := s.startRetention(); err != nil {
		return err
	}

	return s.runHTTP()
}

// WaitForStartup blocks until the HTTP server accepts connections.
func (s *Server) WaitForStartup() {
	<-s.started
}

// ServerPort returns the port the HTTP server listens on, which may have
// been picked by the OS when the configured port was 0.
func (s *Server) ServerPort() int {
	return s.port
}

func (s *Server) Shutdown() error {
	if s.cron != nil {
		s.cron.Stop()
	}

	s.stopHTTP()

	if s.storage != nil {
		return s.storage.Close()
	}

	return nil
}

func (s *Server) parseFlags() error {
	var configFile = flag.String("c", s.configFile, "path to a yaml config file")
	var port = flag.Int("p", s.config.Port, "port used by the http server")
	var dbFile = flag.String("d", s.config.DatabaseFile, "sqlite database file, empty for in-memory")

	flag.Parse()

	if *configFile != "" {
		if err := loadConfig(*configFile, &s.config); err != nil {
			return err
		}
	}

	// flags set explicitly on the command line win over the config file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			s.config.Port = *port
		case "d":
			s.config.DatabaseFile = *dbFile
		}
	})

	return nil
}

func (s *Server) initHooks() error {
	if len(s.config.ElasticAddresses) > 0 {
		h, err := hook.NewElasticSearchHook(s.config.ElasticAddresses, s.config.ElasticIndex, s.log)
		if err != nil {
			return err
		}

		s.hooks = append(s.hooks, h)
	}

	if s.config.SlackToken != "" {
		s.hooks = append(s.hooks, hook.NewSlackHook(s.config.SlackChannelID, s.config.SlackToken, s.log))
	}

	for _, h := range s.hooks {
		if err := h.Init(); err != nil {
			return fmt.Errorf("initiating hook %q: %w", h.Name(), err)
		}
	}

	return nil
}

// startRetention schedules periodic deletion of expired reports.
func (s *Server) startRetention() error {
	if s.config.RetentionSchedule == "" {
		return nil
	}

	s.cron = cron.New(cron.WithSeconds())

	_, err := s.cron.AddFunc(s.config.RetentionSchedule, func() {
		cutoff := time.Now().Add(-s.config.RetentionMaxAge())

		deleted, err := s.storage.DeleteReportsBefore(context.Background(), cutoff)
		if err != nil {
			s.log.Error("report cleanup failed", "error", err)
			return
		}

		if deleted > 0 {
			metric.ReportsDeleted.Add(float64(deleted))
			s.log.Info("deleted expired reports", "count", deleted)
		}
	})
	if err != nil {
		return fmt.Errorf("adding retention schedule: %w", err)
	}

	s.cron.Start()

	return nil
}
