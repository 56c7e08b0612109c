package xcallure

import (
	"log/slog"

	"github.com/xcreports/xcallure/internal/convert"
	"github.com/xcreports/xcallure/internal/hook"
)

func WithConfigFile(path string) option {
	return func(s *Server) {
		s.configFile = path
	}
}

func WithConfig(c Config) option {
	return func(s *Server) {
		s.config = c
	}
}

func WithLogger(log *slog.Logger) option {
	return func(s *Server) {
		s.log = log
	}
}

func WithHook(h hook.ReportListener) option {
	return func(s *Server) {
		s.hooks = append(s.hooks, h)
	}
}

// WithHistoryIDProvider replaces the default md5-of-fullname fingerprint.
func WithHistoryIDProvider(p convert.HistoryIDProvider) option {
	return func(s *Server) {
		s.historyID = p
	}
}

// WithParametersProvider replaces the default destination-derived parameters.
func WithParametersProvider(p convert.ParametersProvider) option {
	return func(s *Server) {
		s.parameters = p
	}
}
