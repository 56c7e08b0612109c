package xcallure

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xcreports/xcallure/internal/convert"
	"github.com/xcreports/xcallure/internal/metric"
	"github.com/xcreports/xcallure/internal/model"
)

func (s *Server) runHTTP() error {
	listener, err := net.Listen("tcp", "localhost:"+strconv.Itoa(s.config.Port))
	if err != nil {
		return err
	}

	s.port = listener.Addr().(*net.TCPAddr).Port
	s.httpServer = &http.Server{Handler: s.routes()}

	s.log.Info("listening", "addr", listener.Addr().String())
	close(s.started)

	if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) stopHTTP() {
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
}

func (s *Server) routes() *httprouter.Router {
	router := httprouter.New()

	router.POST("/results", s.CreateResult)
	router.GET("/results", s.GetResultsByHistoryID)
	router.GET("/results/:uuid", s.GetResult)
	router.GET("/healthz", s.Health)
	router.Handler(http.MethodGet, "/metrics", promhttp.Handler())

	return router
}

func (s *Server) httpError(w http.ResponseWriter, err error) {
	var notFound model.NotFoundError
	var malformedRequest model.MalformedRequestError
	var invalidTestCase model.InvalidTestCaseError

	if errors.As(err, &notFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	} else if errors.As(err, &malformedRequest) {
		http.Error(w, malformedRequest.Error(), http.StatusBadRequest)
		return
	} else if errors.As(err, &invalidTestCase) {
		http.Error(w, invalidTestCase.Error(), http.StatusUnprocessableEntity)
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
}

// CreateResult ingests one recorded test case, converts it and stores the
// resulting report.
func (s *Server) CreateResult(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var tc model.TestCase

	if err := json.NewDecoder(r.Body).Decode(&tc); err != nil {
		s.httpError(w, model.MalformedRequestError{Param: "body"})
		return
	}

	report, attachments, err := convert.Convert(tc, s.historyID, s.parameters)
	if err != nil {
		metric.ConversionFailures.Inc()
		s.log.Warn("conversion failed", "test-name", tc.Summary.Name, "error", err)
		s.httpError(w, err)
		return
	}

	metric.ReportsConverted.WithLabelValues(string(report.Status)).Inc()

	if err := s.storage.InsertReport(r.Context(), report); err != nil {
		s.log.Error("unable to store report", "uuid", report.UUID, "error", err)
		s.httpError(w, err)
		return
	}

	for _, h := range s.hooks {
		h.ReportStored(r.Context(), report)
	}

	s.log.Info("converted test case",
		"name", report.Name,
		"uuid", report.UUID,
		"status", report.Status,
		"attachments", len(attachments),
	)

	body, err := json.Marshal(model.ConvertedReport{Report: report, Attachments: tc.Attachments})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)

	if _, err = w.Write(body); err != nil {
		s.log.Error("error writing body", "error", err)
	}
}

func (s *Server) GetResult(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	report, err := s.storage.LoadReport(r.Context(), p.ByName("uuid"))
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.writeJSON(w, report)
}

// GetResultsByHistoryID lists all stored reports of one logical test,
// identified by the history id used for cross-run correlation.
func (s *Server) GetResultsByHistoryID(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	historyID := r.URL.Query().Get("historyId")
	if historyID == "" {
		s.httpError(w, model.MalformedRequestError{Param: "historyId"})
		return
	}

	reports, err := s.storage.LoadReportsByHistoryID(r.Context(), historyID)
	if err != nil {
		s.httpError(w, err)
		return
	}

	s.writeJSON(w, reports)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if _, err = w.Write(body); err != nil {
		s.log.Error("error writing body", "error", err)
	}
}
