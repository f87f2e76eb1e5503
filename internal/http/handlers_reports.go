package http

import (
	"bytes"
	"net/http"
	"strconv"
	"sync/atomic"

	"smartfinance/internal/export"
	"smartfinance/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Reports.Dashboard(r.Context())
	if err != nil {
		s.respondError(w, r, "dashboard", err)
		return
	}
	NewJSONResponse().Body(d).Write(w)
}

// handleReport supports ?months=N (1..24, default 6) and ?month=YYYY-MM for
// the category breakdown.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	months, bad := ParseIntParam(q, "months")
	if bad != nil {
		bad.Write(w)
		return
	}
	month, bad := ParseMonthParam(q, "month")
	if bad != nil {
		bad.Write(w)
		return
	}
	rep, err := s.svc.Reports.Report(r.Context(), int(months), month)
	if err != nil {
		s.respondError(w, r, "report", err)
		return
	}
	NewJSONResponse().Body(rep).Write(w)
}

// handleExportReport renders the report as a download. The document is
// buffered so a rendering failure can still produce a JSON error.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format, err := export.ParseFormat(q.Get("format"))
	if err != nil {
		BadRequestError(validationMessage(err)).Write(w)
		return
	}
	months, bad := ParseIntParam(q, "months")
	if bad != nil {
		bad.Write(w)
		return
	}
	month, bad := ParseMonthParam(q, "month")
	if bad != nil {
		bad.Write(w)
		return
	}
	rep, err := s.svc.Reports.Report(r.Context(), int(months), month)
	if err != nil {
		s.respondError(w, r, "export report", err)
		return
	}

	// Cached reports keep their build time; the export is stamped now.
	at := s.now()
	rep.ExportDate = at.UTC()

	var buf bytes.Buffer
	if err := export.Write(&buf, format, rep); err != nil {
		s.respondError(w, r, "export report", err)
		return
	}
	atomic.AddInt64(&s.metrics.exports, 1)
	log.FromContext(r.Context()).WithComponent(log.ComponentExport).InfoContext(r.Context(), "Report exported",
		"format", string(format),
		log.FieldMonth, rep.PieChartMonth,
		"bytes", buf.Len())

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(format, at)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
