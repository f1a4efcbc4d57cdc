package http

import (
	"log/slog"
	"net/http"
)

type weekPayload struct {
	Index       int    `json:"index"`
	Start       string `json:"start"`
	End         string `json:"end"`
	TotalCents  int64  `json:"total_cents"`
	HasExposure bool   `json:"has_exposure"`
}

type obligationPayload struct {
	Date        string `json:"date"`
	AmountCents int64  `json:"amount_cents"`
	SourceLabel string `json:"source_label"`
	Origin      string `json:"origin"`
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	refDate, err := refDateFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	weeks, err := s.forecasts.WeeklyOutlook(r.Context(), refDate)
	if err != nil {
		slog.ErrorContext(r.Context(), "Forecast failed", "error", err)
		writeDomainError(w, err)
		return
	}

	payload := make([]weekPayload, len(weeks))
	for i, week := range weeks {
		payload[i] = weekPayload{
			Index:       week.Index,
			Start:       week.Start.Format("2006-01-02"),
			End:         week.End.Format("2006-01-02"),
			TotalCents:  week.Total.Cents,
			HasExposure: week.HasExposure,
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ref_date": refDate.Format("2006-01-02"),
		"weeks":    payload,
	})
}

func (s *Server) handleObligations(w http.ResponseWriter, r *http.Request) {
	refDate, err := refDateFrom(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date, want YYYY-MM-DD")
		return
	}

	obligations, err := s.forecasts.Obligations(r.Context(), refDate)
	if err != nil {
		slog.ErrorContext(r.Context(), "Obligation listing failed", "error", err)
		writeDomainError(w, err)
		return
	}

	payload := make([]obligationPayload, len(obligations))
	for i, ob := range obligations {
		payload[i] = obligationPayload{
			Date:        ob.Date.Format("2006-01-02"),
			AmountCents: ob.Amount.Cents,
			SourceLabel: ob.SourceLabel,
			Origin:      string(ob.Origin),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ref_date":    refDate.Format("2006-01-02"),
		"obligations": payload,
	})
}

func (s *Server) handlePressure(w http.ResponseWriter, r *http.Request) {
	pressure, err := s.forecasts.NearTermPressure(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Pressure computation failed", "error", err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pressure_cents": pressure.Cents,
	})
}
