package adapthttp

import (
	"errors"
	"fmt"
	"net/http"

	"medtrack/internal/app"
	"medtrack/internal/domain"
)

func (s *Server) session(r *http.Request) (*app.AdherenceService, error) {
	user := userFrom(r.Context())
	if user == nil {
		return nil, errors.New("no authenticated user")
	}
	return s.tracker.ForUser(r.Context(), user.ID)
}

func (s *Server) handleAdherenceSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	svc, err := s.session(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, svc.Summary())
}

func (s *Server) handleAdherenceDays(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	svc, err := s.session(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	days := svc.Days()
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, d.String())
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": out})
}

func (s *Server) handleMarkTaken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	svc, err := s.session(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	var body struct {
		Day string `json:"day"`
	}
	if r.ContentLength != 0 {
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	if body.Day == "" {
		if _, err := svc.MarkTakenToday(r.Context()); err != nil {
			writeMarkTakenError(w, err)
			return
		}
	} else {
		day, err := domain.ParseDay(body.Day)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := svc.MarkTaken(r.Context(), day); err != nil {
			writeMarkTakenError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, svc.Summary())
}

func writeMarkTakenError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, app.ErrFutureDay):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, app.ErrLogUnavailable):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleMedication(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user := userFrom(r.Context())
	if user == nil {
		writeError(w, http.StatusInternalServerError, errors.New("no authenticated user"))
		return
	}
	med, err := s.tracker.Medication(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, med)
}

// handleAdherenceStream pushes every newly reconciled day to the client as
// a server-sent event, so an open dashboard reflects writes from other
// devices without polling.
func (s *Server) handleAdherenceStream(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming unsupported"))
		return
	}
	svc, err := s.session(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	events := make(chan domain.Day, 16)
	unsubscribe := svc.Store().Subscribe(func(d domain.Day) {
		select {
		case events <- d:
		default:
			// Slow client; it will resync from /adherence/days.
		}
	})
	defer unsubscribe()

	fmt.Fprintf(w, ": connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case d := <-events:
			fmt.Fprintf(w, "event: taken\ndata: %s\n\n", d)
			flusher.Flush()
		}
	}
}
