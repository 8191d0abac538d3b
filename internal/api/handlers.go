package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/render"
	"github.com/matzehuels/subway/pkg/render/nodelink"
	"github.com/matzehuels/subway/pkg/service"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// StationRequest names a station in request bodies.
type StationRequest struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

func (s StationRequest) station() line.Station { return line.NewStation(s.ID, s.Name) }

// CreateLineRequest is the body of POST /api/lines.
type CreateLineRequest struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	Color       string         `json:"color"`
	UpStation   StationRequest `json:"upStation"`
	DownStation StationRequest `json:"downStation"`
	Distance    int            `json:"distance"`
}

// UpdateLineRequest is the body of PATCH /api/lines/{lineID}.
type UpdateLineRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// AddSectionRequest is the body of POST /api/lines/{lineID}/sections.
type AddSectionRequest struct {
	UpStation   StationRequest `json:"upStation"`
	DownStation StationRequest `json:"downStation"`
	Distance    int            `json:"distance"`
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return subwayerrors.Wrap(subwayerrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func lineID(r *http.Request) line.LineID {
	return line.LineID(chi.URLParam(r, "lineID"))
}

// health handles GET /health. It lists lines to verify store connectivity.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	lines, err := s.svc.Lines(ctx)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":    "error",
			"store":     "disconnected",
			"timestamp": time.Now().UTC(),
			"error":     subwayerrors.UserMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"store":     "connected",
		"lines":     len(lines),
		"timestamp": time.Now().UTC(),
	})
}

// listLines handles GET /api/lines.
func (s *Server) listLines(w http.ResponseWriter, r *http.Request) {
	lines, err := s.svc.Lines(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := LinesResponse{Lines: make([]LineResponse, len(lines)), Count: len(lines)}
	for i, l := range lines {
		resp.Lines[i] = newLineResponse(l)
	}
	writeJSON(w, http.StatusOK, resp)
}

// createLine handles POST /api/lines.
func (s *Server) createLine(w http.ResponseWriter, r *http.Request) {
	var req CreateLineRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.svc.CreateLine(r.Context(), service.CreateLineRequest{
		ID:       req.ID,
		Name:     req.Name,
		Color:    req.Color,
		Up:       req.UpStation.station(),
		Down:     req.DownStation.station(),
		Distance: req.Distance,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/lines/%s", l.ID))
	writeJSON(w, http.StatusCreated, newLineResponse(l))
}

// getLine handles GET /api/lines/{lineID}.
func (s *Server) getLine(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.Line(r.Context(), lineID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLineResponse(l))
}

// updateLine handles PATCH /api/lines/{lineID}.
func (s *Server) updateLine(w http.ResponseWriter, r *http.Request) {
	var req UpdateLineRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.svc.UpdateLine(r.Context(), lineID(r), service.UpdateLineRequest{Name: req.Name, Color: req.Color})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLineResponse(l))
}

// deleteLine handles DELETE /api/lines/{lineID}.
func (s *Server) deleteLine(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteLine(r.Context(), lineID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// listStations handles GET /api/lines/{lineID}/stations.
func (s *Server) listStations(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.Line(r.Context(), lineID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newStationResponses(l.Stations()))
}

// addSection handles POST /api/lines/{lineID}/sections.
func (s *Server) addSection(w http.ResponseWriter, r *http.Request) {
	var req AddSectionRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.svc.AddSection(r.Context(), lineID(r), req.UpStation.station(), req.DownStation.station(), req.Distance)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newLineResponse(l))
}

// removeStation handles DELETE /api/lines/{lineID}/stations/{stationID}.
func (s *Server) removeStation(w http.ResponseWriter, r *http.Request) {
	l, err := s.svc.RemoveStation(r.Context(), lineID(r), chi.URLParam(r, "stationID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newLineResponse(l))
}

// diagram handles GET /api/lines/{lineID}/diagram.{format}.
// Query parameters: direction=LR|TB, distances=true|false.
func (s *Server) diagram(w http.ResponseWriter, r *http.Request) {
	format, err := nodelink.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		s.writeError(w, r, subwayerrors.Wrap(subwayerrors.ErrCodeInvalidInput, err, "diagram"))
		return
	}
	opts := nodelink.Options{Direction: r.URL.Query().Get("direction")}
	if v := r.URL.Query().Get("distances"); v != "" {
		show, err := strconv.ParseBool(v)
		if err != nil {
			s.writeError(w, r, subwayerrors.Wrap(subwayerrors.ErrCodeInvalidInput, err, "distances"))
			return
		}
		opts.HideDistances = !show
	}

	l, err := s.svc.Line(r.Context(), lineID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := s.renderer.Render(r.Context(), l, format, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		if errors.Is(err, render.ErrConverterMissing) {
			s.writeError(w, r, subwayerrors.Wrap(subwayerrors.ErrCodeUnsupported, err, "diagram format %s", format))
			return
		}
		s.writeError(w, r, subwayerrors.Wrap(subwayerrors.ErrCodeInternal, err, "render line %s", l.ID))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
