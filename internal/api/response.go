package api

import (
	"encoding/json"
	"net/http"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	"github.com/matzehuels/subway/pkg/line"
)

// StationResponse is a station in API responses.
type StationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SectionResponse is a section in API responses.
type SectionResponse struct {
	UpStationID   string `json:"upStationId"`
	DownStationID string `json:"downStationId"`
	Distance      int    `json:"distance"`
}

// LineResponse is the JSON form of a line: stations and sections are listed
// in travel order.
type LineResponse struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Color         string            `json:"color"`
	Stations      []StationResponse `json:"stations"`
	Sections      []SectionResponse `json:"sections"`
	TotalDistance int               `json:"totalDistance"`
}

// LinesResponse is the JSON response for GET /api/lines.
type LinesResponse struct {
	Lines []LineResponse `json:"lines"`
	Count int            `json:"count"`
}

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func newStationResponses(stations []line.Station) []StationResponse {
	out := make([]StationResponse, len(stations))
	for i, s := range stations {
		out[i] = StationResponse{ID: s.ID, Name: s.DisplayName()}
	}
	return out
}

func newLineResponse(l *line.Line) LineResponse {
	sections := l.Sections()
	resp := LineResponse{
		ID:            string(l.ID),
		Name:          l.Name,
		Color:         l.Color,
		Stations:      newStationResponses(l.Stations()),
		Sections:      make([]SectionResponse, len(sections)),
		TotalDistance: l.Path().TotalDistance(),
	}
	for i, s := range sections {
		resp.Sections[i] = SectionResponse{UpStationID: s.Up().ID, DownStationID: s.Down().ID, Distance: s.Distance()}
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code subwayerrors.Code) int {
	switch code {
	case subwayerrors.ErrCodeInvalidInput, subwayerrors.ErrCodeInvalidStation,
		subwayerrors.ErrCodeInvalidDistance, subwayerrors.ErrCodeInvalidFormat,
		subwayerrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case subwayerrors.ErrCodeDuplicateSection, subwayerrors.ErrCodeLineExists:
		return http.StatusConflict
	case subwayerrors.ErrCodeDisconnectedSection, subwayerrors.ErrCodeInvalidSplit,
		subwayerrors.ErrCodeMinimumSections:
		return http.StatusUnprocessableEntity
	case subwayerrors.ErrCodeNotFound, subwayerrors.ErrCodeLineNotFound,
		subwayerrors.ErrCodeStationNotFound, subwayerrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case subwayerrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case subwayerrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// writeError writes err as an ErrorResponse. Server-side failures are
// logged and reported with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := subwayerrors.GetCode(err)
	if code == "" {
		code = subwayerrors.ErrCodeInternal
	}
	status := statusFor(code)

	msg := subwayerrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = http.StatusText(status)
	}
	writeJSON(w, status, ErrorResponse{Error: msg, Code: string(code)})
}
