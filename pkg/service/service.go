// Package service coordinates line mutations against a store.
//
// A [Service] serializes every mutation of a line behind a per-line mutex
// and runs it as load → mutate → save, so concurrent requests against the
// same line never interleave. Requests against different lines run in
// parallel.
//
// All errors returned by the service carry a [subwayerrors.Code]; the leaf
// sentinel (for example [line.ErrDuplicateSection]) stays reachable with
// errors.Is.
package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	subwayerrors "github.com/matzehuels/subway/pkg/errors"
	"github.com/matzehuels/subway/pkg/line"
	"github.com/matzehuels/subway/pkg/observability"
	"github.com/matzehuels/subway/pkg/store"
)

// Service runs line operations against a store.
// It is safe for concurrent use.
type Service struct {
	store  store.Store
	logger *log.Logger
	locks  *lineLocks
	newID  func() string
}

// New creates a service over st. A nil logger discards output.
func New(st store.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		store:  st,
		logger: logger,
		locks:  newLineLocks(),
		newID:  uuid.NewString,
	}
}

// CreateLineRequest describes a new line and its first section.
type CreateLineRequest struct {
	// ID is optional; a random UUID is assigned when empty.
	ID       string
	Name     string
	Color    string
	Up       line.Station
	Down     line.Station
	Distance int
}

// UpdateLineRequest changes line metadata. Nil fields are left unchanged.
type UpdateLineRequest struct {
	Name  *string
	Color *string
}

// CreateLine creates a line with one section. Returns an error with code
// LINE_EXISTS if a line with the requested ID already exists.
func (s *Service) CreateLine(ctx context.Context, req CreateLineRequest) (*line.Line, error) {
	if req.ID == "" {
		req.ID = s.newID()
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}
	id := line.LineID(req.ID)

	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.store.Get(ctx, id); err == nil {
		return nil, subwayerrors.New(subwayerrors.ErrCodeLineExists, "line %s already exists", id)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, classify(err, subwayerrors.ErrCodeStorage, "load line %s", id)
	}

	l, err := line.New(id, req.Name, req.Color, req.Up, req.Down, req.Distance)
	if err != nil {
		return nil, classify(err, subwayerrors.ErrCodeInvalidInput, "create line %s", id)
	}
	if err := s.store.Put(ctx, l); err != nil {
		return nil, classify(err, subwayerrors.ErrCodeStorage, "save line %s", id)
	}

	s.logger.Info("line created", "line", id, "name", req.Name, "up", req.Up.ID, "down", req.Down.ID)
	return l, nil
}

// ImportLine stores a complete line, for example one read from a line
// file. An existing line with the same ID is replaced only if replace is
// set.
func (s *Service) ImportLine(ctx context.Context, l *line.Line, replace bool) error {
	if err := subwayerrors.ValidateID("line", string(l.ID)); err != nil {
		return err
	}
	for _, st := range l.Stations() {
		if err := subwayerrors.ValidateStation(st.ID, st.Name); err != nil {
			return err
		}
	}
	if err := l.Path().Validate(); err != nil {
		return classify(err, subwayerrors.ErrCodeInvalidFormat, "import line %s", l.ID)
	}

	unlock := s.locks.lock(l.ID)
	defer unlock()

	if !replace {
		if _, err := s.store.Get(ctx, l.ID); err == nil {
			return subwayerrors.New(subwayerrors.ErrCodeLineExists, "line %s already exists", l.ID)
		} else if !errors.Is(err, store.ErrNotFound) {
			return classify(err, subwayerrors.ErrCodeStorage, "load line %s", l.ID)
		}
	}
	if err := s.store.Put(ctx, l); err != nil {
		return classify(err, subwayerrors.ErrCodeStorage, "save line %s", l.ID)
	}

	s.logger.Info("line imported", "line", l.ID, "sections", l.Path().Len(), "replace", replace)
	return nil
}

// Line loads a line.
func (s *Service) Line(ctx context.Context, id line.LineID) (*line.Line, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, classify(err, subwayerrors.ErrCodeStorage, "load line %s", id)
	}
	return l, nil
}

// Lines loads every line, ordered by ID.
func (s *Service) Lines(ctx context.Context) ([]*line.Line, error) {
	lines, err := s.store.List(ctx)
	if err != nil {
		return nil, classify(err, subwayerrors.ErrCodeStorage, "list lines")
	}
	return lines, nil
}

// UpdateLine changes the name or color of a line.
func (s *Service) UpdateLine(ctx context.Context, id line.LineID, req UpdateLineRequest) (*line.Line, error) {
	if req.Name != nil {
		if err := subwayerrors.ValidateName("line", *req.Name); err != nil {
			return nil, err
		}
	}
	if req.Color != nil {
		if err := subwayerrors.ValidateName("color", *req.Color); err != nil {
			return nil, err
		}
	}

	return s.mutate(ctx, id, "update line", func(l *line.Line) error {
		if req.Name != nil {
			l.Name = *req.Name
		}
		if req.Color != nil {
			l.Color = *req.Color
		}
		return nil
	})
}

// AddSection inserts a section into a line and returns the updated line.
func (s *Service) AddSection(ctx context.Context, id line.LineID, up, down line.Station, distance int) (*line.Line, error) {
	for _, st := range []line.Station{up, down} {
		if err := subwayerrors.ValidateStation(st.ID, st.Name); err != nil {
			return nil, err
		}
	}
	if err := subwayerrors.ValidateDistance(distance); err != nil {
		return nil, err
	}

	section := line.NewSection(id, up, down, distance).String()
	l, err := s.mutate(ctx, id, "add section "+section, func(l *line.Line) error {
		start := time.Now()
		err := l.AddSection(up, down, distance)
		observability.Line().OnSectionAdded(ctx, string(id), section, time.Since(start), err)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("section added", "line", id, "section", section, "stations", l.Path().Len()+1)
	return l, nil
}

// RemoveStation takes a station off a line and returns the updated line.
func (s *Service) RemoveStation(ctx context.Context, id line.LineID, stationID string) (*line.Line, error) {
	if err := subwayerrors.ValidateID("station", stationID); err != nil {
		return nil, &subwayerrors.Error{Code: subwayerrors.ErrCodeInvalidStation, Message: subwayerrors.UserMessage(err)}
	}

	l, err := s.mutate(ctx, id, "remove station "+stationID, func(l *line.Line) error {
		start := time.Now()
		err := l.RemoveStation(line.NewStation(stationID, ""))
		observability.Line().OnStationRemoved(ctx, string(id), stationID, time.Since(start), err)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("station removed", "line", id, "station", stationID, "stations", l.Path().Len()+1)
	return l, nil
}

// DeleteLine removes a line and all of its sections.
func (s *Service) DeleteLine(ctx context.Context, id line.LineID) error {
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return classify(err, subwayerrors.ErrCodeStorage, "delete line %s", id)
	}
	s.logger.Info("line deleted", "line", id)
	return nil
}

// mutate runs fn on the stored line while holding the line's lock and saves
// the result. Nothing is saved if fn fails.
func (s *Service) mutate(ctx context.Context, id line.LineID, op string, fn func(*line.Line) error) (*line.Line, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, classify(err, subwayerrors.ErrCodeStorage, "%s: load line %s", op, id)
	}
	if err := fn(l); err != nil {
		s.logger.Debug("mutation rejected", "line", id, "op", op, "err", err)
		return nil, classify(err, subwayerrors.ErrCodeInternal, "%s on line %s", op, id)
	}
	if err := s.store.Put(ctx, l); err != nil {
		return nil, classify(err, subwayerrors.ErrCodeStorage, "%s: save line %s", op, id)
	}
	return l, nil
}

func validateCreate(req CreateLineRequest) error {
	if err := subwayerrors.ValidateID("line", req.ID); err != nil {
		return err
	}
	if err := subwayerrors.ValidateName("line", req.Name); err != nil {
		return err
	}
	if err := subwayerrors.ValidateName("color", req.Color); err != nil {
		return err
	}
	for _, st := range []line.Station{req.Up, req.Down} {
		if err := subwayerrors.ValidateStation(st.ID, st.Name); err != nil {
			return err
		}
	}
	return subwayerrors.ValidateDistance(req.Distance)
}
