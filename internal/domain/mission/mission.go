// Package mission stores the metadata of the mission currently being run:
// its name, venue, date and organiser. Printed summaries carry it in their
// header.
package mission

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/medmission/medmission/internal/platform/kv"
)

// DefaultName is used until an organiser names the mission.
const DefaultName = "Medical Mission"

type Info struct {
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Organizer   string    `json:"organizer"`
	ContactInfo string    `json:"contactInfo,omitempty"`
}

// InfoPatch lists the fields Update may change; nil leaves a field as it is.
type InfoPatch struct {
	Name        *string
	Location    *string
	Date        *time.Time
	Organizer   *string
	ContactInfo *string
}

// IsEmpty reports whether the patch changes nothing.
func (p InfoPatch) IsEmpty() bool {
	return p.Name == nil && p.Location == nil && p.Date == nil && p.Organizer == nil && p.ContactInfo == nil
}

func (p InfoPatch) apply(info Info) Info {
	if p.Name != nil {
		info.Name = *p.Name
	}
	if p.Location != nil {
		info.Location = *p.Location
	}
	if p.Date != nil {
		info.Date = p.Date.UTC()
	}
	if p.Organizer != nil {
		info.Organizer = *p.Organizer
	}
	if p.ContactInfo != nil {
		info.ContactInfo = *p.ContactInfo
	}
	return info
}

type Service struct {
	doc    *kv.Document[Info]
	now    func() time.Time
	logger zerolog.Logger
}

type Option func(*Service)

// WithClock replaces time.Now for the default mission date.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store kv.Store, logger zerolog.Logger, opts ...Option) *Service {
	logger = logger.With().Str("component", "mission").Logger()
	s := &Service{
		doc:    kv.NewDocument[Info](store, kv.KeyMissionInfo, logger),
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default returns the mission used before anything is saved.
func (s *Service) Default() Info {
	return Info{Name: DefaultName, Date: s.now().UTC()}
}

// Get returns the saved mission, or Default when nothing is saved.
func (s *Service) Get(ctx context.Context) (Info, error) {
	info, found, err := s.doc.Load(ctx)
	if err != nil {
		return Info{}, err
	}
	if !found {
		return s.Default(), nil
	}
	return info, nil
}

// Update merges patch into the current mission and saves the result.
func (s *Service) Update(ctx context.Context, patch InfoPatch) (Info, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return Info{}, err
	}
	info := patch.apply(current)
	if err := s.doc.Flush(ctx, info); err != nil {
		return info, err
	}
	s.logger.Info().Str("name", info.Name).Msg("mission updated")
	return info, nil
}

// Reset forgets the saved mission and returns the default.
func (s *Service) Reset(ctx context.Context) (Info, error) {
	if err := s.doc.Remove(ctx); err != nil {
		return Info{}, err
	}
	s.logger.Info().Msg("mission reset")
	return s.Default(), nil
}
