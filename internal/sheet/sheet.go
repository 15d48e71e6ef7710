// Package sheet assembles a pet's stat sheet: it joins the pet record, the
// breed ranges and the duplicate pattern, then runs the display engine once
// per bar.
package sheet

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/petstats/internal/breeds"
	"github.com/mesh-intelligence/petstats/internal/patterns"
	"github.com/mesh-intelligence/petstats/internal/statbar"
	"github.com/mesh-intelligence/petstats/pkg/types"
)

// Sheet is the rendered stat sheet of one pet.
type Sheet struct {
	PetID   string    `json:"pet_id"`
	Name    string    `json:"name"`
	Breed   string    `json:"breed"`
	Pattern string    `json:"pattern,omitempty"`
	Style   string    `json:"style"`
	Bars    []BarView `json:"bars"`
}

// BarView is one bar of a sheet.
type BarView struct {
	Trait     string              `json:"trait"`
	Source    string              `json:"source"`
	Duplicate bool                `json:"duplicate"`
	Value     int                 `json:"value"`
	Min       int                 `json:"min"`
	Max       int                 `json:"max"`
	Result    types.DisplayResult `json:"result"`
}

// Service builds sheets from an attached store.
type Service struct {
	Store    types.Store
	Breeds   *breeds.Registry
	Patterns *patterns.Table
	Engine   *statbar.Engine
	Style    statbar.BarStyle
	Logger   *zap.Logger
}

// New creates a Service over an attached store with the built-in breed and
// pattern tables.
func New(store types.Store, style statbar.BarStyle, opts patterns.Options, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg, err := breeds.BuiltIn()
	if err != nil {
		return nil, err
	}
	pats, err := patterns.BuiltIn(opts)
	if err != nil {
		return nil, err
	}
	return &Service{
		Store:    store,
		Breeds:   reg,
		Patterns: pats,
		Engine:   statbar.NewEngine(statbar.ParityOverrides, logger),
		Style:    style,
		Logger:   logger,
	}, nil
}

// WithStyle returns a copy of s that renders with style.
func (s *Service) WithStyle(style statbar.BarStyle) *Service {
	c := *s
	c.Style = style
	return &c
}

// Refresh rebuilds the registry from the built-in breeds plus the stored
// ones, then rebuilds the engine's override table. ParityOverrides come
// first so a stored override for the same key replaces them. Stored breeds
// that fail validation are skipped and logged.
func (s *Service) Refresh() error {
	breedTbl, err := s.Store.GetTable(types.TableBreeds)
	if err != nil {
		return err
	}
	skipped, err := s.Breeds.Reload(breedTbl)
	if err != nil {
		return err
	}
	if skipped > 0 {
		s.logger().Warn("skipped invalid stored breeds", zap.Int("skipped", skipped))
	}

	overrideTbl, err := s.Store.GetTable(types.TableOverrides)
	if err != nil {
		return err
	}
	rows, err := overrideTbl.Fetch(nil)
	if err != nil {
		return fmt.Errorf("fetch overrides: %w", err)
	}
	overrides := append([]types.Override(nil), statbar.ParityOverrides...)
	for _, row := range rows {
		o, ok := row.(*types.Override)
		if !ok {
			return types.ErrInvalidData
		}
		overrides = append(overrides, *o)
	}
	s.Engine.SetOverrides(overrides)
	return nil
}

// ForPet loads a pet from the store and builds its sheet. Returns
// types.ErrNotFound for an unknown pet.
func (s *Service) ForPet(ctx context.Context, petID string) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.Refresh(); err != nil {
		return nil, err
	}

	pets, err := s.Store.GetTable(types.TablePets)
	if err != nil {
		return nil, err
	}
	row, err := pets.Get(petID)
	if err != nil {
		return nil, err
	}
	pet, ok := row.(*types.Pet)
	if !ok {
		return nil, types.ErrInvalidData
	}
	return s.Build(ctx, pet)
}

// Build computes the sheet of a pet record without touching the store.
// A breed range with max <= min fails the whole sheet.
func (s *Service) Build(ctx context.Context, pet *types.Pet) (*Sheet, error) {
	bars, err := s.Patterns.Resolve(pet)
	if err != nil {
		return nil, err
	}
	cfg := s.Breeds.Lookup(pet.Breed)

	sh := &Sheet{
		PetID:   pet.PetID,
		Name:    pet.Name,
		Breed:   pet.Breed,
		Pattern: pet.Pattern,
		Style:   s.Style.Name,
		Bars:    make([]BarView, 0, len(bars)),
	}
	for _, bar := range bars {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		def := cfg.Stat(bar.Trait)
		res, err := s.Engine.Compute(pet.Name, types.StatObservation{Label: bar.Trait, Value: bar.Value}, def, s.Style)
		if err != nil {
			return nil, fmt.Errorf("pet %s: %w", pet.PetID, err)
		}
		sh.Bars = append(sh.Bars, BarView{
			Trait:     bar.Trait,
			Source:    bar.Source,
			Duplicate: bar.Duplicate,
			Value:     bar.Value,
			Min:       def.Min,
			Max:       def.Max,
			Result:    res,
		})
	}

	s.logger().Debug("sheet built",
		zap.String("pet_id", pet.PetID),
		zap.String("breed", cfg.Breed),
		zap.Int("bars", len(sh.Bars)))
	return sh, nil
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
