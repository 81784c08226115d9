package state

import (
	"context"
	"errors"

	cnst "github.com/arducam/jetson-io/internal/constants"
	internalUtils "github.com/arducam/jetson-io/internal/utils"
	"github.com/spectrocloud-labs/herd"
)

var errNoDtbo = errors.New("no overlay was generated")

// SelectHeaderDagStep adds the step activating the header to configure.
func (s *State) SelectHeaderDagStep(g *herd.Graph, opts ...herd.OpOption) error {
	return g.Add(cnst.OpSelectHeader,
		append(opts, herd.WithCallback(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			internalUtils.Log.Info().Str("header", s.Header).Msg("Selecting header")
			return s.Board.SetActiveHeader(s.Header)
		}))...)
}

// LoadAddonDagStep adds the step applying a hardware addon preset to the header.
func (s *State) LoadAddonDagStep(g *herd.Graph, opts ...herd.OpOption) error {
	return g.Add(cnst.OpLoadAddon,
		append(opts, herd.WithCallback(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			internalUtils.Log.Info().Str("header", s.Header).Str("addon", s.Addon).Msg("Loading hardware addon")
			return s.Board.HwAddonLoad(s.Addon)
		}))...)
}

// SetPinsDagStep adds the step applying the explicit pin edits, functions first.
func (s *State) SetPinsDagStep(g *herd.Graph, opts ...herd.OpOption) error {
	return g.Add(cnst.OpSetPins,
		append(opts, herd.WithCallback(func(ctx context.Context) error {
			for _, pin := range s.SortedPins() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := s.Board.SetPinFunction(pin, s.Pins[pin]); err != nil {
					return err
				}
			}
			for _, pin := range s.Disable {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := s.Board.DisablePin(pin); err != nil {
					return err
				}
			}
			return nil
		}))...)
}

// CreateDtboDagStep adds the step writing the header overlay.
func (s *State) CreateDtboDagStep(g *herd.Graph, opts ...herd.OpOption) error {
	return g.Add(cnst.OpCreateDtbo,
		append(opts, herd.WithCallback(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			dtbo, err := s.Board.CreateDtboForHeader()
			if err != nil {
				return err
			}
			s.Dtbo = dtbo
			s.Messages = append(s.Messages, "Created "+dtbo)
			return nil
		}))...)
}

// PublishDagStep adds the step referencing the generated overlay from the boot configuration.
func (s *State) PublishDagStep(g *herd.Graph, opts ...herd.OpOption) error {
	return g.Add(cnst.OpPublish,
		append(opts, herd.WithCallback(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.Dtbo == "" {
				return errNoDtbo
			}
			messages, err := s.Board.ConfigureDtForNextBoot([]string{s.Dtbo})
			s.Messages = append(s.Messages, messages...)
			return err
		}))...)
}
