// Package display holds the collaborators that receive projected spectra.
package display

import (
	"sync"

	"github.com/RMahshie/vibrascope/internal/spectrum"
)

// Display receives the result of an analysis. Clear releases whatever was
// shown before so a new result can be attached.
type Display interface {
	Show(plot spectrum.Plot) error
	Clear()
}

// Board keeps the most recently shown plot in memory
type Board struct {
	mu   sync.RWMutex
	plot spectrum.Plot
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{plot: spectrum.NoPlot()}
}

// Show replaces the current plot
func (b *Board) Show(plot spectrum.Plot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.plot = plot
	return nil
}

// Clear drops the current plot
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.plot = spectrum.NoPlot()
}

// Current returns the plot on the board, NoPlot after a Clear
func (b *Board) Current() spectrum.Plot {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.plot
}
