package game

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"haikuadmin/internal/slicer"
)

// Haiku is one game instance with its rule parameters.
//
// Whether a haiku is currently slicing is not stored here; the slicer
// scheduler is the only source of truth for that.
type Haiku struct {
	ID        int64
	Title     string
	CreatedBy int64
	CreatedOn time.Time
	Slug      string
	Started   bool
	Finished  bool

	WordRoundLength      int
	SlicingInterval      int // seconds
	MinBlindSubmissions  int
	BlindSubmissionValue int
	DecayMeanLifetime    float64
	SeedCapital          int
}

// Instance returns the view of h the slicer scheduler works with.
func (h Haiku) Instance() slicer.Instance {
	return slicer.Instance{ID: h.ID, OwnerID: h.CreatedBy, SlicingInterval: h.SlicingInterval}
}

// HaikuForm is the raw admin form for a new haiku. Field names follow the
// form inputs.
type HaikuForm struct {
	Title                string
	Slug                 string
	WordRoundLength      string
	SlicingInterval      string
	MinBlindSubmissions  string
	BlindSubmissionValue string
	DecayHalfLife        string
	SeedCapital          string
}

// MeanLifetime converts a decay half-life into the mean lifetime used by the
// decay rules (tau = t_half / ln 2).
func MeanLifetime(halfLife int) float64 {
	return float64(halfLife) / math.Ln2
}

// NewHaiku builds an unsaved haiku owned by adminID. The form is expected to
// have passed ValidateHaiku.
func NewHaiku(adminID int64, f HaikuForm) (Haiku, error) {
	ints := make([]int, 6)
	raw := []struct {
		field string
		val   string
	}{
		{"word_round_length", f.WordRoundLength},
		{"slicing_interval", f.SlicingInterval},
		{"min_blind_submissions", f.MinBlindSubmissions},
		{"blind_submission_value", f.BlindSubmissionValue},
		{"decay_half_life", f.DecayHalfLife},
		{"seed_capital", f.SeedCapital},
	}
	for i, r := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(r.val))
		if err != nil {
			return Haiku{}, fmt.Errorf("%s: %w", r.field, err)
		}
		ints[i] = n
	}
	if ints[1] <= 0 {
		return Haiku{}, fmt.Errorf("slicing_interval: must be > 0, got %d", ints[1])
	}
	return Haiku{
		Title:                strings.TrimSpace(f.Title),
		CreatedBy:            adminID,
		CreatedOn:            time.Now(),
		Slug:                 strings.TrimSpace(f.Slug),
		WordRoundLength:      ints[0],
		SlicingInterval:      ints[1],
		MinBlindSubmissions:  ints[2],
		BlindSubmissionValue: ints[3],
		DecayMeanLifetime:    MeanLifetime(ints[4]),
		SeedCapital:          ints[5],
	}, nil
}
