// Package sanctions screens payment beneficiaries against a watch-list.
package sanctions

import (
	"context"
	"strings"

	"treasury/internal/domain"
	pkgerrors "treasury/pkg/errors"
)

// DefaultNameThreshold is the fuzzy-name similarity above which a
// beneficiary is treated as a match.
const DefaultNameThreshold = 0.85

// Match describes a positive screening result.
type Match struct {
	Field    string // name | bic | country
	Value    string
	Entry    domain.WatchlistEntry
	Score    float64
}

// Screener matches beneficiary fields against a WatchlistSource.
// It holds no mutable state and is safe for concurrent use.
type Screener struct {
	source    WatchlistSource
	threshold float64
}

func NewScreener(source WatchlistSource, threshold float64) *Screener {
	if threshold <= 0 {
		threshold = DefaultNameThreshold
	}
	return &Screener{source: source, threshold: threshold}
}

// Screen checks the payment's beneficiary against the watch-list.
// Order: exact BIC, exact country, fuzzy name. The first match wins;
// a clean screen returns (nil, nil).
func (s *Screener) Screen(ctx context.Context, p *domain.Payment) (*Match, error) {
	entries, err := s.source.Entries(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load watch-list")
	}

	bic := strings.ToUpper(p.BeneficiaryBIC)
	for _, entry := range entries {
		if bic == strings.ToUpper(entry.BIC) {
			return &Match{Field: "bic", Value: p.BeneficiaryBIC, Entry: entry, Score: 1.0}, nil
		}
	}

	country := strings.ToUpper(p.BeneficiaryCountry)
	for _, entry := range entries {
		if country == strings.ToUpper(entry.Country) {
			return &Match{Field: "country", Value: p.BeneficiaryCountry, Entry: entry, Score: 1.0}, nil
		}
	}

	name := strings.ToUpper(p.BeneficiaryName)
	for _, entry := range entries {
		score := Similarity(name, strings.ToUpper(entry.Name))
		if score >= s.threshold {
			return &Match{Field: "name", Value: p.BeneficiaryName, Entry: entry, Score: score}, nil
		}
	}

	return nil, nil
}
