package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so that every drop roll leaves an audit
// line at debug level.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn forwards to the wrapped Source, so a Roller is itself a Source.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Percent rolls against percent (two decimal places) and logs the draw.
//
// Postcondition: the result equals PercentRoll semantics on the wrapped Source.
func (r *Roller) Percent(label string, percent float64) bool {
	draw := r.src.Intn(PercentScale)
	threshold := ChanceToScale(percent)
	hit := draw < threshold
	r.logger.Debug("percent roll",
		zap.String("label", label),
		zap.Float64("chance_percent", percent),
		zap.Int("draw", draw),
		zap.Int("threshold", threshold),
		zap.Bool("hit", hit),
	)
	return hit
}
