package evaluation

// GuardrailConfig bounds when a holdout evaluation is meaningful.
type GuardrailConfig struct {
	MinTrainRows int
	MinTestRows  int
}

// Guardrails decides whether a train/test split is large enough to score.
type Guardrails struct {
	config GuardrailConfig
}

// NewGuardrails fills zero limits with defaults of 5 training and 2 test rows.
func NewGuardrails(config GuardrailConfig) *Guardrails {
	if config.MinTrainRows <= 0 {
		config.MinTrainRows = 5
	}
	if config.MinTestRows <= 0 {
		config.MinTestRows = 2
	}
	return &Guardrails{config: config}
}

// ShouldEvaluate reports whether a split leaves enough rows on both sides.
func (g *Guardrails) ShouldEvaluate(split Split) bool {
	return len(split.Train) >= g.config.MinTrainRows && len(split.Test) >= g.config.MinTestRows
}
