package risk

import "math"

// Label thresholds on the blended risk score.
const (
	misleadingThreshold = 0.7
	riskyThreshold      = 0.4
)

// Judgment is the rule-based risk assessment of an edit log.
type Judgment struct {
	Label        string   `json:"label"`
	RiskScore    float64  `json:"risk_score"`
	RulePoints   int      `json:"rule_points"`
	Reasons      []string `json:"reasons"`
	FeaturesUsed []string `json:"features_used"`
}

// Judge scores an edit log with the interpretable rules and maps the score to
// a label. Each rule contributes points; points convert to a 0..1 score on a
// 0.12-per-point scale.
func Judge(log EditLog) Judgment {
	points, reasons := scoreRules(log)
	score := math.Min(1, 0.12*float64(points))

	return Judgment{
		Label:        labelFor(score),
		RiskScore:    math.Round(score*1000) / 1000,
		RulePoints:   points,
		Reasons:      reasons,
		FeaturesUsed: FeatureOrder(),
	}
}

// scoreRules applies the interpretable rules over the extracted features.
// Higher points mean riskier; protective edits subtract.
func scoreRules(log EditLog) (int, []string) {
	f := Featurize(log)
	points := 0
	var reasons []string

	if f["n_compose"] > 0 {
		points += 3
		reasons = append(reasons, "Has composition edits (splice/inpaint/bg replace)")
	}
	if f["total_compose_area_pct"] >= 10 || f["max_compose_area_pct"] >= 15 {
		points += 2
		reasons = append(reasons, "Large composed region")
	}
	// Video-only: long-lasting composition over the timeline.
	if f["total_compose_time_pct"] >= 25 {
		points += 2
		reasons = append(reasons, "Composition affects large portion of duration")
	}
	if f["total_crop_area_pct"] > 60 {
		points++
		reasons = append(reasons, "Aggressive cropping")
	}
	if f["total_adjust_mag"] > 120 {
		points++
		reasons = append(reasons, "Extreme global adjustments")
	}
	// Privacy-aware reduction when edits look protective, not manipulative.
	if f["n_compose"] == 0 && f["total_blur_area_pct"] > 0 {
		points--
		reasons = append(reasons, "Privacy blur detected (no composition)")
	}
	// Signed provenance tempers risk.
	if f["c2pa_present"] == 1 && f["signed"] == 1 {
		points--
		reasons = append(reasons, "Signed provenance present")
	}

	if points < 0 {
		points = 0
	}
	return points, reasons
}

func labelFor(score float64) string {
	switch {
	case score >= misleadingThreshold:
		return "misleading"
	case score >= riskyThreshold:
		return "risky"
	default:
		return "benign"
	}
}
