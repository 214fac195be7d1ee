// Package risk turns a media edit log into numeric features and a rule-based
// risk judgment.
//
// This subsystem is independent of the attestation verification pipeline: it
// shares no state with it and its output is advisory. An edit log is a loose
// JSON document describing edit operations in six buckets (transform, adjust,
// filter, overlay, privacy_blur, compose), with optional video-aware
// coverage fields per op (area_pct_avg, time_pct) falling back to the
// image-style area_pct.
package risk

// Buckets are the stable edit-operation categories used for feature counts.
var Buckets = []string{"transform", "adjust", "filter", "overlay", "privacy_blur", "compose"}

// EditLog is a parsed edit-log document. The schema is owned by capture
// applications and deliberately loose; missing fields featurize to zero.
type EditLog map[string]any

// Features maps feature names to values.
type Features map[string]float64

// FeatureOrder returns the stable feature ordering used for vectorization.
// The three video-aware features are appended after the original image-era
// indices so earlier positions keep their meaning.
func FeatureOrder() []string {
	return []string{
		// counts
		"n_transform", "n_adjust", "n_filter", "n_overlay", "n_privacy_blur", "n_compose",
		// provenance/export
		"c2pa_present", "signed", "actions_count", "jpeg_quality",
		// magnitudes
		"total_crop_area_pct", "total_adjust_mag", "total_blur_area_pct", "total_compose_area_pct",
		// interaction
		"overlay_after_compose",
		// video-aware
		"total_blur_time_pct", "total_compose_time_pct", "max_compose_area_pct",
	}
}

// Featurize extracts named numeric features from an edit log. Missing or
// malformed fields default to zero; the function has no side effects.
func Featurize(log EditLog) Features {
	feats := Features{}

	counts := map[string]int{}
	for _, b := range Buckets {
		counts[b] = 0
	}
	for _, op := range ops(log) {
		if t, ok := op["t"].(string); ok {
			if _, known := counts[t]; known {
				counts[t]++
			}
		}
	}
	for b, n := range counts {
		feats["n_"+b] = float64(n)
	}

	feats["c2pa_present"] = boolFeature(nested(log, "provenance", "c2pa_present"))
	feats["signed"] = boolFeature(nested(log, "provenance", "signed"))
	feats["actions_count"] = numeric(nested(log, "provenance", "actions_count"), 0)
	// Name kept from the image-era schema; export.quality covers both media kinds.
	feats["jpeg_quality"] = numeric(nested(log, "export", "quality"), 90)

	var (
		totalCropAreaPct    float64
		totalAdjustMag      float64
		totalBlurAreaPct    float64
		totalComposeAreaPct float64
		totalBlurTimePct    float64
		totalComposeTimePct float64
		maxComposeAreaPct   float64
	)

	imgArea := mediaArea(log)

	for _, op := range ops(log) {
		t, _ := op["t"].(string)
		p, _ := op["p"].(map[string]any)

		// Prefer the video-averaged area when present.
		area := numeric(p["area_pct_avg"], 0)
		if _, ok := p["area_pct_avg"]; !ok {
			area = numeric(p["area_pct"], 0)
		}
		timePct := clampPct(numeric(p["time_pct"], 0))

		switch t {
		case "transform":
			if crop, ok := p["crop"].([]any); ok && len(crop) == 4 && imgArea > 0 {
				cw, ch := numeric(crop[2], 0), numeric(crop[3], 0)
				if cw > 0 && ch > 0 {
					totalCropAreaPct += 100 * cw * ch / imgArea
				}
			}
		case "adjust":
			totalAdjustMag += abs(numeric(p["brightness"], 0)) +
				abs(numeric(p["contrast"], 0)) +
				abs(numeric(p["saturation"], 0))
		case "privacy_blur":
			totalBlurAreaPct += area
			totalBlurTimePct += timePct
		case "compose":
			totalComposeAreaPct += area
			totalComposeTimePct += timePct
			if area > maxComposeAreaPct {
				maxComposeAreaPct = area
			}
		}
	}

	feats["total_crop_area_pct"] = totalCropAreaPct
	feats["total_adjust_mag"] = totalAdjustMag
	feats["total_blur_area_pct"] = totalBlurAreaPct
	feats["total_compose_area_pct"] = totalComposeAreaPct
	feats["total_blur_time_pct"] = totalBlurTimePct
	feats["total_compose_time_pct"] = totalComposeTimePct
	feats["max_compose_area_pct"] = maxComposeAreaPct

	feats["overlay_after_compose"] = 0
	lastT := ""
	for _, op := range ops(log) {
		t, _ := op["t"].(string)
		if lastT == "compose" && t == "overlay" {
			feats["overlay_after_compose"] = 1
		}
		lastT = t
	}

	return feats
}

// Vector packs the features into a slice in the given key order; missing keys
// become zero.
func Vector(log EditLog, keys []string) []float64 {
	feats := Featurize(log)
	out := make([]float64, len(keys))
	for i, k := range keys {
		out[i] = feats[k]
	}
	return out
}

func ops(log EditLog) []map[string]any {
	raw, ok := log["ops"].([]any)
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, e := range raw {
		if op, ok := e.(map[string]any); ok {
			out = append(out, op)
		}
	}
	return out
}

// mediaArea finds width*height from either the meta or media section, zero
// when unavailable so area features gracefully drop out.
func mediaArea(log EditLog) float64 {
	for _, section := range []string{"meta", "media"} {
		w := numeric(nested(log, section, "width"), 0)
		h := numeric(nested(log, section, "height"), 0)
		if w > 0 && h > 0 {
			return w * h
		}
	}
	return 0
}

func nested(log EditLog, path ...string) any {
	var cur any = map[string]any(log)
	for _, k := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[k]
		if !ok {
			return nil
		}
	}
	return cur
}

// numeric coerces JSON numbers (and ints from literals in tests) to float64.
func numeric(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return fallback
	}
}

func boolFeature(v any) float64 {
	if b, ok := v.(bool); ok && b {
		return 1
	}
	return 0
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
