package skinai

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"skincare-backend/internal/analyses"
)

type rawDiet struct {
	Juices []string `json:"juices"`
	Eat    []string `json:"eat"`
	Avoid  []string `json:"avoid"`
}

type rawExercises struct {
	Face []string `json:"face"`
	Body []string `json:"body"`
}

type rawRecommendations struct {
	Yoga             []string     `json:"yoga"`
	Meditation       []string     `json:"meditation"`
	NaturalRemedies  []string     `json:"naturalRemedies"`
	Diet             rawDiet      `json:"diet"`
	Exercises        rawExercises `json:"exercises"`
	StressManagement []string     `json:"stressManagement"`
}

type rawAnalysis struct {
	OverallScore    *float64           `json:"overallScore"`
	EyeAge          *float64           `json:"eyeAge"`
	SkinAge         *float64           `json:"skinAge"`
	Hydration       *float64           `json:"hydration"`
	Redness         *float64           `json:"redness"`
	Pigmentation    *float64           `json:"pigmentation"`
	Lines           *float64           `json:"lines"`
	Acne            *float64           `json:"acne"`
	Translucency    *float64           `json:"translucency"`
	Uniformness     *float64           `json:"uniformness"`
	Pores           *float64           `json:"pores"`
	Summary         string             `json:"summary"`
	Recommendations rawRecommendations `json:"recommendations"`
}

// ParseAnalysis decodes model output into Metrics. Markdown code fences are
// stripped, numbers are rounded, scores are clamped to [0,100], ages to [0,maxAge],
// and missing recommendation lists become empty lists.
func ParseAnalysis(output string) (analyses.Metrics, error) {
	payload := stripFences(output)
	if payload == "" {
		return analyses.Metrics{}, ErrEmptyResponse
	}

	var raw rawAnalysis
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return analyses.Metrics{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
	}

	fields := []struct {
		name string
		val  *float64
	}{
		{"overallScore", raw.OverallScore},
		{"eyeAge", raw.EyeAge},
		{"skinAge", raw.SkinAge},
		{"hydration", raw.Hydration},
		{"redness", raw.Redness},
		{"pigmentation", raw.Pigmentation},
		{"lines", raw.Lines},
		{"acne", raw.Acne},
		{"translucency", raw.Translucency},
		{"uniformness", raw.Uniformness},
		{"pores", raw.Pores},
	}
	for _, f := range fields {
		if f.val == nil {
			return analyses.Metrics{}, fmt.Errorf("%w: missing %s", ErrSchemaMismatch, f.name)
		}
	}

	r := raw.Recommendations
	return analyses.Metrics{
		OverallScore: score(*raw.OverallScore),
		EyeAge:       age(*raw.EyeAge),
		SkinAge:      age(*raw.SkinAge),
		Hydration:    score(*raw.Hydration),
		Redness:      score(*raw.Redness),
		Pigmentation: score(*raw.Pigmentation),
		Lines:        score(*raw.Lines),
		Acne:         score(*raw.Acne),
		Translucency: score(*raw.Translucency),
		Uniformness:  score(*raw.Uniformness),
		Pores:        score(*raw.Pores),
		Summary:      strings.TrimSpace(raw.Summary),
		Recommendations: analyses.Recommendations{
			Yoga:            list(r.Yoga),
			Meditation:      list(r.Meditation),
			NaturalRemedies: list(r.NaturalRemedies),
			Diet: analyses.Diet{
				Juices: list(r.Diet.Juices),
				Eat:    list(r.Diet.Eat),
				Avoid:  list(r.Diet.Avoid),
			},
			Exercises: analyses.Exercises{
				Face: list(r.Exercises.Face),
				Body: list(r.Exercises.Body),
			},
			StressManagement: list(r.StressManagement),
		},
	}, nil
}

func stripFences(output string) string {
	s := strings.TrimSpace(output)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line, e.g. ```json
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// maxAge is the largest age ParseAnalysis reports.
const maxAge = 200

func score(v float64) int {
	return int(math.Round(clamp(v, 0, 100)))
}

func age(v float64) int {
	return int(math.Round(clamp(v, 0, maxAge)))
}

// clamp bounds v before any int conversion.
func clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v), v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}

func list(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
