package analyses

import (
	"fmt"
	"time"
)

func sampleProfile() Profile {
	return Profile{
		Name:             "Meera",
		Age:              "32",
		Gender:           "female",
		SkinType:         "Combination",
		Sensitivity:      "Moderate",
		Concerns:         []string{"Acne", "Dark circles"},
		HealthConditions: []string{"Thyroid"},
		HealthData: &HealthData{
			Steps:      4200,
			SleepHours: 6.5,
			HeartRate:  78,
			LastSync:   "2026-01-10T07:30:00Z",
		},
	}
}

func sampleMetrics(score int) Metrics {
	return Metrics{
		OverallScore: score,
		EyeAge:       34,
		SkinAge:      30,
		Hydration:    55,
		Redness:      20,
		Pigmentation: 25,
		Lines:        15,
		Acne:         30,
		Translucency: 60,
		Uniformness:  65,
		Pores:        40,
		Summary:      fmt.Sprintf("Analysis with score %d", score),
		Recommendations: Recommendations{
			Yoga:            []string{"Bhujangasana"},
			Meditation:      []string{"Yoga nidra"},
			NaturalRemedies: []string{"Turmeric mask"},
			Diet: Diet{
				Juices: []string{"Amla"},
				Eat:    []string{"Leafy greens"},
				Avoid:  []string{"Fried food"},
			},
			Exercises: Exercises{
				Face: []string{"Jaw release"},
				Body: []string{"Brisk walk"},
			},
			StressManagement: []string{"Journaling"},
		},
	}
}

// steppingClock returns t1, t2, ... one second apart.
func steppingClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Second)
	}
}
