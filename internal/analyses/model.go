package analyses

import "time"

// HealthData holds optional wearable metrics synced by the client.
type HealthData struct {
	Steps      float64 `json:"steps"`
	SleepHours float64 `json:"sleepHours"`
	HeartRate  float64 `json:"heartRate"`
	LastSync   string  `json:"lastSync"`
}

// Profile is the user-supplied profile as it existed when the analysis ran.
type Profile struct {
	Name             string      `json:"name"`
	Age              string      `json:"age"`
	Gender           string      `json:"gender"`
	SkinType         string      `json:"skinType"`
	Sensitivity      string      `json:"sensitivity"`
	Concerns         []string    `json:"concerns"`
	HealthConditions []string    `json:"healthConditions"`
	HealthData       *HealthData `json:"healthData,omitempty"`
}

// Diet groups dietary recommendations.
type Diet struct {
	Juices []string `json:"juices"`
	Eat    []string `json:"eat"`
	Avoid  []string `json:"avoid"`
}

// Exercises groups physical activity recommendations.
type Exercises struct {
	Face []string `json:"face"`
	Body []string `json:"body"`
}

// Recommendations is the structured prescription returned with an analysis.
type Recommendations struct {
	Yoga             []string  `json:"yoga"`
	Meditation       []string  `json:"meditation"`
	NaturalRemedies  []string  `json:"naturalRemedies"`
	Diet             Diet      `json:"diet"`
	Exercises        Exercises `json:"exercises"`
	StressManagement []string  `json:"stressManagement"`
}

// Metrics holds the scores produced by a skin analysis. EyeAge and SkinAge are
// ages; every other score is in [0,100].
type Metrics struct {
	OverallScore    int             `json:"overallScore"`
	EyeAge          int             `json:"eyeAge"`
	SkinAge         int             `json:"skinAge"`
	Hydration       int             `json:"hydration"`
	Redness         int             `json:"redness"`
	Pigmentation    int             `json:"pigmentation"`
	Lines           int             `json:"lines"`
	Acne            int             `json:"acne"`
	Translucency    int             `json:"translucency"`
	Uniformness     int             `json:"uniformness"`
	Pores           int             `json:"pores"`
	Summary         string          `json:"summary"`
	Recommendations Recommendations `json:"recommendations"`
}

// AnalysisRecord is one completed skin analysis owned by a single user.
// Records are never updated after insert.
type AnalysisRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	Profile   Profile   `json:"profile"`
	Analysis  Metrics   `json:"analysis"`
}

// Summary is the list view of an AnalysisRecord.
type Summary struct {
	ID           string    `json:"id" db:"id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	OverallScore int       `json:"overallScore" db:"overall_score"`
	SkinAge      int       `json:"skinAge" db:"skin_age"`
	EyeAge       int       `json:"eyeAge" db:"eye_age"`
}

// Clone returns a deep copy so the snapshot cannot be changed through shared slices.
func (p Profile) Clone() Profile {
	out := p
	out.Concerns = cloneStrings(p.Concerns)
	out.HealthConditions = cloneStrings(p.HealthConditions)
	if p.HealthData != nil {
		hd := *p.HealthData
		out.HealthData = &hd
	}
	return out
}

// Clone returns a deep copy of the metrics.
func (m Metrics) Clone() Metrics {
	out := m
	r := m.Recommendations
	out.Recommendations = Recommendations{
		Yoga:            cloneStrings(r.Yoga),
		Meditation:      cloneStrings(r.Meditation),
		NaturalRemedies: cloneStrings(r.NaturalRemedies),
		Diet: Diet{
			Juices: cloneStrings(r.Diet.Juices),
			Eat:    cloneStrings(r.Diet.Eat),
			Avoid:  cloneStrings(r.Diet.Avoid),
		},
		Exercises: Exercises{
			Face: cloneStrings(r.Exercises.Face),
			Body: cloneStrings(r.Exercises.Body),
		},
		StressManagement: cloneStrings(r.StressManagement),
	}
	return out
}

// Clone returns a deep copy of the record.
func (r AnalysisRecord) Clone() AnalysisRecord {
	out := r
	out.Profile = r.Profile.Clone()
	out.Analysis = r.Analysis.Clone()
	return out
}

func (r AnalysisRecord) summary() Summary {
	return Summary{
		ID:           r.ID,
		CreatedAt:    r.CreatedAt,
		OverallScore: r.Analysis.OverallScore,
		SkinAge:      r.Analysis.SkinAge,
		EyeAge:       r.Analysis.EyeAge,
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
