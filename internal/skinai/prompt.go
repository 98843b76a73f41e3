package skinai

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"skincare-backend/internal/analyses"
)

//go:embed prompts/analyze.tmpl
var analyzeTemplateText string

var analyzeTemplate = template.Must(template.New("analyze").Parse(analyzeTemplateText))

const (
	lowSleepHours     = 7.0
	highHeartRateBPM  = 90.0
	lowDailySteps     = 5000.0
	defaultLanguage   = "en"
	transcribeCommand = "Transcribe this audio clearly in %s. Format any spoken numbers as digits (e.g., \"36\" instead of \"thirty six\"). Return only the spoken text without any formatting or extra words."
)

type analyzePromptData struct {
	ProfileJSON string
	Language    string
	Focus       []string
}

// AnalyzePrompt renders the dermatologist prompt for a profile. Wearable
// readings that cross a threshold add explicit focus lines.
func AnalyzePrompt(profile analyses.Profile, language string) (string, error) {
	payload, err := json.Marshal(profile)
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}
	data := analyzePromptData{
		ProfileJSON: string(payload),
		Language:    Language(language),
		Focus:       focusFor(profile),
	}
	var sb strings.Builder
	if err := analyzeTemplate.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render analyze prompt: %w", err)
	}
	return sb.String(), nil
}

// TranscribePrompt is the instruction sent alongside recorded audio.
func TranscribePrompt(language string) string {
	return fmt.Sprintf(transcribeCommand, Language(language))
}

// Language returns the trimmed language code, defaulting to English.
func Language(language string) string {
	if lang := strings.TrimSpace(language); lang != "" {
		return lang
	}
	return defaultLanguage
}

func focusFor(profile analyses.Profile) []string {
	var focus []string
	hd := profile.HealthData
	if hd != nil {
		if hd.SleepHours > 0 && hd.SleepHours < lowSleepHours {
			focus = append(focus, fmt.Sprintf("Sleep is %.1f hours: prioritize eye care and anti-inflammatory juices.", hd.SleepHours))
		}
		if hd.HeartRate >= highHeartRateBPM {
			focus = append(focus, fmt.Sprintf("Resting heart rate is %.0f bpm: focus on Vata-balancing meditation.", hd.HeartRate))
		}
		if hd.Steps > 0 && hd.Steps < lowDailySteps {
			focus = append(focus, fmt.Sprintf("Daily steps are %.0f: suggest circulation-boosting body exercises.", hd.Steps))
		}
	}
	for _, cond := range profile.HealthConditions {
		if strings.Contains(strings.ToLower(cond), "stress") {
			focus = append(focus, "Stress is a reported condition: focus on Vata-balancing meditation.")
			break
		}
	}
	return focus
}
