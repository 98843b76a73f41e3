package gemini

import "github.com/google/generative-ai-go/genai"

func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func number() *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber}
}

// analysisSchema mirrors analyses.Metrics so the model returns parseable JSON.
func analysisSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"overallScore": number(),
			"eyeAge":       number(),
			"skinAge":      number(),
			"hydration":    number(),
			"redness":      number(),
			"pigmentation": number(),
			"lines":        number(),
			"acne":         number(),
			"translucency": number(),
			"uniformness":  number(),
			"pores":        number(),
			"summary":      {Type: genai.TypeString},
			"recommendations": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"yoga":            stringList(),
					"meditation":      stringList(),
					"naturalRemedies": stringList(),
					"diet": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"juices": stringList(),
							"eat":    stringList(),
							"avoid":  stringList(),
						},
						Required: []string{"juices", "eat", "avoid"},
					},
					"exercises": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"face": stringList(),
							"body": stringList(),
						},
						Required: []string{"face", "body"},
					},
					"stressManagement": stringList(),
				},
				Required: []string{"yoga", "meditation", "naturalRemedies", "diet", "exercises", "stressManagement"},
			},
		},
		Required: []string{
			"overallScore", "eyeAge", "skinAge", "hydration", "redness",
			"pigmentation", "lines", "acne", "translucency", "uniformness",
			"pores", "summary", "recommendations",
		},
	}
}
