package analysis

import "fmt"

// schema is the OpenAPI subset generateContent accepts as a response schema.
type schema struct {
	Type        string            `json:"type"`
	Description string            `json:"description,omitempty"`
	Properties  map[string]schema `json:"properties,omitempty"`
	Required    []string          `json:"required,omitempty"`
}

func buildPrompt(languageName string) string {
	return fmt.Sprintf(`You are an expert medical translator and assistant.
I have uploaded a medical report.

Please perform the following tasks:
1. Analyze the entire document content.
2. Translate the FULL content into %[1]s. Technical medical terms may be translated or kept in English if commonly used, but the surrounding context must be in %[1]s.
3. Create a summary of the key findings in %[1]s.
4. Provide general lifestyle and dietary advice based on any abnormal findings in %[1]s. Do not prescribe medication.

Return the output strictly as a JSON object.`, languageName)
}

// responseSchema constrains the service to the three required string fields.
func responseSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]schema{
			"summary": {
				Type:        "STRING",
				Description: "A concise summary of the medical report findings in the target language.",
			},
			"medicalAdvice": {
				Type:        "STRING",
				Description: "General lifestyle and dietary advice based on the report findings in the target language. Do not prescribe medication.",
			},
			"translatedText": {
				Type:        "STRING",
				Description: "The full text of the medical report translated into the target language. Maintain the original structure (headings, values) as much as possible.",
			},
		},
		Required: []string{"summary", "medicalAdvice", "translatedText"},
	}
}
