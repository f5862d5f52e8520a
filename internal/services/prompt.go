package services

import "fmt"

// BuildAnalysisPrompt embeds both documents into the single fixed
// comparative-analysis template. The template asks for the canonical result
// schema directly so the normalizer usually gets clean JSON.
func BuildAnalysisPrompt(jobDescription, cv string) string {
	return fmt.Sprintf(`You are an expert HR analyst. Analyze this job description and CV:

JOB DESCRIPTION:
%s

CANDIDATE CV:
%s

Compare the candidate against the role and return your analysis as a JSON object with exactly these fields:
{
  "overallScore": <integer 0-100>,
  "strengths": ["<candidate strength>", ...],
  "weaknesses": ["<candidate weakness>", ...],
  "alignment": {
    "technicalSkills": <integer 0-100>,
    "experience": <integer 0-100>,
    "education": <integer 0-100>,
    "softSkills": <integer 0-100>
  },
  "recommendations": ["<actionable recommendation>", ...],
  "summary": "<3-5 sentence overall assessment>",
  "keyMatches": ["<requirement the candidate meets>", ...],
  "missingRequirements": ["<requirement the candidate lacks>", ...]
}

Order list items by relevance. Be objective and cite specifics from the CV. Return ONLY the JSON object.`,
		jobDescription, cv)
}
