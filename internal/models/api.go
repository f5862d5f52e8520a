package models

// AnalyzeRequest is the JSON body for POST /analyze: both documents already
// extracted to plain text.
type AnalyzeRequest struct {
	JobDescription string `json:"job_description"`
	CV             string `json:"cv"`
}

// UploadAndAnalyzeRequest is the JSON body for POST /upload-and-analyze:
// both documents as base64-encoded PDFs, optionally data-URL-prefixed.
type UploadAndAnalyzeRequest struct {
	JobDescriptionFile string `json:"job_description_file"`
	CVFile             string `json:"cv_file"`
}

// AnalyzeResponse is the success envelope for both analysis endpoints.
type AnalyzeResponse struct {
	Success bool           `json:"success"`
	Source  ResultSource   `json:"source"`
	Data    AnalysisResult `json:"data"`
}
