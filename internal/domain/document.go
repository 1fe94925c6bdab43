package domain

import (
	"path"
	"strings"
)

// QueueMessage is a raw message received from the work queue.
type QueueMessage struct {
	Handle string
	Body   []byte
}

// WorkRequest is the decoded body of a work item: which document to analyze
// and where to post the result.
type WorkRequest struct {
	DocumentKey string `json:"s3_key" validate:"required"`
	CallbackURL string `json:"callback_url" validate:"required,http_url"`
}

// Valid reports whether both the document locator and callback target are set.
func (r WorkRequest) Valid() bool {
	return strings.TrimSpace(r.DocumentKey) != "" && strings.TrimSpace(r.CallbackURL) != ""
}

// WorkItem binds a work request to the queue handle used to acknowledge it.
type WorkItem struct {
	Handle  string
	Request WorkRequest
}

// Format is the declared source format of a document.
type Format string

const (
	FormatUnknown Format = ""
	FormatText    Format = "txt"
	FormatDOCX    Format = "docx"
	FormatPDF     Format = "pdf"
	FormatHTML    Format = "html"
)

var extensionFormats = map[string]Format{
	".txt":  FormatText,
	".docx": FormatDOCX,
	".pdf":  FormatPDF,
	".html": FormatHTML,
	".htm":  FormatHTML,
}

// FormatFromExtension maps a file extension (with leading dot) to a Format.
func FormatFromExtension(ext string) Format {
	return extensionFormats[strings.ToLower(ext)]
}

// FormatFromKey resolves the declared format of a document from its storage key.
// The second result is false when the key carries no extension at all.
func FormatFromKey(key string) (Format, bool) {
	ext := path.Ext(key)
	if ext == "" {
		return FormatUnknown, false
	}
	return FormatFromExtension(ext), true
}

// Document is the plain text extracted from one downloaded object.
type Document struct {
	Key    string
	Format Format
	Text   string
}

// Sentiment is the raw output of a sentiment model.
type Sentiment struct {
	Polarity     float64 `json:"polarity"`
	Subjectivity float64 `json:"subjectivity"`
}

// SentimentResult is a scored and classified document.
type SentimentResult struct {
	Polarity                      float64 `json:"polarity"`
	Subjectivity                  float64 `json:"subjectivity"`
	ObjectiveSentimentScore       float64 `json:"objective_sentiment_score"`
	PolarityStatus                string  `json:"polarity_status"`
	PolarityDescription           string  `json:"polarity_description"`
	SubjectivityStatus            string  `json:"subjectivity_status"`
	SubjectivityDescription       string  `json:"subjectivity_description"`
	ObjectiveSentimentStatus      string  `json:"objective_sentiment_status"`
	ObjectiveSentimentDescription string  `json:"objective_sentiment_description"`
}

// Status is the terminal status of one pipeline run.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// CallbackPayload is posted to the callback target. Success payloads carry the
// flattened SentimentResult; error payloads carry Message instead.
type CallbackPayload struct {
	*SentimentResult
	Message     string `json:"message,omitempty"`
	DocumentKey string `json:"s3_key"`
	Status      Status `json:"status"`
}

// SuccessPayload builds the payload for a scored document.
func SuccessPayload(key string, result SentimentResult) CallbackPayload {
	return CallbackPayload{SentimentResult: &result, DocumentKey: key, Status: StatusSuccess}
}

// ErrorPayload builds the payload for a failed pipeline run.
func ErrorPayload(key, message string) CallbackPayload {
	return CallbackPayload{Message: message, DocumentKey: key, Status: StatusError}
}

// DeliveryOutcome reports whether the callback target accepted the payload.
// Status is the status of the payload that was posted.
type DeliveryOutcome struct {
	Delivered bool
	Status    Status
	Err       error
}

// DeliveryFailed builds a failed outcome.
func DeliveryFailed(err error) DeliveryOutcome {
	return DeliveryOutcome{Err: err}
}
