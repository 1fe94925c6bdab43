package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned when no extractor is registered for a format.
	ErrUnsupportedFormat = errors.New("unsupported file type")
	// ErrUnclassified is returned when a score falls outside every band of a table.
	ErrUnclassified = errors.New("score outside every band")
)

// Stage names a step of the document pipeline.
type Stage string

const (
	StageDownload  Stage = "download"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StageScore     Stage = "score"
	StageDeliver   Stage = "deliver"
)

// Caller-facing messages placed in error payloads.
const (
	MsgDownloadFailed    = "Failed to download file"
	MsgUnsupportedFormat = "Unsupported file type"
	MsgExtractionFailed  = "An error occurred while extracting the text"
	MsgDetectionFailed   = "Failed to detect the text language"
	MsgTranslationFailed = "Failed to translate the text"
	MsgScoringFailed     = "Sentiment analysis failed"
	MsgInternalError     = "Internal processing error"
)

// StageError is a pipeline failure. Message is safe to hand back to the caller.
type StageError struct {
	Stage   Stage
	Message string
	Err     error
}

// NewStageError wraps cause as a failure of stage.
func NewStageError(stage Stage, message string, cause error) *StageError {
	return &StageError{Stage: stage, Message: message, Err: cause}
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// PayloadMessage returns the message to report for err in an error payload.
func PayloadMessage(err error) string {
	var stageErr *StageError
	if errors.As(err, &stageErr) && stageErr.Message != "" {
		return stageErr.Message
	}
	return MsgInternalError
}
