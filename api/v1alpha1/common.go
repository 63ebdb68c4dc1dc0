package v1alpha1

type SubmissionStatus string

const (
	SubmissionStatusPending    SubmissionStatus = "pending"
	SubmissionStatusProcessing SubmissionStatus = "processing"
	SubmissionStatusProcessed  SubmissionStatus = "processed"
	SubmissionStatusFailed     SubmissionStatus = "failed"
)

// StringToSubmissionStatus returns false for anything that is not a known status.
func StringToSubmissionStatus(s string) (SubmissionStatus, bool) {
	switch s {
	case string(SubmissionStatusPending):
		return SubmissionStatusPending, true
	case string(SubmissionStatusProcessing):
		return SubmissionStatusProcessing, true
	case string(SubmissionStatusProcessed):
		return SubmissionStatusProcessed, true
	case string(SubmissionStatusFailed):
		return SubmissionStatusFailed, true
	default:
		return "", false
	}
}
