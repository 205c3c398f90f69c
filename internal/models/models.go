package models

import "time"

// Profile is a named résumé configuration stored on the backend
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProfilesResponse is the payload returned by GET /profiles
type ProfilesResponse struct {
	Profiles []Profile `json:"profiles"`
}

// LoginRequest is the JSON body sent to POST /login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is the JSON body returned by a successful login
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}

// JobSubmission holds the form fields sent for PDF generation.
// It is never persisted.
type JobSubmission struct {
	ProfileName    string `json:"profile_name"`
	Company        string `json:"company"`
	Role           string `json:"role"`
	JobDescription string `json:"job_description"`
}

// FolderHandle is a reference to a directory the user granted write access to.
// Callers outside the platform layer treat it as opaque.
type FolderHandle struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// Outcome is the terminal state of a submission
type Outcome string

const (
	OutcomeSaved      Outcome = "saved"
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeFailed     Outcome = "failed"
)

// HistoryEntry records how a finished submission was resolved
type HistoryEntry struct {
	ID          int64     `json:"id"`
	ProfileName string    `json:"profile_name"`
	Company     string    `json:"company"`
	Role        string    `json:"role"`
	Filename    string    `json:"filename"`
	Outcome     Outcome   `json:"outcome"`
	Location    string    `json:"location"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
