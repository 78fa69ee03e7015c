package models

import "time"

// DocumentStatus tracks the verification state of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "Pending"
	DocumentVerified DocumentStatus = "Verified"
	DocumentRejected DocumentStatus = "Rejected"
)

// VerifiableStatus reports whether the value is a valid verification outcome.
func VerifiableStatus(status DocumentStatus) bool {
	return status == DocumentVerified || status == DocumentRejected
}

// StudentDocument is a file a student uploaded for verification.
type StudentDocument struct {
	ID           string         `db:"id" json:"id"`
	StudentID    string         `db:"student_id" json:"student_id"`
	DocumentURL  string         `db:"document_url" json:"document_url"`
	DocumentType string         `db:"document_type" json:"document_type"`
	Status       DocumentStatus `db:"status" json:"status"`
	UploadedAt   time.Time      `db:"uploaded_at" json:"uploaded_at"`
}

// DocumentDetail includes the owning student's identity for admin review.
type DocumentDetail struct {
	StudentDocument
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}
