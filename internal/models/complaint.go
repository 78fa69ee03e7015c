package models

import "time"

// MessComplaint is a student-submitted complaint with a human-friendly
// reference number (CMP-XXXXXXXX).
type MessComplaint struct {
	ID              string    `db:"id" json:"id"`
	ComplaintNumber string    `db:"complaint_number" json:"complaint_number"`
	StudentID       string    `db:"student_id" json:"student_id"`
	Complaint       string    `db:"complaint" json:"complaint"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// ComplaintDetail includes the submitting student's identity.
type ComplaintDetail struct {
	MessComplaint
	StudentName  string `db:"student_name" json:"student_name"`
	StudentEmail string `db:"student_email" json:"student_email"`
}
