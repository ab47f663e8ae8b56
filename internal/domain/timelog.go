package domain

import (
	"errors"
	"time"
)

// TimeLog is one interval of work on a project or a print job.
// Exactly one of ProjectID and PrintJobID is set.
type TimeLog struct {
	ID         int64
	ProjectID  *int64
	PrintJobID *int64
	UserID     int64
	StartTime  time.Time
	EndTime    *time.Time // nil while the log is running
	Note       string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewTimeLog creates an open time log for the subject starting at now
func NewTimeLog(subject Subject, userID int64, now time.Time) *TimeLog {
	log := &TimeLog{
		UserID:    userID,
		StartTime: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id := subject.ID
	switch subject.Kind {
	case SubjectProject:
		log.ProjectID = &id
	case SubjectPrintJob:
		log.PrintJobID = &id
	}
	return log
}

// Subject returns the project or print job this log belongs to
func (l *TimeLog) Subject() Subject {
	if l.ProjectID != nil {
		return ProjectSubject(*l.ProjectID)
	}
	if l.PrintJobID != nil {
		return PrintJobSubject(*l.PrintJobID)
	}
	return Subject{}
}

// IsOpen returns true if the log has no end time
func (l *TimeLog) IsOpen() bool {
	return l.EndTime == nil
}

// Close sets the end time. Closed logs are never changed again.
func (l *TimeLog) Close(now time.Time) bool {
	if l.EndTime != nil {
		return false
	}
	l.EndTime = &now
	l.UpdatedAt = now
	return true
}

// Elapsed returns now - start for an open log and end - start for a closed one
func Elapsed(l *TimeLog, now time.Time) time.Duration {
	if l.EndTime == nil {
		return now.Sub(l.StartTime)
	}
	return l.EndTime.Sub(l.StartTime)
}

// Validate returns an error if the log is invalid
func (l *TimeLog) Validate() error {
	if l.ProjectID == nil && l.PrintJobID == nil {
		return errors.New("time log needs a project or a print job")
	}
	if l.ProjectID != nil && l.PrintJobID != nil {
		return errors.New("time log cannot belong to both a project and a print job")
	}
	if l.UserID <= 0 {
		return errors.New("user ID is required")
	}
	if l.StartTime.IsZero() {
		return errors.New("start time is required")
	}
	if l.EndTime != nil && l.EndTime.Before(l.StartTime) {
		return errors.New("end time must be after start time")
	}
	return nil
}
