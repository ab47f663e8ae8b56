package domain

import (
	"errors"
	"fmt"
)

// SubjectKind identifies the billable unit a time log belongs to
type SubjectKind string

const (
	SubjectProject  SubjectKind = "project"
	SubjectPrintJob SubjectKind = "print_job"
)

// Subject is a reference to a project or a print job
type Subject struct {
	Kind SubjectKind
	ID   int64
}

// ProjectSubject returns a subject reference for a project
func ProjectSubject(id int64) Subject {
	return Subject{Kind: SubjectProject, ID: id}
}

// PrintJobSubject returns a subject reference for a print job
func PrintJobSubject(id int64) Subject {
	return Subject{Kind: SubjectPrintJob, ID: id}
}

// ParseSubjectKind accepts the CLI spellings of a subject kind
func ParseSubjectKind(s string) (SubjectKind, error) {
	switch s {
	case "project", "projects", "p":
		return SubjectProject, nil
	case "print_job", "printjob", "print-job", "job", "j":
		return SubjectPrintJob, nil
	}
	return "", fmt.Errorf("unknown subject kind %q (expected project or printjob)", s)
}

// Validate returns an error if the subject reference is incomplete
func (s Subject) Validate() error {
	if s.Kind != SubjectProject && s.Kind != SubjectPrintJob {
		return errors.New("subject kind is required")
	}
	if s.ID <= 0 {
		return errors.New("subject ID is required")
	}
	return nil
}

func (s Subject) String() string {
	switch s.Kind {
	case SubjectProject:
		return fmt.Sprintf("project #%d", s.ID)
	case SubjectPrintJob:
		return fmt.Sprintf("print job #%d", s.ID)
	}
	return fmt.Sprintf("%s #%d", s.Kind, s.ID)
}
