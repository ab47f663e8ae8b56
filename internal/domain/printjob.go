package domain

import (
	"errors"
	"strings"
	"time"
)

type PrintJobStatus string

const (
	PrintJobQueued   PrintJobStatus = "queued"
	PrintJobPrinting PrintJobStatus = "printing"
	PrintJobDone     PrintJobStatus = "done"
)

// PrintJob is a 3D print order billed by material, machine time and labour
type PrintJob struct {
	ID           int64
	Name         string
	CustomerID   int64
	RateCardID   *int64
	Quantity     int
	WeightGrams  float64 // per unit
	PricePerGram float64
	PrintHours   float64
	Status       PrintJobStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewPrintJob creates a queued print job for a single unit
func NewPrintJob(name string, customerID int64) *PrintJob {
	now := time.Now()
	return &PrintJob{
		Name:       strings.TrimSpace(name),
		CustomerID: customerID,
		Quantity:   1,
		Status:     PrintJobQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Subject returns the subject reference for this print job
func (j *PrintJob) Subject() Subject {
	return PrintJobSubject(j.ID)
}

// Validate returns an error if the print job is invalid
func (j *PrintJob) Validate() error {
	if strings.TrimSpace(j.Name) == "" {
		return errors.New("print job name is required")
	}
	if j.CustomerID <= 0 {
		return errors.New("customer ID is required")
	}
	if j.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}
	if j.WeightGrams < 0 || j.PricePerGram < 0 || j.PrintHours < 0 {
		return errors.New("weight, price per gram and print hours cannot be negative")
	}
	switch j.Status {
	case PrintJobQueued, PrintJobPrinting, PrintJobDone:
	default:
		return errors.New("unknown print job status")
	}
	return nil
}
