package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/andy/workbench/internal/domain"
	"github.com/andy/workbench/internal/repository"
)

var (
	ErrInvalidSubject     = errors.New("a project or print job is required")
	ErrInvalidUser        = errors.New("a user is required")
	ErrSubjectNotFound    = errors.New("project or print job not found")
	ErrTimeLogAlreadyOpen = errors.New("a time log is already running for this subject")
	ErrNoOpenTimeLog      = errors.New("no running time log for this subject")
)

// TrackerService starts and stops time logs on projects and print jobs
type TrackerService interface {
	// FindOpen returns the running log of the user on the subject, or nil
	FindOpen(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error)

	// Start opens a new log. Fails with ErrTimeLogAlreadyOpen if one is running.
	Start(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error)

	// End closes the log now. Unknown or already closed logs return nil.
	End(ctx context.Context, timeLogID int64) (*domain.TimeLog, error)

	// StopOpen ends the running log of the user on the subject
	StopOpen(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error)

	// ListOpen returns every running log of the user
	ListOpen(ctx context.Context, userID int64) ([]*domain.TimeLog, error)

	// History returns all logs of the subject, oldest first
	History(ctx context.Context, subject domain.Subject) ([]*domain.TimeLog, error)

	// Elapsed returns the elapsed time of a log at now
	Elapsed(ctx context.Context, timeLogID int64, now time.Time) (time.Duration, error)
}

type trackerService struct {
	logRepo      repository.TimeLogRepository
	projectRepo  repository.ProjectRepository
	printJobRepo repository.PrintJobRepository
	logger       *zap.Logger
	now          func() time.Time
}

// NewTrackerService creates a new tracker service
func NewTrackerService(
	logRepo repository.TimeLogRepository,
	projectRepo repository.ProjectRepository,
	printJobRepo repository.PrintJobRepository,
	logger *zap.Logger,
) TrackerService {
	return &trackerService{
		logRepo:      logRepo,
		projectRepo:  projectRepo,
		printJobRepo: printJobRepo,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *trackerService) FindOpen(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error) {
	if err := checkSubjectAndUser(subject, userID); err != nil {
		return nil, err
	}
	return s.logRepo.FindOpen(ctx, subject, userID)
}

func (s *trackerService) Start(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error) {
	if err := checkSubjectAndUser(subject, userID); err != nil {
		return nil, err
	}

	if err := s.subjectExists(ctx, subject); err != nil {
		return nil, err
	}

	existing, err := s.logRepo.FindOpen(ctx, subject, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTimeLogAlreadyOpen
	}

	log := domain.NewTimeLog(subject, userID, s.now())
	if err := s.logRepo.Create(ctx, log); err != nil {
		// lost a race with another writer
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrTimeLogAlreadyOpen
		}
		return nil, err
	}

	s.logger.Info("time log started",
		zap.Int64("time_log_id", log.ID),
		zap.Stringer("subject", subject),
		zap.Int64("user_id", userID),
	)

	return log, nil
}

func (s *trackerService) End(ctx context.Context, timeLogID int64) (*domain.TimeLog, error) {
	log, err := s.logRepo.End(ctx, timeLogID, s.now())
	if err != nil {
		return nil, err
	}
	if log == nil {
		s.logger.Debug("end ignored, time log missing or closed", zap.Int64("time_log_id", timeLogID))
		return nil, nil
	}

	s.logger.Info("time log ended",
		zap.Int64("time_log_id", log.ID),
		zap.Stringer("subject", log.Subject()),
		zap.Duration("elapsed", domain.Elapsed(log, s.now())),
	)

	return log, nil
}

func (s *trackerService) StopOpen(ctx context.Context, subject domain.Subject, userID int64) (*domain.TimeLog, error) {
	open, err := s.FindOpen(ctx, subject, userID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrNoOpenTimeLog
	}

	log, err := s.End(ctx, open.ID)
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, ErrNoOpenTimeLog
	}
	return log, nil
}

func (s *trackerService) ListOpen(ctx context.Context, userID int64) ([]*domain.TimeLog, error) {
	if userID <= 0 {
		return nil, ErrInvalidUser
	}
	return s.logRepo.List(ctx, repository.TimeLogFilter{UserID: &userID, OpenOnly: true})
}

func (s *trackerService) History(ctx context.Context, subject domain.Subject) ([]*domain.TimeLog, error) {
	if err := subject.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubject, err)
	}
	return s.logRepo.List(ctx, repository.TimeLogFilter{Subject: &subject})
}

func (s *trackerService) Elapsed(ctx context.Context, timeLogID int64, now time.Time) (time.Duration, error) {
	log, err := s.logRepo.GetByID(ctx, timeLogID)
	if err != nil {
		return 0, err
	}
	return domain.Elapsed(log, now), nil
}

func (s *trackerService) subjectExists(ctx context.Context, subject domain.Subject) error {
	var err error
	switch subject.Kind {
	case domain.SubjectProject:
		_, err = s.projectRepo.GetByID(ctx, subject.ID)
	case domain.SubjectPrintJob:
		_, err = s.printJobRepo.GetByID(ctx, subject.ID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrSubjectNotFound, subject)
	}
	return err
}

func checkSubjectAndUser(subject domain.Subject, userID int64) error {
	if err := subject.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubject, err)
	}
	if userID <= 0 {
		return ErrInvalidUser
	}
	return nil
}
