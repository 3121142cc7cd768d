package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

type AttendanceService struct {
	repo   ports.AttendanceRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewAttendanceService(repo ports.AttendanceRepository, logger zerolog.Logger) *AttendanceService {
	return &AttendanceService{repo: repo, logger: logger, now: time.Now}
}

func (s *AttendanceService) CheckIn(ctx context.Context, caller domain.Caller) (*domain.Attendance, error) {
	return s.record(ctx, caller, domain.CheckIn)
}

func (s *AttendanceService) CheckOut(ctx context.Context, caller domain.Caller) (*domain.Attendance, error) {
	return s.record(ctx, caller, domain.CheckOut)
}

// Report returns the caller's records inside r, oldest first.
func (s *AttendanceService) Report(ctx context.Context, caller domain.Caller, r domain.DayRange) ([]*domain.Attendance, error) {
	if !caller.Registered() {
		return nil, domain.ErrNotRegistered
	}
	records, err := s.repo.List(ctx, ports.AttendanceFilter{UserID: caller.UserID, From: r.From, To: r.To})
	if err != nil {
		return nil, fmt.Errorf("attendance report: %w", err)
	}
	return records, nil
}

func (s *AttendanceService) record(ctx context.Context, caller domain.Caller, kind domain.AttendanceType) (*domain.Attendance, error) {
	if !caller.Registered() {
		return nil, domain.ErrNotRegistered
	}
	a := &domain.Attendance{UserID: caller.UserID, Type: kind, Timestamp: s.now().UTC()}
	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.Error().Err(err).Str("user_id", caller.UserID).Str("type", string(kind)).Msg("failed to record attendance")
		return nil, fmt.Errorf("record %s: %w", kind, err)
	}
	s.logger.Info().Str("user_id", caller.UserID).Str("type", string(kind)).Msg("attendance recorded")
	return a, nil
}
