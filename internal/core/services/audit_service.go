package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/fincontrol/internal/apperrors"
	"github.com/SscSPs/fincontrol/internal/core/domain"
	portsrepo "github.com/SscSPs/fincontrol/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fincontrol/internal/core/ports/services"
	"github.com/SscSPs/fincontrol/internal/dto"
	"github.com/SscSPs/fincontrol/internal/utils/pagination"
)

const maxTimelineDays = 31

// auditService is the read side of the audit log and the day-grouping aggregator.
// It never writes to the log.
type auditService struct {
	BaseService
	repo        portsrepo.AuditReader
	loc         *time.Location
	daysPerPage int
}

// AuditOption configures the audit service.
type AuditOption func(*auditService)

// WithAuditLocation sets the time zone calendar days are taken in.
func WithAuditLocation(loc *time.Location) AuditOption {
	return func(s *auditService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithAuditDaysPerPage sets the default number of days per timeline page.
func WithAuditDaysPerPage(days int) AuditOption {
	return func(s *auditService) {
		if days > 0 {
			s.daysPerPage = days
		}
	}
}

// NewAuditService creates the audit service.
func NewAuditService(repo portsrepo.AuditReader, options ...AuditOption) portssvc.AuditSvcFacade {
	svc := &auditService{repo: repo, loc: time.UTC, daysPerPage: 7}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AuditSvcFacade = (*auditService)(nil)

// parseDayStart parses a calendar date (or timestamp) and returns the start of that day in loc.
func parseDayStart(value string, name string, loc *time.Location) (time.Time, error) {
	if len(value) == len(dayLayout) {
		t, err := time.ParseInLocation(dayLayout, value, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: invalid %s %q", apperrors.ErrValidation, name, value)
		}
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q", apperrors.ErrValidation, name, value)
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc), nil
}

// parseBound parses a search bound. A plain date as upper bound covers the whole day.
func parseBound(value string, name string, loc *time.Location, upper bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if len(value) == len(dayLayout) {
		t, err := parseDayStart(value, name, loc)
		if err != nil {
			return nil, err
		}
		if upper {
			t = t.AddDate(0, 0, 1)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid %s %q", apperrors.ErrValidation, name, value)
	}
	return &t, nil
}

// ListAuditEvents searches the log with a (timestamp, id) cursor.
func (s *auditService) ListAuditEvents(ctx context.Context, cc domain.CommandContext, params dto.ListAuditEventsParams) (*dto.ListAuditEventsResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	filter := domain.AuditFilter{
		Actor:            params.Actor,
		EntityName:       strings.ToUpper(params.EntityName),
		ResourceID:       params.ResourceID,
		ProcessingResult: domain.ProcessingResult(params.ProcessingResult),
		Limit:            limit + 1,
	}
	var err error
	if filter.From, err = parseBound(params.From, "from", s.loc, false); err != nil {
		return nil, err
	}
	if filter.To, err = parseBound(params.To, "to", s.loc, true); err != nil {
		return nil, err
	}
	if params.NextToken != nil && *params.NextToken != "" {
		at, id, err := pagination.DecodeEventToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		filter.AfterTimestamp = &at
		filter.AfterID = id
	}

	events, err := s.repo.ListAuditEvents(ctx, cc.TenantID, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit events")
		return nil, err
	}

	var nextToken *string
	if len(events) > limit {
		events = events[:limit]
		last := events[len(events)-1]
		token := pagination.EncodeEventToken(last.Timestamp, last.ID)
		nextToken = &token
	}

	views := make([]domain.AuditEventView, len(events))
	for i, ev := range events {
		views[i] = BuildEventView(ev)
	}
	s.LogDebug(ctx, "Audit events listed", slog.Int("count", len(views)))
	return &dto.ListAuditEventsResponse{Events: views, NextToken: nextToken}, nil
}

// Timeline returns one page of day groups for [from, to]. Pages partition the range by whole
// days, so walking every page yields every event of the range exactly once.
func (s *auditService) Timeline(ctx context.Context, cc domain.CommandContext, params dto.AuditTimelineParams) (*domain.AuditTimeline, error) {
	rangeStart, err := parseDayStart(params.From, "from", s.loc)
	if err != nil {
		return nil, err
	}
	lastDay, err := parseDayStart(params.To, "to", s.loc)
	if err != nil {
		return nil, err
	}
	if lastDay.Before(rangeStart) {
		return nil, fmt.Errorf("%w: to is before from", apperrors.ErrValidation)
	}
	rangeEnd := lastDay.AddDate(0, 0, 1)

	days := params.Days
	if days <= 0 {
		days = s.daysPerPage
	}
	if days > maxTimelineDays {
		days = maxTimelineDays
	}

	pageStart := rangeStart
	if params.NextToken != nil && *params.NextToken != "" {
		tokenStart, err := pagination.DecodeDateBasedToken(*params.NextToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
		}
		// Pages always begin at midnight so no part of a day falls between two pages.
		y, m, d := tokenStart.In(s.loc).Date()
		tokenStart = time.Date(y, m, d, 0, 0, 0, 0, s.loc)
		if tokenStart.Before(rangeStart) || !tokenStart.Before(rangeEnd) {
			return nil, fmt.Errorf("%w: pagination token outside the requested range", apperrors.ErrValidation)
		}
		pageStart = tokenStart
	}
	pageEnd := pageStart.AddDate(0, 0, days)
	if pageEnd.After(rangeEnd) {
		pageEnd = rangeEnd
	}

	events, err := s.repo.ListAuditEvents(ctx, cc.TenantID, domain.AuditFilter{From: &pageStart, To: &pageEnd})
	if err != nil {
		s.LogError(ctx, err, "Failed to load audit timeline")
		return nil, err
	}

	timeline := &domain.AuditTimeline{Days: AggregateByDay(events, s.loc)}
	if timeline.Days == nil {
		timeline.Days = []domain.AuditDayGroup{}
	}
	if pageEnd.Before(rangeEnd) {
		token := pagination.EncodeDateBasedToken(pageEnd)
		timeline.NextToken = &token
	}
	s.LogDebug(ctx, "Audit timeline built",
		slog.String("page_start", pageStart.Format(dayLayout)),
		slog.Int("events", len(events)),
		slog.Int("days", len(timeline.Days)))
	return timeline, nil
}
