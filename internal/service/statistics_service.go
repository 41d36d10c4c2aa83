package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"portfee/internal/logger"
	"portfee/internal/model"
	"portfee/internal/permission"
	"portfee/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StatisticsService interface {
	GetStatistics(ctx context.Context, user *model.User, from, to time.Time) (*model.TaxStatistics, error)
}

type statisticsService struct {
	repo  repository.StatisticsRepository
	perms *permission.Evaluator
	log   *zap.Logger
}

func NewStatisticsService(repo repository.StatisticsRepository, perms *permission.Evaluator, log *zap.Logger) StatisticsService {
	return &statisticsService{
		repo:  repo,
		perms: perms,
		log:   logger.OrNop(log).Named("service.statistics"),
	}
}

// GetStatistics sums the stored taxes of the forms submitted in [from, to)
// that the user may view, overall, per status and per port. Ports are ordered
// by total, highest first.
func (s *statisticsService) GetStatistics(ctx context.Context, user *model.User, from, to time.Time) (*model.TaxStatistics, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: the window must end after it starts", ErrInvalidInput)
	}
	forms, err := s.repo.SubmittedBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	forms = permission.Filter(s.perms, forms, user, permission.ActionView)

	stats := &model.TaxStatistics{From: from.UTC(), To: to.UTC()}
	byStatus := map[model.Status]*model.StatusTotals{}
	byPort := map[uuid.UUID]*model.PortTotals{}
	var statusOrder []model.Status
	var portOrder []uuid.UUID

	for i := range forms {
		form := &forms[i]
		stats.Overall.Add(form)

		st, ok := byStatus[form.Status]
		if !ok {
			st = &model.StatusTotals{Status: form.Status}
			byStatus[form.Status] = st
			statusOrder = append(statusOrder, form.Status)
		}
		st.Add(form)

		var key uuid.UUID // uuid.Nil groups forms without a port of call
		if form.PortOfCallID != nil {
			key = *form.PortOfCallID
		}
		pt, ok := byPort[key]
		if !ok {
			pt = &model.PortTotals{PortID: form.PortOfCallID}
			if form.PortOfCall != nil {
				pt.PortName = form.PortOfCall.Name
			}
			byPort[key] = pt
			portOrder = append(portOrder, key)
		}
		pt.Add(form)
	}

	for _, status := range statusOrder {
		stats.ByStatus = append(stats.ByStatus, *byStatus[status])
	}
	for _, key := range portOrder {
		stats.ByPort = append(stats.ByPort, *byPort[key])
	}
	sort.SliceStable(stats.ByPort, func(i, j int) bool {
		return stats.ByPort[i].Total.GreaterThan(stats.ByPort[j].Total)
	})

	s.log.Debug("statistics computed", zap.Int("forms", stats.Overall.Forms))
	return stats, nil
}
