package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/classroom-service/internal/repositories"
)

type dashboardService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewDashboardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) DashboardService {
	return &dashboardService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *dashboardService) GetStats(ctx context.Context) (*DashboardResponse, error) {
	stats, err := s.repo.Dashboard().GetStats(ctx, s.db)
	if err != nil {
		s.logger.Error("Failed to get dashboard stats", "error", err)
		return nil, err
	}

	semesters, err := s.repo.Dashboard().GetSemesterBreakdown(ctx, s.db)
	if err != nil {
		s.logger.Error("Failed to get semester breakdown", "error", err)
		return nil, err
	}
	if semesters == nil {
		semesters = []repositories.SemesterStat{}
	}

	return &DashboardResponse{Stats: stats, Semesters: semesters}, nil
}
