package service

import (
	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/pkg/logger"

	"go.uber.org/zap"
)

// AuditService 管理操作审计。落库失败只记日志，不阻断业务。
type AuditService struct {
	Repo *repository.AuditLogRepository
}

func NewAuditService(repo *repository.AuditLogRepository) *AuditService {
	return &AuditService{Repo: repo}
}

func (s *AuditService) Record(actorID uint, action, target, detail, ip string) {
	entry := &model.AuditLog{
		ActorID: actorID,
		Action:  action,
		Target:  target,
		Detail:  detail,
		IP:      ip,
	}
	if err := s.Repo.Create(entry); err != nil {
		logger.Log.Warn("审计日志写入失败",
			zap.Uint("actorId", actorID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func (s *AuditService) List(filter repository.AuditFilter, page, limit int) ([]model.AuditLog, int64, error) {
	return s.Repo.List(filter, page, limit)
}
