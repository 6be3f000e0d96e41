package service

import (
	"strconv"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"
)

// SiteConfigService 站点配置读取与管理，未配置时回落到内置默认值
type SiteConfigService struct {
	Repo *repository.SiteConfigRepository
}

func NewSiteConfigService(repo *repository.SiteConfigRepository) *SiteConfigService {
	return &SiteConfigService{Repo: repo}
}

func (s *SiteConfigService) getInt(key string, def int) int {
	value, err := s.Repo.Get(key)
	if err != nil || value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

func (s *SiteConfigService) getBool(key string, def bool) bool {
	value, err := s.Repo.Get(key)
	if err != nil || value == "" {
		return def
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return def
	}
	return b
}

// DailyTarget 每日练习目标题数
func (s *SiteConfigService) DailyTarget() int {
	return s.getInt(model.ConfigDailyTarget, 10)
}

func (s *SiteConfigService) ExamQuestionCount() int {
	return s.getInt(model.ConfigExamQuestionCount, 30)
}

func (s *SiteConfigService) ExamDurationMinutes() int {
	return s.getInt(model.ConfigExamDuration, 40)
}

func (s *SiteConfigService) ExamPassScore() int {
	return s.getInt(model.ConfigExamPassScore, 25)
}

func (s *SiteConfigService) AIEnabled() bool {
	return s.getBool(model.ConfigAIEnabled, true)
}

func (s *SiteConfigService) CorrectBonus() int {
	return s.getInt(model.ConfigCorrectBonus, 2)
}

// DefaultAIQuota 新用户默认 AI 配额，空值表示不限
func (s *SiteConfigService) DefaultAIQuota() *int {
	value, err := s.Repo.Get(model.ConfigDefaultAIQuota)
	if err != nil || value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &n
}

func (s *SiteConfigService) All() ([]model.SiteConfig, error) {
	return s.Repo.List()
}

var knownConfigKeys = map[string]bool{
	model.ConfigDailyTarget:       true,
	model.ConfigExamQuestionCount: true,
	model.ConfigExamDuration:      true,
	model.ConfigExamPassScore:     true,
	model.ConfigAIEnabled:         true,
	model.ConfigDefaultAIQuota:    true,
	model.ConfigCorrectBonus:      true,
}

func (s *SiteConfigService) Set(key, value string) error {
	if !knownConfigKeys[key] {
		return util.NewValidationError("unknown config key: %s", key)
	}
	return s.Repo.Set(key, value)
}
