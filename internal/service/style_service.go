package service

import (
	"errors"
	"regexp"
	"strings"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"

	"gorm.io/gorm"
)

var (
	// 占位符大小写不敏感
	stylePlaceholderRe = regexp.MustCompile(`(?i)\{\{AI_STYLE\}\}`)
	multiNewlineRe     = regexp.MustCompile(`\n{3,}`)
)

// ComposePrompt 把预设提示词与用户自定义风格合并为一条指令：
// 预设含占位符则逐处替换，否则自定义风格追加在两个空行之后。
// 返回前压缩连续3个以上换行为2个并去掉首尾空白。
func ComposePrompt(basePrompt, stylePrompt string) string {
	base := strings.TrimSpace(basePrompt)
	style := strings.TrimSpace(stylePrompt)

	var out string
	switch {
	case base == "":
		out = style
	case stylePlaceholderRe.MatchString(base):
		out = stylePlaceholderRe.ReplaceAllLiteralString(base, style)
	case style != "":
		out = base + "\n\n" + style
	default:
		out = base
	}

	out = multiNewlineRe.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// StyleService 讲解风格预设管理
type StyleService struct {
	PresetRepo *repository.StylePresetRepository
	UserRepo   *repository.UserRepository
}

func NewStyleService(presetRepo *repository.StylePresetRepository, userRepo *repository.UserRepository) *StyleService {
	return &StyleService{
		PresetRepo: presetRepo,
		UserRepo:   userRepo,
	}
}

func (s *StyleService) ListPresets() ([]model.StylePreset, error) {
	return s.PresetRepo.List()
}

// PresetRequest 创建/更新预设的请求体
type PresetRequest struct {
	Name   string `json:"name" binding:"required,max=100"`
	Prompt string `json:"prompt" binding:"required"`
}

func (s *StyleService) CreatePreset(actorID uint, req PresetRequest) (*model.StylePreset, error) {
	preset := &model.StylePreset{
		Name:      req.Name,
		Prompt:    req.Prompt,
		CreatedBy: actorID,
	}
	if err := s.PresetRepo.Create(preset); err != nil {
		if util.IsDuplicateKey(err) {
			return nil, util.ErrPresetNameTaken
		}
		return nil, err
	}
	return preset, nil
}

func (s *StyleService) UpdatePreset(id uint, req PresetRequest) (*model.StylePreset, error) {
	preset, err := s.PresetRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrPresetNotFound
		}
		return nil, err
	}

	preset.Name = req.Name
	preset.Prompt = req.Prompt
	if err := s.PresetRepo.Update(preset); err != nil {
		if util.IsDuplicateKey(err) {
			return nil, util.ErrPresetNameTaken
		}
		return nil, err
	}
	return preset, nil
}

func (s *StyleService) DeletePreset(id uint) error {
	preset, err := s.PresetRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPresetNotFound
		}
		return err
	}
	if preset.IsDefault {
		return util.NewValidationError("cannot delete the default preset")
	}
	return s.PresetRepo.Delete(id)
}

func (s *StyleService) SetDefault(id uint) error {
	if err := s.PresetRepo.SetDefault(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrPresetNotFound
		}
		return err
	}
	return nil
}

// ResolvePromptForUser 得出某用户的最终讲解提示词：
// 用户选中的预设（无则默认预设）与用户自定义风格合并
func (s *StyleService) ResolvePromptForUser(user *model.User) (string, error) {
	var preset *model.StylePreset
	var err error

	if user.StylePresetID != nil {
		preset, err = s.PresetRepo.FindByID(*user.StylePresetID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
	}
	if preset == nil {
		preset, err = s.PresetRepo.FindDefault()
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return "", err
		}
	}

	base := ""
	if preset != nil {
		base = preset.Prompt
	}
	return ComposePrompt(base, user.AIStylePrompt), nil
}
