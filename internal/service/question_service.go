package service

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"

	"gorm.io/gorm"
)

// QuestionService 题库与题目管理，含导入归一化
type QuestionService struct {
	DB           *gorm.DB
	QuestionRepo *repository.QuestionRepository
	LibraryRepo  *repository.LibraryRepository
}

func NewQuestionService(db *gorm.DB, questionRepo *repository.QuestionRepository, libraryRepo *repository.LibraryRepository) *QuestionService {
	return &QuestionService{
		DB:           db,
		QuestionRepo: questionRepo,
		LibraryRepo:  libraryRepo,
	}
}

func (s *QuestionService) ListLibraries() ([]model.QuestionLibrary, error) {
	return s.LibraryRepo.List()
}

// LibraryRequest 创建/更新题库
type LibraryRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	LicenseClass string `json:"licenseClass" binding:"max=10"`
	Description  string `json:"description"`
	Enabled      *bool  `json:"enabled"`
}

func (s *QuestionService) CreateLibrary(req LibraryRequest) (*model.QuestionLibrary, error) {
	lib := &model.QuestionLibrary{
		Name:         req.Name,
		LicenseClass: req.LicenseClass,
		Description:  req.Description,
		Enabled:      true,
	}
	if req.Enabled != nil {
		lib.Enabled = *req.Enabled
	}
	if err := s.LibraryRepo.Create(lib); err != nil {
		if util.IsDuplicateKey(err) {
			return nil, util.NewValidationError("library name %q already exists", req.Name)
		}
		return nil, err
	}
	return lib, nil
}

func (s *QuestionService) UpdateLibrary(id uint, req LibraryRequest) (*model.QuestionLibrary, error) {
	lib, err := s.LibraryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLibraryNotFound
		}
		return nil, err
	}
	lib.Name = req.Name
	lib.LicenseClass = req.LicenseClass
	lib.Description = req.Description
	if req.Enabled != nil {
		lib.Enabled = *req.Enabled
	}
	if err := s.LibraryRepo.Update(lib); err != nil {
		return nil, err
	}
	return lib, nil
}

func (s *QuestionService) GetLibrary(id uint) (*model.QuestionLibrary, error) {
	lib, err := s.LibraryRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLibraryNotFound
		}
		return nil, err
	}
	return lib, nil
}

func (s *QuestionService) ListQuestions(filter repository.QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	lib, err := s.GetLibrary(filter.LibraryID)
	if err != nil {
		return nil, 0, err
	}
	if !lib.Enabled {
		return nil, 0, util.ErrLibraryDisabled
	}
	return s.QuestionRepo.List(filter, page, limit)
}

func (s *QuestionService) GetQuestion(id uint) (*model.Question, error) {
	q, err := s.QuestionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return q, nil
}

// --- 导入与归一化 ---
//
// 上游导出的题库 JSON 字段形态不统一：tags 可能是字符串或数组，
// 正确标记可能叫 is_correct 或 isCorrect。归一化在入口处一次完成，
// 入库后的数据只有一种形态，后续流程不再分支。

type rawImportOption struct {
	ID             string `json:"id"`
	Content        string `json:"content"`
	IsCorrectSnake *bool  `json:"is_correct"`
	IsCorrectCamel *bool  `json:"isCorrect"`
}

func (o *rawImportOption) correct() bool {
	if o.IsCorrectSnake != nil {
		return *o.IsCorrectSnake
	}
	if o.IsCorrectCamel != nil {
		return *o.IsCorrectCamel
	}
	return false
}

type rawImportQuestion struct {
	Code    string            `json:"code"`
	Type    string            `json:"type"`
	Content string            `json:"content"`
	Chapter string            `json:"chapter"`
	Tags    json.RawMessage   `json:"tags"`
	Options []rawImportOption `json:"options"`
}

// normalizeTags 接受字符串（逗号分隔）或字符串数组，输出去空格的标签列表
func normalizeTags(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		out := make([]string, 0, len(asList))
		for _, t := range asList {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		parts := strings.Split(asString, ",")
		out := make([]string, 0, len(parts))
		for _, t := range parts {
			if t = strings.TrimSpace(t); t != "" {
				out = append(out, t)
			}
		}
		return out
	}

	return nil
}

func normalizeType(raw string) (model.QuestionType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "single", "single_choice", "singlechoice":
		return model.SingleChoice, nil
	case "multiple", "multi", "multiple_choice":
		return model.MultipleChoice, nil
	case "truefalse", "true_false", "judge":
		return model.TrueFalse, nil
	default:
		return "", util.NewValidationError("unknown question type: %q", raw)
	}
}

func (q *rawImportQuestion) toModel(libraryID uint) (*model.Question, error) {
	if strings.TrimSpace(q.Content) == "" {
		return nil, util.NewValidationError("question %q has empty content", q.Code)
	}
	if len(q.Options) < 2 {
		return nil, util.NewValidationError("question %q needs at least 2 options", q.Code)
	}

	qType, err := normalizeType(q.Type)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(q.Options))
	options := make([]model.QuestionOption, 0, len(q.Options))
	correctCount := 0
	for _, o := range q.Options {
		id := strings.TrimSpace(o.ID)
		if id == "" {
			return nil, util.NewValidationError("question %q has an option without id", q.Code)
		}
		if seen[id] {
			return nil, util.NewValidationError("question %q has duplicate option id %q", q.Code, id)
		}
		seen[id] = true
		if o.correct() {
			correctCount++
		}
		options = append(options, model.QuestionOption{
			OptionID:  id,
			Content:   o.Content,
			IsCorrect: o.correct(),
		})
	}

	if correctCount == 0 {
		return nil, util.NewValidationError("question %q has no correct option", q.Code)
	}
	if qType != model.MultipleChoice && correctCount > 1 {
		return nil, util.NewValidationError("question %q: %s question cannot have %d correct options", q.Code, qType, correctCount)
	}

	return &model.Question{
		LibraryID: libraryID,
		Code:      strings.TrimSpace(q.Code),
		Type:      qType,
		Content:   q.Content,
		Chapter:   strings.TrimSpace(q.Chapter),
		Tags:      strings.Join(normalizeTags(q.Tags), ","),
		Options:   options,
	}, nil
}

// ImportResult 导入结果
type ImportResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// ImportQuestions 从 JSON 导入一批题目。单题校验失败跳过并记录原因，
// 入库部分在一个事务里完成，并同步刷新题库计数。
func (s *QuestionService) ImportQuestions(libraryID uint, r io.Reader) (*ImportResult, error) {
	lib, err := s.GetLibrary(libraryID)
	if err != nil {
		return nil, err
	}

	var raw []rawImportQuestion
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, util.NewValidationError("invalid import file: %v", err)
	}
	if len(raw) == 0 {
		return nil, util.NewValidationError("import file contains no questions")
	}

	result := &ImportResult{}
	questions := make([]*model.Question, 0, len(raw))
	for _, rq := range raw {
		q, err := rq.toModel(lib.ID)
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return result, nil
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, q := range questions {
			if err := tx.Create(q).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.QuestionLibrary{}).
			Where("id = ?", lib.ID).
			Update("question_count", gorm.Expr("question_count + ?", len(questions))).
			Error
	})
	if err != nil {
		return nil, err
	}

	result.Imported = len(questions)
	return result, nil
}

// Chapters 题库下的章节列表
func (s *QuestionService) Chapters(libraryID uint) ([]string, error) {
	var chapters []string
	err := s.DB.Model(&model.Question{}).
		Where("library_id = ? AND chapter <> ''", libraryID).
		Distinct().
		Order("chapter ASC").
		Pluck("chapter", &chapters).Error
	return chapters, err
}
