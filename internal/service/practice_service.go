package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"
	"hamexam_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// 展示标签字母表。固定8个标签，超过即配置错误
var displayLabels = [...]string{"A", "B", "C", "D", "E", "F", "G", "H"}

const presentationTTL = 2 * time.Hour

// DisplayOption 下发给客户端的选项，不携带任何正确性信息
type DisplayOption struct {
	Label   string `json:"label"`
	Content string `json:"content"`
}

// Verdict 判分结果
type Verdict struct {
	Correct           bool     `json:"correct"`
	CanonicalSelected []string `json:"canonicalSelected"`
}

// ShuffleOptions 打乱选项顺序并生成 展示标签→原始选项ID 的双射，
// 防止按选项位置死记答案。
func ShuffleOptions(q *model.Question) ([]DisplayOption, map[string]string, error) {
	if len(q.Options) > len(displayLabels) {
		return nil, nil, fmt.Errorf("%w: %d options", util.ErrTooManyOptions, len(q.Options))
	}

	perm := rand.Perm(len(q.Options))
	options := make([]DisplayOption, 0, len(q.Options))
	mapping := make(map[string]string, len(q.Options))

	for i, p := range perm {
		opt := q.Options[p]
		label := displayLabels[i]
		options = append(options, DisplayOption{Label: label, Content: opt.Content})
		mapping[label] = opt.OptionID
	}

	return options, mapping, nil
}

// Grade 纯函数判分。提交的展示标签先经映射还原为原始选项ID，
// 再与正确答案做集合相等比较（与顺序、重复无关，多选不给部分分）。
// strict 为 false 时，映射中不存在的ID原样放行，兼容直接提交原始ID的旧客户端；
// strict 为 true 时（考试）未知ID直接判为非法输入。
func Grade(correctIDs []string, submitted []string, mapping map[string]string, strict bool) (Verdict, error) {
	seen := make(map[string]struct{}, len(submitted))
	selected := make([]string, 0, len(submitted))

	for _, id := range submitted {
		canonical, ok := mapping[id]
		if !ok {
			if strict {
				return Verdict{}, fmt.Errorf("%w: %q", util.ErrUnknownOption, id)
			}
			canonical = id
		}
		if _, dup := seen[canonical]; dup {
			continue
		}
		seen[canonical] = struct{}{}
		selected = append(selected, canonical)
	}

	want := make(map[string]struct{}, len(correctIDs))
	for _, id := range correctIDs {
		want[id] = struct{}{}
	}

	correct := len(seen) == len(want)
	if correct {
		for id := range want {
			if _, ok := seen[id]; !ok {
				correct = false
				break
			}
		}
	}

	return Verdict{Correct: correct, CanonicalSelected: selected}, nil
}

// PracticeService 练习流程：出题（乱序）、判分、进度与每日打卡联动
type PracticeService struct {
	QuestionRepo     *repository.QuestionRepository
	UserQuestionRepo *repository.UserQuestionRepository
	Daily            *DailyService
	Points           *PointsService
	SiteConfig       *SiteConfigService
	Redis            *redis.Client
}

func NewPracticeService(
	questionRepo *repository.QuestionRepository,
	userQuestionRepo *repository.UserQuestionRepository,
	daily *DailyService,
	points *PointsService,
	siteConfig *SiteConfigService,
	rdb *redis.Client,
) *PracticeService {
	return &PracticeService{
		QuestionRepo:     questionRepo,
		UserQuestionRepo: userQuestionRepo,
		Daily:            daily,
		Points:           points,
		SiteConfig:       siteConfig,
		Redis:            rdb,
	}
}

// QuestionPresentation 一次出题。PresentationID 对应 Redis 里缓存的映射，
// 提交答案时带回，判分后即失效。
type QuestionPresentation struct {
	PresentationID string             `json:"presentationId"`
	QuestionID     uint               `json:"questionId"`
	Code           string             `json:"code"`
	Type           model.QuestionType `json:"type"`
	Content        string             `json:"content"`
	Chapter        string             `json:"chapter"`
	Options        []DisplayOption    `json:"options"`
}

// PracticeResult 一次练习提交的结果
type PracticeResult struct {
	Correct           bool         `json:"correct"`
	CorrectOptionIDs  []string     `json:"correctOptionIds"`
	CanonicalSelected []string     `json:"canonicalSelected"`
	CorrectCount      int          `json:"correctCount"`
	IncorrectCount    int          `json:"incorrectCount"`
	BonusPoints       int          `json:"bonusPoints"`
	Daily             *DailyStatus `json:"daily"`
}

func practiceMappingKey(presentationID string) string {
	return "practice:mapping:" + presentationID
}

// ServeQuestion 出一道乱序后的题
func (s *PracticeService) ServeQuestion(ctx context.Context, userID, questionID uint) (*QuestionPresentation, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	options, mapping, err := ShuffleOptions(question)
	if err != nil {
		return nil, err
	}

	presentationID := model.GenerateUUID()
	data, err := json.Marshal(mapping)
	if err != nil {
		return nil, err
	}
	if err := s.Redis.Set(ctx, practiceMappingKey(presentationID), data, presentationTTL).Err(); err != nil {
		return nil, err
	}

	// 浏览即记录，只刷新时间不动计数
	if err := s.UserQuestionRepo.MarkSeen(userID, questionID, time.Now()); err != nil {
		return nil, err
	}

	return &QuestionPresentation{
		PresentationID: presentationID,
		QuestionID:     question.ID,
		Code:           question.Code,
		Type:           question.Type,
		Content:        question.Content,
		Chapter:        question.Chapter,
		Options:        options,
	}, nil
}

// SubmitAnswer 提交练习答案并完成全部记账：
// 进度计数、答对加分、每日打卡与连击奖励。
func (s *PracticeService) SubmitAnswer(ctx context.Context, userID, questionID uint, presentationID string, selected []string) (*PracticeResult, error) {
	if len(selected) == 0 {
		return nil, util.NewValidationError("selected answers must not be empty")
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	// presentationID 为空视为旧客户端直接提交原始选项ID
	mapping := map[string]string{}
	if presentationID != "" {
		data, err := s.Redis.GetDel(ctx, practiceMappingKey(presentationID)).Result()
		if err == redis.Nil {
			return nil, util.ErrMappingExpired
		}
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &mapping); err != nil {
			return nil, err
		}
	}

	verdict, err := Grade(question.CorrectOptionIDs(), selected, mapping, false)
	if err != nil {
		return nil, err
	}
	monitoring.ObserveGrade("practice", verdict.Correct)

	now := time.Now()
	record, err := s.UserQuestionRepo.RecordAnswer(userID, questionID, verdict.Correct, now)
	if err != nil {
		return nil, err
	}

	bonus := 0
	if verdict.Correct {
		bonus = s.SiteConfig.CorrectBonus()
		if bonus > 0 {
			if err := s.Points.GrantPoints(userID, bonus, model.PointsReasonAnswerCorrect); err != nil {
				return nil, err
			}
		}
	}

	daily, err := s.Daily.RecordActivity(userID, now)
	if err != nil {
		return nil, err
	}

	return &PracticeResult{
		Correct:           verdict.Correct,
		CorrectOptionIDs:  question.CorrectOptionIDs(),
		CanonicalSelected: verdict.CanonicalSelected,
		CorrectCount:      record.CorrectCount,
		IncorrectCount:    record.IncorrectCount,
		BonusPoints:       bonus,
		Daily:             daily,
	}, nil
}

// WrongQuestion 错题本条目
type WrongQuestion struct {
	Question       model.Question `json:"question"`
	IncorrectCount int            `json:"incorrectCount"`
	LastAnswered   time.Time      `json:"lastAnswered"`
}

// ListWrongQuestions 错题本
func (s *PracticeService) ListWrongQuestions(userID uint, page, limit int) ([]WrongQuestion, int64, error) {
	records, total, err := s.UserQuestionRepo.ListWrong(userID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.QuestionID)
	}
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := make([]WrongQuestion, 0, len(records))
	for _, r := range records {
		q, ok := byID[r.QuestionID]
		if !ok {
			continue
		}
		result = append(result, WrongQuestion{
			Question:       q,
			IncorrectCount: r.IncorrectCount,
			LastAnswered:   r.LastAnswered,
		})
	}
	return result, total, nil
}
