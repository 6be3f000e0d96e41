package service

import (
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"
	"hamexam_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// ExamService 模拟考试。每道题的乱序映射随会话持久化，
// 提交时用严格模式判分：未知标签直接拒绝。
type ExamService struct {
	DB               *gorm.DB
	ExamRepo         *repository.ExamRepository
	QuestionRepo     *repository.QuestionRepository
	LibraryRepo      *repository.LibraryRepository
	UserQuestionRepo *repository.UserQuestionRepository
	SiteConfig       *SiteConfigService
}

func NewExamService(
	db *gorm.DB,
	examRepo *repository.ExamRepository,
	questionRepo *repository.QuestionRepository,
	libraryRepo *repository.LibraryRepository,
	userQuestionRepo *repository.UserQuestionRepository,
	siteConfig *SiteConfigService,
) *ExamService {
	return &ExamService{
		DB:               db,
		ExamRepo:         examRepo,
		QuestionRepo:     questionRepo,
		LibraryRepo:      libraryRepo,
		UserQuestionRepo: userQuestionRepo,
		SiteConfig:       siteConfig,
	}
}

// labelPair 持久化的映射条目，保序以便重新展示
type labelPair struct {
	Label    string `json:"label"`
	OptionID string `json:"optionId"`
}

func encodeMapping(options []DisplayOption, mapping map[string]string) (string, error) {
	pairs := make([]labelPair, 0, len(options))
	for _, o := range options {
		pairs = append(pairs, labelPair{Label: o.Label, OptionID: mapping[o.Label]})
	}
	data, err := json.Marshal(pairs)
	return string(data), err
}

func decodeMapping(raw string) ([]labelPair, map[string]string, error) {
	var pairs []labelPair
	if err := json.Unmarshal([]byte(raw), &pairs); err != nil {
		return nil, nil, err
	}
	mapping := make(map[string]string, len(pairs))
	for _, p := range pairs {
		mapping[p.Label] = p.OptionID
	}
	return pairs, mapping, nil
}

// ExamPaper 下发给客户端的试卷
type ExamPaper struct {
	SessionID string              `json:"sessionId"`
	LibraryID uint                `json:"libraryId"`
	Status    model.ExamStatus    `json:"status"`
	StartedAt time.Time           `json:"startedAt"`
	ExpiresAt time.Time           `json:"expiresAt"`
	PassScore int                 `json:"passScore"`
	Questions []ExamPaperQuestion `json:"questions"`
}

type ExamPaperQuestion struct {
	Seq        int                `json:"seq"`
	QuestionID uint               `json:"questionId"`
	Type       model.QuestionType `json:"type"`
	Content    string             `json:"content"`
	Options    []DisplayOption    `json:"options"`
}

// StartExam 从题库随机抽题开考。抽题在 Go 侧洗牌，避免数据库方言差异。
func (s *ExamService) StartExam(userID, libraryID uint) (*ExamPaper, error) {
	lib, err := s.LibraryRepo.FindByID(libraryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLibraryNotFound
		}
		return nil, err
	}
	if !lib.Enabled {
		return nil, util.ErrLibraryDisabled
	}

	ids, err := s.QuestionRepo.ListIDs(libraryID)
	if err != nil {
		return nil, err
	}

	count := s.SiteConfig.ExamQuestionCount()
	if len(ids) < count {
		return nil, util.NewValidationError("library has only %d questions, %d required", len(ids), count)
	}

	rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	picked := ids[:count]

	questions, err := s.QuestionRepo.FindByIDs(picked)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	now := time.Now()
	session := &model.ExamSession{
		UserID:    userID,
		LibraryID: libraryID,
		Status:    model.ExamOngoing,
		StartedAt: now,
		ExpiresAt: now.Add(time.Duration(s.SiteConfig.ExamDurationMinutes()) * time.Minute),
		Total:     count,
		PassScore: s.SiteConfig.ExamPassScore(),
	}

	paperQuestions := make([]ExamPaperQuestion, 0, count)
	sessionQuestions := make([]model.ExamSessionQuestion, 0, count)
	for i, id := range picked {
		q := byID[id]
		options, mapping, err := ShuffleOptions(&q)
		if err != nil {
			return nil, err
		}
		encoded, err := encodeMapping(options, mapping)
		if err != nil {
			return nil, err
		}
		sessionQuestions = append(sessionQuestions, model.ExamSessionQuestion{
			QuestionID:  q.ID,
			Seq:         i + 1,
			MappingJSON: encoded,
		})
		paperQuestions = append(paperQuestions, ExamPaperQuestion{
			Seq:        i + 1,
			QuestionID: q.ID,
			Type:       q.Type,
			Content:    q.Content,
			Options:    options,
		})
	}

	if err := s.ExamRepo.CreateSession(session, sessionQuestions); err != nil {
		return nil, err
	}

	return &ExamPaper{
		SessionID: session.ID,
		LibraryID: libraryID,
		Status:    session.Status,
		StartedAt: session.StartedAt,
		ExpiresAt: session.ExpiresAt,
		PassScore: session.PassScore,
		Questions: paperQuestions,
	}, nil
}

// GetExam 重新取卷（刷新页面续考），复用已持久化的映射
func (s *ExamService) GetExam(userID uint, sessionID string) (*ExamPaper, error) {
	session, err := s.findOwnSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.ExamRepo.FindSessionQuestions(sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.QuestionID)
	}
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	paperQuestions := make([]ExamPaperQuestion, 0, len(rows))
	for _, row := range rows {
		q := byID[row.QuestionID]
		pairs, mapping, err := decodeMapping(row.MappingJSON)
		if err != nil {
			return nil, err
		}
		contentByOption := make(map[string]string, len(q.Options))
		for _, o := range q.Options {
			contentByOption[o.OptionID] = o.Content
		}
		options := make([]DisplayOption, 0, len(pairs))
		for _, p := range pairs {
			options = append(options, DisplayOption{
				Label:   p.Label,
				Content: contentByOption[mapping[p.Label]],
			})
		}
		paperQuestions = append(paperQuestions, ExamPaperQuestion{
			Seq:        row.Seq,
			QuestionID: q.ID,
			Type:       q.Type,
			Content:    q.Content,
			Options:    options,
		})
	}

	return &ExamPaper{
		SessionID: session.ID,
		LibraryID: session.LibraryID,
		Status:    session.Status,
		StartedAt: session.StartedAt,
		ExpiresAt: session.ExpiresAt,
		PassScore: session.PassScore,
		Questions: paperQuestions,
	}, nil
}

// ExamResult 判卷结果
type ExamResult struct {
	SessionID string               `json:"sessionId"`
	Score     int                  `json:"score"`
	Total     int                  `json:"total"`
	PassScore int                  `json:"passScore"`
	Passed    bool                 `json:"passed"`
	Questions []ExamQuestionResult `json:"questions"`
}

type ExamQuestionResult struct {
	Seq              int      `json:"seq"`
	QuestionID       uint     `json:"questionId"`
	Correct          bool     `json:"correct"`
	CorrectOptionIDs []string `json:"correctOptionIds"`
	Selected         []string `json:"selected"`
}

// SubmitExam 交卷判分。超时的会话标记为 expired 并拒绝判分。
// 判分与会话落账在一个事务里，个人进度在提交落账后逐题更新。
func (s *ExamService) SubmitExam(userID uint, sessionID string, answers map[uint][]string) (*ExamResult, error) {
	session, err := s.findOwnSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != model.ExamOngoing {
		return nil, util.ErrExamAlreadyDone
	}

	now := time.Now()
	if now.After(session.ExpiresAt) {
		if err := s.DB.Model(&model.ExamSession{}).
			Where("id = ?", sessionID).
			Update("status", model.ExamExpired).Error; err != nil {
			return nil, err
		}
		return nil, util.ErrExamExpired
	}

	rows, err := s.ExamRepo.FindSessionQuestions(sessionID)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.QuestionID)
	}
	questions, err := s.QuestionRepo.FindByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	result := &ExamResult{
		SessionID: sessionID,
		Total:     session.Total,
		PassScore: session.PassScore,
	}

	type gradedRow struct {
		rowID    uint
		selected string
		correct  bool
	}
	graded := make([]gradedRow, 0, len(rows))

	for _, row := range rows {
		q := byID[row.QuestionID]
		_, mapping, err := decodeMapping(row.MappingJSON)
		if err != nil {
			return nil, err
		}

		selected := answers[row.QuestionID]
		verdict := Verdict{}
		if len(selected) > 0 {
			verdict, err = Grade(q.CorrectOptionIDs(), selected, mapping, true)
			if err != nil {
				return nil, err
			}
		}
		monitoring.ObserveGrade("exam", verdict.Correct)

		if verdict.Correct {
			result.Score++
		}

		selectedJSON, _ := json.Marshal(selected)
		graded = append(graded, gradedRow{
			rowID:    row.ID,
			selected: string(selectedJSON),
			correct:  verdict.Correct,
		})

		result.Questions = append(result.Questions, ExamQuestionResult{
			Seq:              row.Seq,
			QuestionID:       row.QuestionID,
			Correct:          verdict.Correct,
			CorrectOptionIDs: q.CorrectOptionIDs(),
			Selected:         verdict.CanonicalSelected,
		})
	}

	result.Passed = result.Score >= session.PassScore

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for _, g := range graded {
			correct := g.correct
			if err := tx.Model(&model.ExamSessionQuestion{}).
				Where("id = ?", g.rowID).
				Updates(map[string]interface{}{
					"selected_json": g.selected,
					"correct":       &correct,
				}).Error; err != nil {
				return err
			}
		}
		return tx.Model(&model.ExamSession{}).
			Where("id = ?", sessionID).
			Updates(map[string]interface{}{
				"status":       model.ExamSubmitted,
				"submitted_at": now,
				"score":        result.Score,
				"passed":       result.Passed,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	// 考试答题同样计入个人进度
	for _, r := range result.Questions {
		if _, err := s.UserQuestionRepo.RecordAnswer(userID, r.QuestionID, r.Correct, now); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *ExamService) History(userID uint, page, limit int) ([]model.ExamSession, int64, error) {
	return s.ExamRepo.ListByUser(userID, page, limit)
}

func (s *ExamService) findOwnSession(userID uint, sessionID string) (*model.ExamSession, error) {
	session, err := s.ExamRepo.FindSession(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}
