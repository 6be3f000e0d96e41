package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"io"
	"net/http"
	"strings"
	"time"

	"hamexam_backend/internal/config"
	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"
	"hamexam_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const explanationCacheTTL = 24 * time.Hour

// AIService 调用 OpenAI 兼容接口生成题目讲解。
// 讲解按 题目+风格 缓存在 Redis，命中缓存不扣配额。
type AIService struct {
	config       config.AIConfig
	Redis        *redis.Client
	QuestionRepo *repository.QuestionRepository
	Quota        *QuotaService
	Style        *StyleService
	SiteConfig   *SiteConfigService
}

func NewAIService(
	cfg config.AIConfig,
	rdb *redis.Client,
	questionRepo *repository.QuestionRepository,
	quota *QuotaService,
	style *StyleService,
	siteConfig *SiteConfigService,
) *AIService {
	return &AIService{
		config:       cfg,
		Redis:        rdb,
		QuestionRepo: questionRepo,
		Quota:        quota,
		Style:        style,
		SiteConfig:   siteConfig,
	}
}

type AIChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model    string          `json:"model"`
	Messages []AIChatMessage `json:"messages"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message AIChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Chat 单轮对话，systemPrompt 为空时使用默认助教人设
func (s *AIService) Chat(systemPrompt, prompt string) (string, error) {
	if systemPrompt == "" {
		systemPrompt = "你是一位业余无线电考试辅导老师，请准确、简明地讲解题目。"
	}

	reqBody := ChatCompletionRequest{
		Model: s.config.Model,
		Messages: []AIChatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", s.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("AI API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("AI returned no choices")
}

// Explanation AI 讲解结果
type Explanation struct {
	QuestionID uint   `json:"questionId"`
	Content    string `json:"content"`
	Cached     bool   `json:"cached"`
}

// ExplainQuestion 为一道题生成讲解。未命中缓存时先扣配额再调用模型。
func (s *AIService) ExplainQuestion(ctx context.Context, user *model.User, questionID uint) (*Explanation, error) {
	if !s.SiteConfig.AIEnabled() {
		return nil, util.ErrAIDisabled
	}

	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	systemPrompt, err := s.Style.ResolvePromptForUser(user)
	if err != nil {
		return nil, err
	}

	cacheKey := s.explanationCacheKey(questionID, systemPrompt)
	if cached, err := s.Redis.Get(ctx, cacheKey).Result(); err == nil && cached != "" {
		monitoring.AIExplainCounter.WithLabelValues("cache_hit").Inc()
		return &Explanation{QuestionID: questionID, Content: cached, Cached: true}, nil
	}

	if err := s.Quota.CheckAndIncrement(user.ID, 1, false); err != nil {
		monitoring.AIExplainCounter.WithLabelValues("quota_denied").Inc()
		return nil, err
	}

	content, err := s.Chat(systemPrompt, buildExplainPrompt(question))
	if err != nil {
		monitoring.AIExplainCounter.WithLabelValues("error").Inc()
		return nil, err
	}
	monitoring.AIExplainCounter.WithLabelValues("generated").Inc()

	// 缓存失败不影响返回
	_ = s.Redis.Set(ctx, cacheKey, content, explanationCacheTTL).Err()

	return &Explanation{QuestionID: questionID, Content: content}, nil
}

func (s *AIService) explanationCacheKey(questionID uint, systemPrompt string) string {
	// 风格提示词参与键值，换风格后重新生成
	h := fnv.New64a()
	h.Write([]byte(systemPrompt))
	return fmt.Sprintf("ai:explain:%d:%x", questionID, h.Sum64())
}

func buildExplainPrompt(q *model.Question) string {
	var b strings.Builder
	b.WriteString("请讲解下面这道业余无线电考试题，说明正确答案的依据，并指出常见的易错点。\n\n")
	b.WriteString("题目：")
	b.WriteString(q.Content)
	b.WriteString("\n选项：\n")
	for _, o := range q.Options {
		b.WriteString(o.OptionID)
		b.WriteString(". ")
		b.WriteString(o.Content)
		if o.IsCorrect {
			b.WriteString("（正确答案）")
		}
		b.WriteString("\n")
	}
	return b.String()
}
