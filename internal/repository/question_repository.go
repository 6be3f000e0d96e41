package repository

import (
	"hamexam_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var question model.Question
	err := r.DB.Preload("Options").First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// QuestionFilter 题目列表筛选条件
type QuestionFilter struct {
	LibraryID uint
	Chapter   string
	Keyword   string
	Tag       string
}

func (r *QuestionRepository) List(filter QuestionFilter, page, limit int) ([]model.Question, int64, error) {
	var questions []model.Question
	var total int64

	query := r.DB.Model(&model.Question{}).Where("library_id = ?", filter.LibraryID)

	if filter.Chapter != "" {
		query = query.Where("chapter = ?", filter.Chapter)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("content LIKE ? OR code LIKE ?", kw, kw)
	}
	if filter.Tag != "" {
		query = query.Where("tags LIKE ?", "%"+filter.Tag+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("Options").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&questions).Error
	return questions, total, err
}

// ListIDs 返回题库下全部题目ID，考试抽题用
func (r *QuestionRepository) ListIDs(libraryID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Question{}).
		Where("library_id = ?", libraryID).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *QuestionRepository) FindByIDs(ids []uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Preload("Options").Where("id IN ?", ids).Find(&questions).Error
	return questions, err
}

// --- 题库 ---

type LibraryRepository struct {
	DB *gorm.DB
}

func NewLibraryRepository(db *gorm.DB) *LibraryRepository {
	return &LibraryRepository{DB: db}
}

func (r *LibraryRepository) Create(lib *model.QuestionLibrary) error {
	return r.DB.Create(lib).Error
}

func (r *LibraryRepository) FindByID(id uint) (*model.QuestionLibrary, error) {
	var lib model.QuestionLibrary
	err := r.DB.First(&lib, id).Error
	if err != nil {
		return nil, err
	}
	return &lib, nil
}

func (r *LibraryRepository) List() ([]model.QuestionLibrary, error) {
	var libs []model.QuestionLibrary
	err := r.DB.Order("id ASC").Find(&libs).Error
	return libs, err
}

func (r *LibraryRepository) Update(lib *model.QuestionLibrary) error {
	return r.DB.Save(lib).Error
}

func (r *LibraryRepository) Delete(id uint) error {
	return r.DB.Delete(&model.QuestionLibrary{}, id).Error
}
