// 题库批量导入脚本
//
// 与管理后台的导入接口使用同一套解析与校验逻辑，
// 适合首次部署时灌入官方题库文件。
//
// 用法: go run scripts/import_questions.go -library 1 -file questions.json

package main

import (
	"flag"
	"log"
	"os"

	"hamexam_backend/internal/config"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/service"
	"hamexam_backend/pkg/database"
	"hamexam_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	libraryID := flag.Uint("library", 0, "目标题库ID")
	filePath := flag.String("file", "", "题目 JSON 文件路径")
	flag.Parse()

	if *libraryID == 0 || *filePath == "" {
		log.Fatal("用法: go run scripts/import_questions.go -library <题库ID> -file <JSON文件>")
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	file, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("无法打开题目文件: %v", err)
	}
	defer file.Close()

	questionService := service.NewQuestionService(db,
		repository.NewQuestionRepository(db),
		repository.NewLibraryRepository(db),
	)

	result, err := questionService.ImportQuestions(*libraryID, file)
	if err != nil {
		log.Fatalf("导入失败: %v", err)
	}

	log.Printf("导入完成: 成功 %d 题, 跳过 %d 题", result.Imported, result.Skipped)
	for _, msg := range result.Errors {
		log.Printf("  跳过: %s", msg)
	}
}
