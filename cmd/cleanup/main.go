package main

import (
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qs3c/stockopt_go_server/config"
	"github.com/qs3c/stockopt_go_server/internal/database"
	"github.com/qs3c/stockopt_go_server/internal/model"
	"github.com/qs3c/stockopt_go_server/internal/pkg/oss"
	"github.com/qs3c/stockopt_go_server/internal/repository"
)

var (
	dryRun       = flag.Bool("dry-run", true, "Dry run mode, don't actually delete rows")
	jobExpire    = flag.Int("job-expire", 90, "Days to keep finished optimization jobs")
	cleanJobs    = flag.Bool("clean-jobs", true, "Clean expired finished jobs and their results")
	cleanOrphans = flag.Bool("clean-orphans", true, "Clean result rows whose job no longer exists")
)

func main() {
	flag.Parse()

	log.Println("🧹 Starting cleanup task...")
	log.Printf("Mode: dry-run=%v", *dryRun)

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 连接数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// OSS 可选，配置了才清理归档文件
	var ossClient *oss.Client
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err = oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Printf("Warning: Failed to init OSS client: %v", err)
		}
	}

	deletedJobs := 0
	deletedResults := int64(0)
	deletedExports := 0

	// 1. 清理超过保留期的已结束任务
	if *cleanJobs {
		log.Printf("\n📦 Cleaning finished jobs older than %d days...", *jobExpire)

		cutoff := time.Now().AddDate(0, 0, -*jobExpire)
		var jobs []model.OptimizationJob
		err := db.Where("status IN ? AND created_at < ?", []string{"complete", "failed"}, cutoff).
			Find(&jobs).Error
		if err != nil {
			log.Fatalf("Failed to query expired jobs: %v", err)
		}
		log.Printf("Found %d expired jobs", len(jobs))

		jobIDs := make([]int64, 0, len(jobs))
		for _, job := range jobs {
			var resultCount int64
			db.Model(&model.OptimizationResult{}).Where("job_id = ?", job.ID).Count(&resultCount)

			log.Printf("  - job %d (%s, %d results, created %s)",
				job.ID, job.Status, resultCount, job.CreatedAt.Format("2006-01-02"))

			jobIDs = append(jobIDs, job.ID)
			deletedResults += resultCount

			// 归档文件跟着任务一起删
			if job.ExportURL != nil && ossClient != nil {
				if *dryRun {
					deletedExports++
				} else if err := ossClient.Delete(ossClient.ExtractObjectKey(*job.ExportURL)); err != nil {
					log.Printf("    ❌ Failed to delete export: %v", err)
				} else {
					deletedExports++
				}
			}
		}

		if !*dryRun && len(jobIDs) > 0 {
			if err := repository.NewResultRepository(db).DeleteByJobIDs(jobIDs); err != nil {
				log.Fatalf("Failed to delete results: %v", err)
			}
			if err := db.Where("id IN ?", jobIDs).Delete(&model.OptimizationJob{}).Error; err != nil {
				log.Fatalf("Failed to delete jobs: %v", err)
			}
		}
		deletedJobs = len(jobIDs)
	}

	// 2. 清理孤儿结果行（任务被手工删掉后留下的）
	if *cleanOrphans {
		log.Println("\n🔍 Cleaning orphan result rows...")

		var orphans int64
		err := db.Model(&model.OptimizationResult{}).
			Where("job_id NOT IN (?)", db.Model(&model.OptimizationJob{}).Select("id")).
			Count(&orphans).Error
		if err != nil {
			log.Fatalf("Failed to count orphan results: %v", err)
		}
		log.Printf("Found %d orphan result rows", orphans)

		if !*dryRun && orphans > 0 {
			err := db.Where("job_id NOT IN (?)", db.Model(&model.OptimizationJob{}).Select("id")).
				Delete(&model.OptimizationResult{}).Error
			if err != nil {
				log.Fatalf("Failed to delete orphan results: %v", err)
			}
		}
		deletedResults += orphans
	}

	// 输出统计
	log.Println("\n" + strings.Repeat("=", 60))
	log.Println("📊 Cleanup Summary")
	log.Println(strings.Repeat("=", 60))
	log.Printf("Deleted jobs: %d", deletedJobs)
	log.Printf("Deleted result rows: %d", deletedResults)
	log.Printf("Deleted OSS exports: %d", deletedExports)
	if *dryRun {
		log.Println("\n⚠️  DRY RUN MODE - No rows were actually deleted")
		log.Println("   Run with -dry-run=false to actually delete")
	} else {
		log.Println("\n✅ Cleanup completed!")
	}
	log.Println(strings.Repeat("=", 60))
}
