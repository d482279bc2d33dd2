package main

import (
	"fmt"
	"net/http"

	"github.com/workpulse/attendance-backend-go/internal/config"
	appHTTP "github.com/workpulse/attendance-backend-go/internal/handler/http"
	"github.com/workpulse/attendance-backend-go/internal/pkg/cron"
	"github.com/workpulse/attendance-backend-go/internal/pkg/database"
	"github.com/workpulse/attendance-backend-go/internal/pkg/jwt"
	"github.com/workpulse/attendance-backend-go/internal/pkg/policycache"
	"github.com/workpulse/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/workpulse/attendance-backend-go/internal/service/attendance"
	reportService "github.com/workpulse/attendance-backend-go/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)
	reportRepo := postgresql.NewReportRepository(db)

	redisClient := policycache.NewRedisClient(cfg.Redis.Addr)
	cachedPolicyRepo := policycache.New(policyRepo, redisClient, cfg.Redis.PolicyTTL)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, cachedPolicyRepo)
	reportSvc := reportService.NewReportService(reportRepo)

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc)

	router := appHTTP.NewRouter(jwtService, attendanceHandler, reportHandler)

	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(attendanceRepo, cachedPolicyRepo)
	attendanceJobs.RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
