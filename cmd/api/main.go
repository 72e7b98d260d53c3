package main

import (
	"fmt"
	"net/http"

	"github.com/bizzpass/crm-backend-go/internal/config"
	appHTTP "github.com/bizzpass/crm-backend-go/internal/handler/http"
	"github.com/bizzpass/crm-backend-go/internal/pkg/database"
	"github.com/bizzpass/crm-backend-go/internal/pkg/jwt"
	"github.com/bizzpass/crm-backend-go/internal/repository/postgresql"
	graceService "github.com/bizzpass/crm-backend-go/internal/service/grace"
	overtimeService "github.com/bizzpass/crm-backend-go/internal/service/overtime"
	payrollService "github.com/bizzpass/crm-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	payrollRepo := postgresql.NewPayrollRepository(db)
	fineModalRepo := postgresql.NewFineModalRepository(db)
	graceSourceRepo := postgresql.NewGraceSourceRepository(db)
	overtimeTemplateRepo := postgresql.NewOvertimeTemplateRepository(db)
	staffRepo := postgresql.NewStaffRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration)

	payrollSvc := payrollService.NewPayrollService(db, payrollRepo, staffRepo, attendanceRepo, leaveRepo)
	graceSvc := graceService.NewGraceService(fineModalRepo, graceSourceRepo)
	overtimeSvc := overtimeService.NewOvertimeService(db, overtimeTemplateRepo)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	graceHandler := appHTTP.NewGraceHandler(graceSvc)
	overtimeHandler := appHTTP.NewOvertimeHandler(overtimeSvc)

	router := appHTTP.NewRouter(
		jwtService,
		cfg.App.FrontendURL,
		payrollHandler,
		graceHandler,
		overtimeHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
