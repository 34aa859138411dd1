package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"remedylab-client/internal/bus"
	"remedylab-client/internal/config"
	"remedylab-client/internal/domain"
	"remedylab-client/internal/export"
	"remedylab-client/internal/gateway"
	"remedylab-client/internal/logger"
	"remedylab-client/internal/repository"
	"remedylab-client/internal/service"

	"go.uber.org/zap"
)

const usage = `remedylab - 患者/医生健康报告交换客户端

Usage: remedylab <command> [flags]

Commands:
  signup-patient       患者注册
  signup-doctor        医生注册
  login                登录
  doctors              列出可选医生
  reports              拉取报告列表（按日分组展示）
  upload               上传报告文件
  download             下载报告文件（按文件名缓存）
  recommend            获取/生成 AI 推荐
  save-recommendation  保存医生最终推荐
  get-recommendation   查询已保存推荐
  export               导出报告列表为 Excel
`

type app struct {
	cfg         *config.Config
	logger      *zap.Logger
	auth        *service.AuthService
	reports     *service.ReportSyncService
	coordinator *service.RecommendationCoordinator
	reportsRepo *repository.FileReportsRepo
}

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	cfg := config.Load()
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "remedylab-client")
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	usersRepo, err := repository.NewFileUsersRepo(cfg.Storage.DataDir)
	if err != nil {
		log.Fatal("failed to open users store", zap.Error(err))
	}
	reportsRepo, err := repository.NewFileReportsRepo(cfg.Storage.DataDir)
	if err != nil {
		log.Fatal("failed to open reports store", zap.Error(err))
	}

	client := gateway.NewClient(cfg.API.BaseURL, cfg.Timeout(), log)
	checker := gateway.NewHTTPChecker(cfg.API.BaseURL)
	updates := bus.NewReportBus(log)

	a := &app{
		cfg:         cfg,
		logger:      log,
		auth:        service.NewAuthService(usersRepo, client, checker, log),
		reports:     service.NewReportSyncService(reportsRepo, client, cfg.Storage.DownloadsDir, log),
		coordinator: service.NewRecommendationCoordinator(client, reportsRepo, updates, log),
		reportsRepo: reportsRepo,
	}

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup-patient":
		return a.signupPatient(ctx, args)
	case "signup-doctor":
		return a.signupDoctor(ctx, args)
	case "login":
		return a.login(ctx, args)
	case "doctors":
		return a.listDoctors(ctx)
	case "reports":
		return a.fetchReports(ctx, args)
	case "upload":
		return a.upload(ctx, args)
	case "download":
		return a.download(ctx, args)
	case "recommend":
		return a.recommend(ctx, args)
	case "save-recommendation":
		return a.saveRecommendation(ctx, args)
	case "get-recommendation":
		return a.getRecommendation(ctx, args)
	case "export":
		return a.export(ctx, args)
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (a *app) signupPatient(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup-patient", flag.ExitOnError)
	name := fs.String("name", "", "Patient name")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password")
	gender := fs.String("gender", "", "Gender")
	age := fs.Int("age", 0, "Age")
	contact := fs.String("contact", "", "Contact number")
	fs.Parse(args)

	ok := a.auth.SignupPatient(ctx, gateway.PatientSignupRequest{
		Name:          *name,
		Email:         *email,
		Password:      *password,
		Gender:        *gender,
		Age:           *age,
		ContactNumber: *contact,
	})
	return a.authResult(ok)
}

func (a *app) signupDoctor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup-doctor", flag.ExitOnError)
	name := fs.String("name", "", "Doctor name")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password")
	specialization := fs.String("specialization", "", "Specialization")
	contact := fs.String("contact", "", "Contact number")
	experience := fs.String("experience", "", "Experience")
	gender := fs.String("gender", "", "Gender")
	fs.Parse(args)

	ok := a.auth.SignupDoctor(ctx, gateway.DoctorSignupRequest{
		Name:           *name,
		Email:          *email,
		Password:       *password,
		Specialization: *specialization,
		ContactNumber:  *contact,
		Experience:     *experience,
		Gender:         *gender,
	})
	return a.authResult(ok)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Password")
	role := fs.String("role", domain.RolePatient, "Role: doctor or patient")
	fs.Parse(args)

	return a.authResult(a.auth.Login(ctx, *email, *password, *role))
}

func (a *app) authResult(ok bool) error {
	if !ok {
		return fmt.Errorf("%s", a.auth.ErrorMessage())
	}
	user := a.auth.CurrentUser()
	fmt.Printf("Authenticated as %s (%s, %s)\n", user.Name, user.Role, user.UserID)
	return nil
}

func (a *app) listDoctors(ctx context.Context) error {
	doctors, err := a.reports.ListDoctors(ctx)
	if err != nil {
		return err
	}
	for _, d := range doctors {
		fmt.Printf("%s  %s  %s (%s yrs)  %s\n", d.DoctorID, d.Name, d.Specialization, d.Experience, d.ContactNumber)
	}
	return nil
}

func (a *app) fetchReports(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reports", flag.ExitOnError)
	role := fs.String("role", domain.RolePatient, "Role: doctor or patient")
	id := fs.String("id", "", "Patient or doctor ID")
	offline := fs.Bool("offline", false, "Read the last synced reports from the local store")
	fs.Parse(args)

	var (
		reports []*domain.Report
		err     error
	)
	switch {
	case *offline && *role == domain.RoleDoctor:
		reports, err = a.reportsRepo.ListByDoctor(ctx, *id)
	case *offline:
		reports, err = a.reportsRepo.ListByPatient(ctx, *id)
	case *role == domain.RoleDoctor:
		reports, err = a.reports.FetchDoctorReports(ctx, *id)
	default:
		reports, err = a.reports.FetchPatientReports(ctx, *id)
	}
	if err != nil {
		return err
	}

	for _, group := range a.reports.GroupByUploadDate(reports) {
		fmt.Println(group.Day.Format("Jan 2, 2006"))
		for _, r := range group.Reports {
			fmt.Printf("  %s  %s", r.ReportID, r.FileName)
			if r.PatientName != "" {
				fmt.Printf("  (%s)", r.PatientName)
			}
			fmt.Println()
		}
	}
	return nil
}

func (a *app) upload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	file := fs.String("file", "", "Report file path (PDF)")
	patientID := fs.String("patient", "", "Patient ID")
	doctorID := fs.String("doctor", "", "Assigned doctor ID")
	fs.Parse(args)

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read report file: %w", err)
	}

	report, err := a.reports.UploadReport(ctx, filepath.Base(*file), data, *patientID, *doctorID)
	if err != nil {
		return err
	}
	fmt.Printf("Uploaded report %s (%d metrics)\n", report.ReportID, len(report.Metrics))
	return nil
}

func (a *app) download(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("download", flag.ExitOnError)
	path := fs.String("path", "", "Remote file path")
	fs.Parse(args)

	localPath, err := a.reports.DownloadReport(ctx, *path)
	if err != nil {
		return err
	}
	fmt.Println(localPath)
	return nil
}

func (a *app) recommend(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("recommend", flag.ExitOnError)
	reportID := fs.String("report", "", "Report ID")
	persist := fs.Bool("persist", false, "Persist the generated text into the local store")
	fs.Parse(args)

	report, err := a.reportsRepo.GetReport(ctx, *reportID)
	if err != nil {
		return fmt.Errorf("report not found locally, fetch reports first: %w", err)
	}

	text, err := a.coordinator.GetOrGenerateAIRecommendation(ctx, report)
	if err != nil {
		return err
	}
	if *persist {
		if err := a.coordinator.PersistAIRecommendation(ctx, *reportID, text); err != nil {
			return err
		}
	}
	fmt.Println(text)
	return nil
}

func (a *app) saveRecommendation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("save-recommendation", flag.ExitOnError)
	reportID := fs.String("report", "", "Report ID")
	text := fs.String("text", "", "Final recommendation text")
	fs.Parse(args)

	if err := a.coordinator.SaveDoctorRecommendation(ctx, *reportID, *text); err != nil {
		return err
	}
	fmt.Println("Recommendation saved.")
	return nil
}

func (a *app) getRecommendation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("get-recommendation", flag.ExitOnError)
	reportID := fs.String("report", "", "Report ID")
	fs.Parse(args)

	saved, err := a.coordinator.FetchSavedRecommendation(ctx, *reportID)
	if err != nil {
		return err
	}
	if !saved.HasText {
		fmt.Println("No recommendation yet.")
		return nil
	}
	fmt.Println(saved.Text)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	doctorID := fs.String("doctor", "", "Doctor ID")
	out := fs.String("out", "reports.xlsx", "Output file")
	fs.Parse(args)

	reports, err := a.reports.FetchDoctorReports(ctx, *doctorID)
	if err != nil {
		return err
	}
	if err := export.SaveReportsXLSX(*out, reports); err != nil {
		return err
	}
	fmt.Printf("Exported %d reports to %s\n", len(reports), *out)
	return nil
}
