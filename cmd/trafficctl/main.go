// Package main 运维命令行工具
//
// 用法:
//
//	trafficctl [-config DIR] <command> [flags]
//
// 命令:
//
//	migrate        建表 / 建索引（幂等）
//	users          列出用户
//	campaigns      列出广告活动
//	create-admin   创建或提升管理员
//	seed           写入演示广告活动
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/auth"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/campaign"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/config"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/infra"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
	"github.com/Michelle-Meira/gestao-trafego-pago/pkg/logging"
)

const usage = `Usage: trafficctl [-config DIR] <command> [flags]

Commands:
  migrate        create tables and indexes
  users          list users
  campaigns      list campaigns
  create-admin   create an admin user or promote an existing one
  seed           insert the sample campaigns
`

var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "trafficctl: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("trafficctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configDir := fs.String("config", "", "配置文件目录")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		return errUsage
	}
	if *configDir != "" {
		config.SetConfigDir(*configDir)
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	cfg := config.Load()

	store, err := infra.NewStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	switch cmd {
	case "migrate":
		return migrate(ctx, cfg, store, stdout)
	case "users":
		return listUsers(ctx, store, rest, stdout)
	case "campaigns":
		return listCampaigns(ctx, store, rest, stdout)
	case "create-admin":
		return createAdmin(ctx, cfg, store, rest, stdout)
	case "seed":
		return seed(ctx, cfg, store, rest, stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// migrate 存储打开时已完成建表与索引，这里只做连通性确认与统计
func migrate(ctx context.Context, cfg *config.Config, store storage.PersistentStore, w io.Writer) error {
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", cfg.DatabaseDriver, err)
	}
	users, err := store.CountUsers(ctx)
	if err != nil {
		return err
	}
	campaigns, err := store.CountCampaigns(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s schema up to date (users=%d campaigns=%d)\n", cfg.DatabaseDriver, users, campaigns)
	return nil
}

func listUsers(ctx context.Context, store storage.UserStore, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	skip := fs.Int("skip", 0, "跳过条数")
	limit := fs.Int("limit", auth.DefaultListLimit, "返回条数")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *skip < 0 || *limit <= 0 {
		return fmt.Errorf("%w: skip must be >= 0 and limit > 0", errUsage)
	}

	users, err := store.ListUsers(ctx, *skip, *limit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tACTIVE\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
			u.ID, u.Email, u.FullName, u.Role, u.IsActive, u.CreatedAt.Format(time.DateTime))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d user(s)\n", len(users))
	return nil
}

func listCampaigns(ctx context.Context, store storage.CampaignStore, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("campaigns", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	status := fs.String("status", "", "按状态过滤 (draft|active|paused|ended)")
	platform := fs.String("platform", "", "按平台过滤 (google_ads|meta_ads)")
	limit := fs.Int("limit", 50, "返回条数")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	filter := model.CampaignFilter{Limit: *limit}
	if *status != "" {
		filter.Status = model.CampaignStatus(*status)
		if !filter.Status.Valid() {
			return fmt.Errorf("%w: invalid status %q", errUsage, *status)
		}
	}
	if *platform != "" {
		filter.Platform = model.Platform(*platform)
		if !filter.Platform.Valid() {
			return fmt.Errorf("%w: invalid platform %q", errUsage, *platform)
		}
	}

	campaigns, err := store.ListCampaigns(ctx, filter)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPLATFORM\tSTATUS\tBUDGET\tSTART\tSPENT\tIMPRESSIONS\tCLICKS\tCONVERSIONS")
	for _, c := range campaigns {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f %s\t%s\t%.2f\t%d\t%d\t%d\n",
			c.ID, c.Name, c.Platform, c.Status, c.BudgetAmount, c.BudgetType, c.StartDate.Format(time.DateOnly),
			c.TotalSpent, c.Impressions, c.Clicks, c.Conversions)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d campaign(s)\n", len(campaigns))
	return nil
}

func createAdmin(ctx context.Context, cfg *config.Config, store storage.UserStore, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", cfg.Auth.AdminEmail, "管理员邮箱（默认 ADMIN_EMAIL）")
	password := fs.String("password", "", "管理员密码（默认 ADMIN_PASSWORD）")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *password == "" {
		*password = cfg.Auth.AdminPassword
	}
	if strings.TrimSpace(*email) == "" || *password == "" {
		return fmt.Errorf("%w: -email and -password (or ADMIN_EMAIL / ADMIN_PASSWORD) are required", errUsage)
	}

	logger := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: "stderr", Component: "trafficctl"})
	svc := auth.NewService(store, auth.NewPasswordHasher(cfg.Auth.BcryptCost), nil, nil, logger)

	user, err := svc.EnsureAdminUser(ctx, *email, *password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInput) {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		return err
	}
	if user.Role != model.UserRoleAdmin {
		return fmt.Errorf("user %s exists and the password does not match; not promoted", user.Email)
	}
	fmt.Fprintf(w, "admin ready: %s (%s)\n", user.Email, user.ID)
	if !user.IsActive {
		fmt.Fprintln(w, "warning: account is deactivated")
	}
	return nil
}

// seed 写入演示广告活动，归属于 -owner 指定的用户（默认 ADMIN_EMAIL）
func seed(ctx context.Context, cfg *config.Config, store storage.PersistentStore, args []string, w io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	owner := fs.String("owner", cfg.Auth.AdminEmail, "归属用户邮箱")
	reset := fs.Bool("reset", false, "写入前删除全部广告活动")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	var ownerID string
	if email := model.NormalizeEmail(*owner); email != "" {
		u, err := store.GetUserByEmail(ctx, email)
		if err != nil {
			return err
		}
		if u == nil {
			return fmt.Errorf("%w: owner %q not found", errUsage, email)
		}
		ownerID = u.ID
	}

	created, err := campaign.PopulateSample(ctx, store, ownerID, *reset)
	if err != nil {
		return err
	}
	for _, c := range created {
		fmt.Fprintf(w, "created %s %q\n", c.ID, c.Name)
	}
	return nil
}
