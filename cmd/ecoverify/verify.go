package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"eco-connect/verification-backend/internal/config"
	"eco-connect/verification-backend/internal/exif"
	"eco-connect/verification-backend/internal/guard"
	"eco-connect/verification-backend/internal/identity"
	"eco-connect/verification-backend/internal/ledger"
	"eco-connect/verification-backend/internal/providers"
	"eco-connect/verification-backend/internal/tasks"
	"eco-connect/verification-backend/internal/verification"
)

func newVerifyCommand(configFlag *string) *cobra.Command {
	var (
		taskFlag   string
		imageFlag  string
		userIDFlag string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Run the verification pipeline against a photo",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configFlag)
			if err != nil {
				return err
			}

			image, err := os.ReadFile(imageFlag)
			if err != nil {
				return fmt.Errorf("reading image: %w", err)
			}

			svc, err := buildService(cfg, userIDFlag != "")
			if err != nil {
				return err
			}

			req := verification.Request{
				TaskType:    tasks.Type(taskFlag),
				Image:       image,
				Mode:        identity.ModeAnonymous,
				SubmittedAt: time.Now(),
			}
			if userIDFlag != "" {
				req.Mode = identity.ModeAuthenticated
				req.UserID = userIDFlag
			}

			report, err := svc.Verify(cmd.Context(), req)
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !report.OverallValid {
				return fmt.Errorf("verification failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&taskFlag, "task", "", "Task type (plantation, waste_management, stray_animal_feeding)")
	cmd.Flags().StringVar(&imageFlag, "image", "", "Path to the submission photo")
	cmd.Flags().StringVar(&userIDFlag, "user-id", "", "Verify as this registered user (default anonymous)")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func buildService(cfg *config.Config, authenticated bool) (verification.Service, error) {
	deps := verification.Deps{
		Registry: tasks.NewRegistry(),
		Providers: providers.NewSet(providers.FactoryConfig{
			AuthenticityURL: cfg.Providers.AuthenticityURL,
			ActivityURL:     cfg.Providers.ActivityURL,
			FaceURL:         cfg.Providers.FaceURL,
			Timeout:         cfg.Providers.Timeout,
		}),
		Clock:  exif.NewClock(),
		Logger: slog.Default(),
	}

	if rdb, err := guard.ConnectRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB); err == nil {
		deps.Guard = guard.NewRedisGuard(rdb, cfg.Verification.FreshnessWindow)
	} else {
		slog.Warn("redis unavailable, using in-memory duplicate guard", "error", err)
		deps.Guard = guard.NewMemoryGuard(cfg.Verification.FreshnessWindow)
	}

	// The face-reference store and the points ledger live in postgres;
	// anonymous runs never touch either.
	if authenticated {
		db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseURL()), &gorm.Config{})
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := ledger.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrating ledger: %w", err)
		}
		deps.RefStore = identity.NewGormReferenceStore(db)
		deps.Ledger = ledger.NewService(ledger.NewRepository(db))
	} else {
		deps.RefStore = identity.NewMemoryReferenceStore()
	}

	return verification.NewService(cfg.Verification, deps), nil
}
