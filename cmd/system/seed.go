package system

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/config"
	"github.com/clinicpulse/clinicpulse_backend/internal/model"
	"github.com/clinicpulse/clinicpulse_backend/pkg/database"
	"github.com/clinicpulse/clinicpulse_backend/pkg/util/password"
)

// defaultTemplates is the static follow-up catalogue seeded once.
var defaultTemplates = []model.NotificationTemplate{
	{Category: "post_visit", Title: "How are you feeling?", Body: "It has been a day since your visit. Reply through the app if symptoms persist.", OffsetDays: 1},
	{Category: "medication", Title: "Medication reminder", Body: "A reminder to keep up with your prescribed course.", OffsetDays: 3},
	{Category: "follow_up", Title: "Follow-up visit", Body: "Your next visit is coming up. Open the app to see the schedule.", OffsetDays: 7},
	{Category: "review", Title: "Rate your visit", Body: "We'd love your feedback on your recent visit.", OffsetDays: 2},
}

func NewSeedCommand() *cobra.Command {
	var (
		clinicName string
		doctorName string
		staffEmail string
		staffPass  string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the default clinic, first staff account and template catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, err := cmd.Root().PersistentFlags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			cfg, err := config.ReadConfig(filepath.Dir(cfgPath))
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			db, err := database.NewGorm(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close(db)

			return db.Transaction(func(tx *gorm.DB) error {
				var clinic model.Clinic
				err := tx.Where("is_default = ?", true).First(&clinic).Error
				switch {
				case errors.Is(err, gorm.ErrRecordNotFound):
					clinic = model.Clinic{
						Name:                    clinicName,
						DoctorName:              doctorName,
						IsDefault:               true,
						PushNotificationBalance: cfg.Notifications.DefaultBalance,
					}
					if err := tx.Create(&clinic).Error; err != nil {
						return fmt.Errorf("create default clinic: %w", err)
					}
					fmt.Println("Default clinic created:", clinic.ID)
				case err != nil:
					return fmt.Errorf("check default clinic: %w", err)
				default:
					fmt.Println("Default clinic exists:", clinic.ID)
				}

				if staffEmail != "" && staffPass != "" {
					var count int64
					if err := tx.Model(&model.Staff{}).Where("email = ?", staffEmail).Count(&count).Error; err != nil {
						return fmt.Errorf("check staff: %w", err)
					}
					if count == 0 {
						hash, err := password.Hash(staffPass)
						if err != nil {
							return fmt.Errorf("hash password: %w", err)
						}
						staff := model.Staff{
							ClinicID:     clinic.ID,
							Email:        staffEmail,
							PasswordHash: hash,
							Role:         "admin",
						}
						if err := tx.Create(&staff).Error; err != nil {
							return fmt.Errorf("create staff: %w", err)
						}
						fmt.Println("Staff account created:", staff.ID)
					}
				}

				var templates int64
				if err := tx.Model(&model.NotificationTemplate{}).Count(&templates).Error; err != nil {
					return fmt.Errorf("count templates: %w", err)
				}
				if templates == 0 {
					if err := tx.Create(&defaultTemplates).Error; err != nil {
						return fmt.Errorf("seed templates: %w", err)
					}
					fmt.Printf("Seeded %d notification templates.\n", len(defaultTemplates))
				}

				return nil
			})
		},
	}

	cmd.Flags().StringVar(&clinicName, "clinic-name", "Default Clinic", "clinic display name")
	cmd.Flags().StringVar(&doctorName, "doctor-name", "", "doctor display name")
	cmd.Flags().StringVar(&staffEmail, "staff-email", "", "first staff account email")
	cmd.Flags().StringVar(&staffPass, "staff-password", "", "first staff account password")

	return cmd
}
