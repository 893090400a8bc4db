package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/clinicpulse/clinicpulse_backend/config"
	"github.com/clinicpulse/clinicpulse_backend/internal/model"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/notification"
	"github.com/clinicpulse/clinicpulse_backend/internal/service/review"
	"github.com/clinicpulse/clinicpulse_backend/pkg/email"
)

// lowBalanceThreshold triggers the credit warning email to clinic staff.
const lowBalanceThreshold = 10

// WorkerModule registers the NATS event workers and the notification
// dispatcher loop.
var WorkerModule = fx.Module("workers",
	fx.Invoke(RegisterWorkers),
)

type WorkerParams struct {
	fx.In

	Lc        fx.Lifecycle
	Cfg       *config.Config
	NC        *nats.Conn
	DB        *gorm.DB
	NotifSvc  notification.Service
	ReviewSvc review.Service
	Email     *email.Client
}

func RegisterWorkers(p WorkerParams) {
	dispatcherDone := make(chan struct{})

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.NC != nil {
				startReviewWorker(p.NC, p.DB, p.ReviewSvc, p.Email, p.Cfg)
				startBalanceWorker(p.NC, p.DB, p.Email, p.Cfg)
			}
			startDispatcher(p.Cfg, p.NotifSvc, dispatcherDone)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(dispatcherDone)
			// NATS drain handled by ProvideNatsClient
			return nil
		},
	})
}

// ---------------------------------------------------------------------------
// review_worker
// ---------------------------------------------------------------------------

// startReviewWorker emails review links to patients. Delivery is best-effort:
// the review row stays pending when the patient has no email or the send
// fails, and moves to sent on success.
func startReviewWorker(nc *nats.Conn, db *gorm.DB, reviewSvc review.Service, emailCli *email.Client, cfg *config.Config) {
	_, err := nc.Subscribe(review.SubjectRequested, func(msg *nats.Msg) {
		var event review.RequestedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("review_worker: bad event payload", "err", err)
			return
		}

		ctx := context.Background()

		var p model.Patient
		if err := db.WithContext(ctx).Where("id = ?", event.PatientID).First(&p).Error; err != nil {
			slog.Warn("review_worker: patient not found", "patient_id", event.PatientID, "err", err)
			return
		}
		if p.Email == "" {
			slog.Debug("review_worker: patient has no email, review stays pending",
				"review_id", event.ReviewID)
			return
		}

		var cl model.Clinic
		if err := db.WithContext(ctx).Where("id = ?", event.ClinicID).First(&cl).Error; err != nil {
			slog.Warn("review_worker: clinic not found", "clinic_id", event.ClinicID, "err", err)
			return
		}

		reviewURL := strings.TrimRight(cfg.Reviews.LinkBaseURL, "/") + "/" + event.ReviewID.String()
		msg2 := email.BuildReviewRequestEmail(email.ReviewRequestData{
			PatientName: p.Name,
			Email:       p.Email,
			ClinicName:  cl.Name,
			ReviewURL:   reviewURL,
		})

		if err := emailCli.Send(ctx, msg2); err != nil {
			slog.Warn("review_worker: send review email failed",
				"review_id", event.ReviewID, "err", err)
			return
		}

		if _, err := reviewSvc.MarkSent(ctx, event.ClinicID, event.ReviewID); err != nil {
			slog.Warn("review_worker: mark sent failed", "review_id", event.ReviewID, "err", err)
		}
	})
	if err != nil {
		slog.Error("review_worker: subscribe failed", "err", err)
		return
	}

	slog.Info("review_worker: started")
}

// ---------------------------------------------------------------------------
// balance_worker
// ---------------------------------------------------------------------------

// startBalanceWorker watches notification creation and warns clinic staff
// when the push credit balance drops below the threshold.
func startBalanceWorker(nc *nats.Conn, db *gorm.DB, emailCli *email.Client, cfg *config.Config) {
	_, err := nc.Subscribe(notification.SubjectCreated, func(msg *nats.Msg) {
		var event notification.CreatedEvent
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("balance_worker: bad event payload", "err", err)
			return
		}

		ctx := context.Background()

		var cl model.Clinic
		if err := db.WithContext(ctx).Where("id = ?", event.ClinicID).First(&cl).Error; err != nil {
			slog.Warn("balance_worker: clinic not found", "clinic_id", event.ClinicID, "err", err)
			return
		}
		if cl.PushNotificationBalance >= lowBalanceThreshold || cl.Email == "" {
			return
		}

		msg2 := email.BuildLowBalanceEmail(email.LowBalanceData{
			Email:      cl.Email,
			ClinicName: cl.Name,
			Balance:    cl.PushNotificationBalance,
			TopUpURL:   cfg.Notifications.TopUpURL,
		})
		if err := emailCli.Send(ctx, msg2); err != nil {
			slog.Debug("balance_worker: low balance email failed",
				"clinic_id", cl.ID, "err", err)
		}
	})
	if err != nil {
		slog.Error("balance_worker: subscribe failed", "err", err)
		return
	}

	slog.Info("balance_worker: started")
}

// ---------------------------------------------------------------------------
// dispatcher
// ---------------------------------------------------------------------------

// startDispatcher sweeps due scheduled notifications into sent on an
// interval. Zero interval disables the loop.
func startDispatcher(cfg *config.Config, notifSvc notification.Service, done <-chan struct{}) {
	interval := time.Duration(cfg.Notifications.DispatchIntervalSeconds) * time.Second
	if interval <= 0 {
		slog.Info("dispatcher: disabled")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				moved, err := notifSvc.DispatchDue(ctx, now)
				cancel()
				if err != nil {
					slog.Warn("dispatcher: sweep failed", "err", err)
					continue
				}
				if moved > 0 {
					slog.Info("dispatcher: notifications dispatched", "count", moved)
				}
			}
		}
	}()

	slog.Info("dispatcher: started", "interval", interval)
}
