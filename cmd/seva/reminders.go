package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"seva-health/internal/mailer"
	"seva-health/internal/notify"
	"seva-health/internal/reminders"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRemindersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Manage medicine reminders",
	}
	cmd.AddCommand(newRemindersAddCmd(a), newRemindersListCmd(a), newRemindersClearCmd(a), newRemindersRunCmd(a))
	return cmd
}

// reminderSetup wires the store, a local notification platform and the
// manager around sender. With askPermission set, the user is asked for
// notification permission unless an earlier decision is stored.
func (a *app) reminderSetup(ctx context.Context, sender notify.Sender, askPermission bool) (*reminders.Manager, *notify.LocalPlatform, error) {
	store, err := a.localStore()
	if err != nil {
		return nil, nil, err
	}
	opts := notify.LocalOptions{Store: store, Logger: a.log}
	if !a.noInput {
		opts.Prompt = func(context.Context) (bool, error) {
			allow := true
			err := huh.NewForm(huh.NewGroup(
				huh.NewConfirm().Title("Allow Seva to send medicine reminders?").Value(&allow),
			)).Run()
			return allow, err
		}
	}
	platform := notify.NewLocalPlatform(sender, opts)
	scheduler := notify.NewScheduler(platform, a.log)
	if askPermission {
		perm, err := scheduler.RequestPermission(ctx)
		if err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, nil, errCancelled
			}
			return nil, nil, fmt.Errorf("notification permission: %w", err)
		}
		if perm != notify.PermissionGranted {
			printWarning(a.out, "Notifications are turned off, medicine reminders will not fire.")
		}
	}
	mgr := reminders.NewManager(reminders.NewStore(store, a.log), scheduler, a.log)
	return mgr, platform, nil
}

func newRemindersAddCmd(a *app) *cobra.Command {
	var in reminders.Input
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a reminder",
		Example: "  seva reminders add --name Metformin --time 08:30 --days mon,wed,fri",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if in.Name == "" || in.Time == "" {
				if err := reminderForm(a, &in); err != nil {
					return err
				}
			}
			mgr, _, err := a.reminderSetup(cmd.Context(), notify.NewLogSender(a.log), true)
			if err != nil {
				return err
			}

			r, err := mgr.Add(cmd.Context(), in)
			if err != nil && r.ID == "" {
				return err
			}
			printSuccess(a.out, "Saved reminder for %s at %s", r.Name, r.Time)
			if len(r.Days) == 0 {
				printWarning(a.out, "No days selected, this reminder will never fire.")
			}
			if err != nil {
				printWarning(a.out, "Notifications could not be scheduled: %s", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "medicine name")
	cmd.Flags().StringVar(&in.Time, "time", "", "time of day, HH:MM")
	cmd.Flags().StringSliceVar(&in.Days, "days", nil, "days of the week, e.g. mon,wed,fri")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "notes")
	return cmd
}

func reminderForm(a *app, in *reminders.Input) error {
	days := make([]huh.Option[string], 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		days = append(days, huh.NewOption(wd.String(), wd.String()))
	}
	return a.run(huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Medicine name").Value(&in.Name),
		huh.NewInput().Title("Time (HH:MM)").Value(&in.Time).Validate(func(s string) error {
			_, _, err := reminders.ParseTime(s)
			return err
		}),
		huh.NewMultiSelect[string]().Title("Days").Options(days...).Value(&in.Days),
		huh.NewText().Title("Notes").Value(&in.Notes),
	)))
}

func newRemindersListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved reminders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, _, err := a.reminderSetup(cmd.Context(), notify.NewLogSender(a.log), false)
			if err != nil {
				return err
			}
			res := mgr.List(cmd.Context())
			if res.Corrupted {
				printWarning(a.out, "Stored reminders were unreadable and have been ignored.")
			} else if res.Dropped > 0 {
				printWarning(a.out, "%d malformed reminder(s) skipped.", res.Dropped)
			}

			rows := make([][]string, 0, len(res.Reminders))
			for _, r := range res.Reminders {
				rows = append(rows, []string{r.ID, r.Name, r.Time, orDash(strings.Join(r.Days, ", ")), orDash(r.Notes)})
			}
			printTable(a.out, []string{"ID", "Medicine", "Time", "Days", "Notes"}, rows)
			return nil
		},
	}
}

func newRemindersClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every reminder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				confirm := false
				err := a.run(huh.NewForm(huh.NewGroup(
					huh.NewConfirm().Title("Delete all reminders?").Value(&confirm),
				)))
				if err != nil {
					return err
				}
				if !confirm {
					return nil
				}
			}
			mgr, _, err := a.reminderSetup(cmd.Context(), notify.NewLogSender(a.log), false)
			if err != nil {
				return err
			}
			if err := mgr.ClearAll(cmd.Context()); err != nil {
				return err
			}
			printSuccess(a.out, "All reminders deleted")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation")
	return cmd
}

func newRemindersRunCmd(a *app) *cobra.Command {
	var tick time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Stay in the foreground and deliver reminders when they are due",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			senders := notify.MultiSender{notify.NewLogSender(a.log)}
			if a.cfg.NotifyEmail != "" {
				m := mailer.New(a.cfg.ResendAPIKey, a.cfg.FromEmail, a.log)
				senders = append(senders, notify.NewMailSender(m, a.cfg.NotifyEmail))
			}

			mgr, platform, err := a.reminderSetup(ctx, senders, true)
			if err != nil {
				return err
			}
			n, err := mgr.ScheduleAll(ctx)
			if err != nil {
				a.log.Warn("some reminders could not be scheduled", zap.Error(err))
			}
			if n == 0 {
				printWarning(a.out, "Nothing to deliver. Add a reminder with at least one day first.")
				return err
			}
			printSuccess(a.out, "Watching %d weekly trigger(s), press Ctrl+C to stop", n)

			if err := platform.Run(ctx, tick); err != nil && ctx.Err() == nil {
				return fmt.Errorf("reminder loop: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&tick, "tick", 15*time.Second, "how often to check for due reminders")
	return cmd
}
