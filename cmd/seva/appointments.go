package main

import (
	"fmt"
	"time"

	"seva-health/internal/apiclient"
	"seva-health/internal/models"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newAppointmentsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointments",
		Aliases: []string{"appt"},
		Short:   "Browse doctors and book OPD appointments",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "specializations",
			Short: "List specializations",
			RunE: func(cmd *cobra.Command, _ []string) error {
				specs, err := a.api.Specializations(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(specs))
				for _, s := range specs {
					rows = append(rows, []string{s.ID, s.Name})
				}
				printTable(a.out, []string{"ID", "Specialization"}, rows)
				return nil
			},
		},
		&cobra.Command{
			Use:   "doctors <specialization-id>",
			Short: "List the doctors of a specialization",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				docs, err := a.api.Doctors(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(docs))
				for _, d := range docs {
					rows = append(rows, []string{d.ID, d.Name, d.Degree})
				}
				printTable(a.out, []string{"ID", "Doctor", "Degree"}, rows)
				return nil
			},
		},
		newSlotsCmd(a),
		newBookCmd(a),
		&cobra.Command{
			Use:   "list",
			Short: "List your appointments",
			RunE: func(cmd *cobra.Command, _ []string) error {
				sess, err := a.session(cmd.Context())
				if err != nil {
					return err
				}
				appts, err := a.api.Appointments(cmd.Context(), sess.Token)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(appts))
				for _, ap := range appts {
					rows = append(rows, []string{ap.Date, ap.Slot, ap.DoctorID, ap.OPDType, ap.Status})
				}
				printTable(a.out, []string{"Date", "Slot", "Doctor", "OPD", "Status"}, rows)
				return nil
			},
		},
	)
	return cmd
}

func newSlotsCmd(a *app) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "slots <doctor-id>",
		Short: "Show a doctor's open slots on a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slots, err := a.api.Slots(cmd.Context(), args[0], date)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(slots))
			for _, s := range slots {
				rows = append(rows, []string{s})
			}
			printTable(a.out, []string{"Slots on " + date}, rows)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", time.Now().Format(time.DateOnly), "date, YYYY-MM-DD")
	return cmd
}

func newBookCmd(a *app) *cobra.Command {
	var req apiclient.BookRequest
	cmd := &cobra.Command{
		Use:   "book <doctor-id>",
		Short: "Book an appointment",
		Long: "Books a slot and records the pre-booking payment. Rerunning with the same\n" +
			"--idempotency-key returns the original booking instead of a second one.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			req.DoctorID = args[0]

			if req.Slot == "" {
				slots, err := a.api.Slots(ctx, req.DoctorID, req.Date)
				if err != nil {
					return err
				}
				if len(slots) == 0 {
					return fmt.Errorf("no open slots on %s", req.Date)
				}
				err = a.run(huh.NewForm(huh.NewGroup(
					huh.NewSelect[string]().Title("Slot").Options(huh.NewOptions(slots...)...).Value(&req.Slot),
					huh.NewSelect[string]().Title("Visit").Options(
						huh.NewOption("In person", models.OPDOffline),
						huh.NewOption("Online", models.OPDOnline),
					).Value(&req.OPDType),
				)))
				if err != nil {
					return err
				}
			}
			if req.PaymentRef == "" {
				req.PaymentRef = "sim_" + uuid.NewString()
			}
			if req.IdempotencyKey == "" {
				req.IdempotencyKey = uuid.NewString()
			}

			ap, err := a.api.Book(ctx, sess.Token, req)
			if err != nil {
				return err
			}
			printSuccess(a.out, "Booked %s at %s (%s), paid ₹%d", ap.Date, ap.Slot, ap.OPDType, ap.PreBookingAmount)
			fmt.Fprintf(a.out, "Appointment %s\n", ap.ID)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&req.Date, "date", time.Now().Format(time.DateOnly), "date, YYYY-MM-DD")
	fl.StringVar(&req.Slot, "slot", "", "slot, e.g. 10:00")
	fl.StringVar(&req.OPDType, "opd", models.OPDOffline, "online or offline")
	fl.StringVar(&req.PaymentRef, "payment-ref", "", "payment reference (simulated when empty)")
	fl.StringVar(&req.IdempotencyKey, "idempotency-key", "", "reuse to make retries safe")
	return cmd
}
