package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"seva-health/internal/authstate"
	"seva-health/internal/onboarding"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

type signupFlags struct {
	email, password, name       string
	gender, age, weight, height string
	bloodGroup, info, photoURL  string
}

func newSignupCmd(a *app) *cobra.Command {
	var f signupFlags
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and health profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSignup(cmd.Context(), a, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.email, "email", "", "email address")
	fl.StringVar(&f.password, "password", "", "password")
	fl.StringVar(&f.name, "name", "", "full name")
	fl.StringVar(&f.gender, "gender", "", "male, female or not-to-answer")
	fl.StringVar(&f.age, "age", "", "age in years")
	fl.StringVar(&f.weight, "weight", "", "weight in kg")
	fl.StringVar(&f.height, "height", "", "height in cm")
	fl.StringVar(&f.bloodGroup, "blood-group", "", "blood group, e.g. O+")
	fl.StringVar(&f.info, "info", "", "additional medical information")
	fl.StringVar(&f.photoURL, "photo-url", "", "profile photo url")
	return cmd
}

func runSignup(ctx context.Context, a *app, f signupFlags) error {
	policy := onboarding.DefaultPolicy()
	policy.MinPasswordLength = a.cfg.MinPasswordLength

	w := onboarding.NewWizard(a.api, onboarding.Options{
		Policy: policy,
		Photos: onboarding.PhotoDefaults{BaseURL: a.cfg.PhotoBaseURL},
		Logger: a.log,
	})
	w.SetCredentials(onboarding.Credentials{Email: f.email, Password: f.password, ConfirmPassword: f.password, Name: f.name})
	w.SetBiometrics(onboarding.Biometrics{Gender: onboarding.Gender(f.gender), Age: f.age, Weight: f.weight, Height: f.height})
	w.SetMedical(onboarding.Medical{BloodGroup: f.bloodGroup, AdditionalInfo: f.info, PhotoURL: f.photoURL})

	for {
		switch w.Stage() {
		case onboarding.StageCredentials, onboarding.StageBiometrics:
			if !a.noInput {
				back, err := signupStageForm(a, w)
				if err != nil {
					return err
				}
				if back {
					_ = w.Back()
					continue
				}
			}
			if err := w.Next(); err != nil {
				if a.noInput {
					return err
				}
				printWarning(a.out, "%s", w.LastError())
			}

		case onboarding.StageMedical:
			if !a.noInput {
				back, err := signupStageForm(a, w)
				if err != nil {
					return err
				}
				if back {
					_ = w.Back()
					continue
				}
			}
			res, err := w.Submit(ctx)
			if err != nil {
				reportSignupFailure(a, w, err)
				if a.noInput {
					return err
				}
				continue
			}
			return finishSignup(ctx, a, res)
		}
	}
}

func reportSignupFailure(a *app, w *onboarding.Wizard, err error) {
	var verr *onboarding.ValidationError
	if !errors.As(err, &verr) {
		printWarning(a.out, "%s", userMessage(err))
	} else {
		printWarning(a.out, "%s", w.LastError())
	}

	var ierr *onboarding.IdentityCreationError
	var perr *onboarding.ProfileCreationError
	if (errors.As(err, &ierr) && ierr.Orphaned()) || (errors.As(err, &perr) && perr.Orphaned()) {
		printWarning(a.out, "Your account was created but its profile could not be saved. Use `seva recover` or contact support before signing up again.")
	}
}

func finishSignup(ctx context.Context, a *app, res onboarding.Result) error {
	h, err := a.holder(ctx)
	if err != nil {
		return err
	}
	err = h.Adopt(ctx, authstate.Session{
		ID:        res.Session.ID,
		Token:     res.Session.Token,
		ExpiresAt: res.Session.ExpiresAt,
		Account: authstate.Account{
			ID:    res.Identity.ID,
			Email: res.Identity.Email,
			Name:  res.Identity.Name,
		},
	})
	if err != nil {
		return err
	}
	printSuccess(a.out, "Welcome to Seva, %s!", res.Profile.Name)
	return nil
}

// signupStageForm edits the draft for the wizard's current stage. back is
// true when the user asked to return to the previous stage.
func signupStageForm(a *app, w *onboarding.Wizard) (back bool, err error) {
	d := w.Draft()
	const next, prev = "next", "back"
	action := next
	nav := huh.NewSelect[string]().
		Title("Continue?").
		Options(huh.NewOption("Next", next), huh.NewOption("Back", prev)).
		Value(&action)

	switch w.Stage() {
	case onboarding.StageCredentials:
		c := d.Credentials
		err = a.run(huh.NewForm(huh.NewGroup(
			huh.NewNote().Title("Step 1 of 3").Description("Account"),
			huh.NewInput().Title("Email").Value(&c.Email),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&c.Password),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&c.ConfirmPassword),
			huh.NewInput().Title("Full name").Value(&c.Name),
		)))
		w.SetCredentials(c)

	case onboarding.StageBiometrics:
		b := d.Biometrics
		gender := string(b.Gender)
		err = a.run(huh.NewForm(huh.NewGroup(
			huh.NewNote().Title("Step 2 of 3").Description("About you"),
			huh.NewSelect[string]().Title("Gender").Options(
				huh.NewOption("Male", string(onboarding.GenderMale)),
				huh.NewOption("Female", string(onboarding.GenderFemale)),
				huh.NewOption("Prefer not to answer", string(onboarding.GenderNotToAnswer)),
			).Value(&gender),
			huh.NewInput().Title("Age").Value(&b.Age),
			huh.NewInput().Title("Weight (kg)").Value(&b.Weight),
			huh.NewInput().Title("Height (cm)").Value(&b.Height),
			nav,
		)))
		b.Gender = onboarding.Gender(gender)
		w.SetBiometrics(b)

	case onboarding.StageMedical:
		m := d.Medical
		groups := []huh.Option[string]{huh.NewOption("Skip", "")}
		for _, g := range onboarding.BloodGroups {
			groups = append(groups, huh.NewOption(g, g))
		}
		nav.Options(huh.NewOption("Create account", next), huh.NewOption("Back", prev))
		err = a.run(huh.NewForm(huh.NewGroup(
			huh.NewNote().Title("Step 3 of 3").Description("Medical details (optional)"),
			huh.NewSelect[string]().Title("Blood group").Options(groups...).Value(&m.BloodGroup),
			huh.NewText().Title("Additional information").Value(&m.AdditionalInfo),
			huh.NewInput().Title("Photo URL").Value(&m.PhotoURL),
			nav,
		)))
		w.SetMedical(m)
	}
	if err != nil {
		return false, err
	}
	return action == prev, nil
}

func newLoginCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if email == "" || password == "" {
				err := a.run(huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Email").Value(&email),
					huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password),
				)))
				if err != nil {
					return err
				}
			}
			h, err := a.holder(cmd.Context())
			if err != nil {
				return err
			}
			sess, err := h.Login(cmd.Context(), strings.TrimSpace(email), password)
			if err != nil {
				return err
			}
			printSuccess(a.out, "Signed in as %s", displayName(sess.Account))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := a.holder(cmd.Context())
			if err != nil {
				return err
			}
			if err := h.Logout(cmd.Context()); err != nil {
				printWarning(a.out, "Signed out locally, but the server could not be told: %s", userMessage(err))
				return nil
			}
			printSuccess(a.out, "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			printTitle(a.out, displayName(sess.Account))
			fmt.Fprintf(a.out, "Email:  %s\n", sess.Account.Email)
			fmt.Fprintf(a.out, "Status: %s\n", a.auth.Status())

			p, err := a.api.GetProfile(cmd.Context(), sess.Token)
			if err != nil {
				printWarning(a.out, "Profile unavailable: %s", userMessage(err))
				return nil
			}
			rows := [][]string{
				{"Gender", string(p.Gender)},
				{"Age", p.Age},
				{"Weight (kg)", p.Weight},
				{"Height (cm)", p.Height},
				{"Blood group", orDash(p.BloodGroup)},
				{"Notes", orDash(p.AdditionalInfo)},
			}
			printTable(a.out, []string{"Profile", ""}, rows)
			return nil
		},
	}
}

func newRecoverCmd(a *app) *cobra.Command {
	var email, token, password string
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Reset a forgotten password",
		Long: "Without --token, emails a recovery link to --email. With --token, sets a new\n" +
			"password using the token from that email.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if token == "" {
				if email == "" {
					if err := a.run(huh.NewForm(huh.NewGroup(huh.NewInput().Title("Email").Value(&email)))); err != nil {
						return err
					}
				}
				if err := a.api.RequestRecovery(ctx, strings.TrimSpace(email)); err != nil {
					return err
				}
				printSuccess(a.out, "If an account exists for %s, a recovery email is on its way.", email)
				return nil
			}

			if password == "" {
				err := a.run(huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&password),
				)))
				if err != nil {
					return err
				}
			}
			if err := a.api.CompleteRecovery(ctx, token, password); err != nil {
				return err
			}
			printSuccess(a.out, "Password updated. Sign in with `seva login`.")
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&token, "token", "", "recovery token from the email")
	cmd.Flags().StringVar(&password, "password", "", "new password")
	return cmd
}

func displayName(acct authstate.Account) string {
	if acct.Name != "" {
		return acct.Name
	}
	return acct.Email
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
