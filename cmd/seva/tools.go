package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"seva-health/internal/bloodbanks"
	"seva-health/internal/drugs"
	"seva-health/internal/health"
	"seva-health/internal/prediction"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newBMICmd(a *app) *cobra.Command {
	var weight, height string
	cmd := &cobra.Command{
		Use:   "bmi",
		Short: "Calculate body mass index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (weight == "" || height == "") && !a.noInput {
				err := a.run(huh.NewForm(huh.NewGroup(
					huh.NewInput().Title("Weight (kg)").Value(&weight),
					huh.NewInput().Title("Height (cm)").Value(&height),
				)))
				if err != nil {
					return err
				}
			}
			res, err := health.BMI(weight, height)
			if err != nil {
				return err
			}
			printTitle(a.out, fmt.Sprintf("BMI %.1f", res.Rounded()))
			fmt.Fprintln(a.out, res.Category)
			return nil
		},
	}
	cmd.Flags().StringVar(&weight, "weight", "", "weight in kg")
	cmd.Flags().StringVar(&height, "height", "", "height in cm")
	return cmd
}

func newBloodBanksCmd(a *app) *cobra.Command {
	var (
		lat, lon float64
		limit    int
		pincode  string
	)
	cmd := &cobra.Command{
		Use:   "bloodbanks",
		Short: "Find blood banks by location or pincode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := bloodbanks.Default()
			if err != nil {
				return err
			}
			headers := []string{"Name", "Address", "Phone"}
			var rows [][]string

			switch {
			case cmd.Flags().Changed("lat") && cmd.Flags().Changed("lon"):
				headers = append(headers, "Distance")
				for _, r := range dir.Nearest(lat, lon, limit) {
					rows = append(rows, []string{r.Name, r.Address, r.Phone, fmt.Sprintf("%.1f km", r.DistanceKm)})
				}
			case pincode != "":
				for _, b := range dir.ByPincode(pincode) {
					rows = append(rows, []string{b.Name, b.Address, b.Phone})
				}
			default:
				for _, b := range dir.All() {
					rows = append(rows, []string{b.Name, b.Address, b.Phone})
				}
			}

			if len(rows) == 0 {
				fmt.Fprintln(a.out, "No blood banks found in your area")
				return nil
			}
			printTable(a.out, headers, rows)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude")
	cmd.Flags().IntVar(&limit, "limit", 5, "number of results when searching by location")
	cmd.Flags().StringVar(&pincode, "pincode", "", "postal code")
	return cmd
}

func newDrugsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drugs <name>",
		Short: "Search medicines by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := drugs.New(a.cfg.RxNavBaseURL, requestTimeout, a.log)
			if err != nil {
				return err
			}
			found, err := c.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(a.out, "No medicines found")
				return nil
			}
			rows := make([][]string, 0, len(found))
			for _, d := range found {
				rows = append(rows, []string{d.RxCUI, d.Synonym, orDash(d.Strength), orDash(d.Form), orDash(d.Route)})
			}
			printTable(a.out, []string{"RxCUI", "Name", "Strength", "Form", "Route"}, rows)
			return nil
		},
	}
}

func newPredictCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Run a health risk assessment",
	}

	var cardio map[string]string
	cardioCmd := &cobra.Command{
		Use:     "cardio",
		Short:   "Cardiovascular disease risk",
		Example: "  seva predict cardio --set Age=52,Gender=male,Height=175,Weight=70,...",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in prediction.CardioInput
			if err := fillForm(a, cardio, cardioOptions, prediction.CardioPages, &in); err != nil {
				return err
			}
			res, err := a.predictor().Cardio(cmd.Context(), in)
			if err != nil {
				return err
			}
			printTitle(a.out, res)
			return nil
		},
	}
	cardioCmd.Flags().StringToStringVar(&cardio, "set", nil, "answers as Field=value pairs")

	var diabetes map[string]string
	diabetesCmd := &cobra.Command{
		Use:   "diabetes",
		Short: "Diabetes risk",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var in prediction.DiabetesInput
			if err := fillForm(a, diabetes, diabetesOptions, prediction.DiabetesPages, &in); err != nil {
				return err
			}
			res, err := a.predictor().Diabetes(cmd.Context(), in)
			if err != nil {
				return err
			}
			printTitle(a.out, "Assessment Result")
			fmt.Fprintln(a.out, res)
			return nil
		},
	}
	diabetesCmd.Flags().StringToStringVar(&diabetes, "set", nil, "answers as Field=value pairs")

	symptomsCmd := &cobra.Command{
		Use:   "symptoms <description>",
		Short: "Describe symptoms and get a triage suggestion",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if strings.TrimSpace(text) == "" {
				err := a.run(huh.NewForm(huh.NewGroup(
					huh.NewText().Title("Describe your symptoms").Value(&text),
				)))
				if err != nil {
					return err
				}
			}
			res, err := a.predictor().Symptoms(cmd.Context(), text)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, res)
			return nil
		},
	}

	cmd.AddCommand(cardioCmd, diabetesCmd, symptomsCmd)
	return cmd
}

func (a *app) predictor() *prediction.Client {
	return prediction.New(prediction.Endpoints{
		Cardio:   a.cfg.CardioAPIURL,
		Diabetes: a.cfg.DiabetesAPIURL,
		Symptoms: a.cfg.SymptomsAPIURL,
	}, requestTimeout, a.log)
}

// Choices offered for the select-style prediction fields. Fields not listed
// are free text.
var cardioOptions = map[string][]string{
	"Gender":      {"male", "female"},
	"Cholesterol": {"normal", "above normal", "well above normal"},
	"Glucose":     {"normal", "above normal", "well above normal"},
	"Smoke":       {"smoker", "non smoker"},
	"Alcohol":     {"alcoholic", "non alcoholic"},
	"Active":      {"active", "inactive"},
}

var diabetesOptions = map[string][]string{
	"Gender":           {"male", "female"},
	"BloodPressure":    {"high", "low"},
	"HeartAttack":      {"yes", "no"},
	"HighCholesterol":  {"high", "low"},
	"Stroke":           {"yes", "no"},
	"CholesterolCheck": {"yes", "no"},
	"Smoke":            {"yes", "no"},
	"Veggies":          {"yes", "no"},
	"Fruits":           {"yes", "no"},
	"Alcohol":          {"alcoholic", "non_alcoholic"},
	"Active":           {"yes", "no"},
}

// fillForm decodes the --set answers into out, then walks the pages asking
// for anything still missing until each page validates.
func fillForm(a *app, answers map[string]string, options map[string][]string, pages [][]string, out any) error {
	values := make(map[string]string, len(answers))
	for k, v := range answers {
		values[k] = v
	}
	if err := decodeAnswers(values, out); err != nil {
		return err
	}

	for page := 0; page < len(pages); {
		err := prediction.ValidatePage(out, pages, page)
		if err == nil {
			page++
			continue
		}
		if a.noInput {
			return err
		}
		printWarning(a.out, "%s", err)

		ptrs := make(map[string]*string, len(pages[page]))
		fields := make([]huh.Field, 0, len(pages[page])+1)
		fields = append(fields, huh.NewNote().Title(fmt.Sprintf("Page %d of %d", page+1, len(pages))))
		for _, name := range pages[page] {
			v := values[name]
			ptrs[name] = &v
			if opts, ok := options[name]; ok {
				fields = append(fields, huh.NewSelect[string]().Title(name).Options(huh.NewOptions(opts...)...).Value(&v))
			} else {
				fields = append(fields, huh.NewInput().Title(name).Value(&v))
			}
		}
		if err := a.run(huh.NewForm(huh.NewGroup(fields...))); err != nil {
			return err
		}
		for name, p := range ptrs {
			values[name] = *p
		}
		if err := decodeAnswers(values, out); err != nil {
			return err
		}
	}
	return nil
}

// decodeAnswers maps Field=value pairs onto a form struct through its json
// keys, which are the field names.
func decodeAnswers(values map[string]string, out any) error {
	raw, err := json.Marshal(values)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}
