package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medmission/medmission/internal/app"
	"github.com/medmission/medmission/internal/domain/patientid"
	"github.com/medmission/medmission/internal/domain/registry"
	"github.com/medmission/medmission/internal/domain/rx"
	"github.com/medmission/medmission/internal/domain/vitals"
)

func vitalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vitals",
		Short: "Record and review vital signs",
	}

	addCmd := &cobra.Command{
		Use:   "add <identifier>",
		Short: "Record blood pressure and weight against a patient identifier",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			identifier := patientid.Normalize(args[0])
			if !patientid.IsValidFormat(identifier) {
				return fmt.Errorf("%w: %q", patientid.ErrInvalidIdentifier, args[0])
			}

			in := registry.VitalsInput{PatientID: identifier}
			in.BloodPressureSystolic, _ = cmd.Flags().GetFloat64("systolic")
			in.BloodPressureDiastolic, _ = cmd.Flags().GetFloat64("diastolic")
			in.Weight, _ = cmd.Flags().GetFloat64("weight")
			in.Notes, _ = cmd.Flags().GetString("notes")
			in.RecordedBy, _ = cmd.Flags().GetString("by")

			if res := vitals.Validate(in.Signs()); !res.Valid() {
				return invalid(cmd, "vitals rejected", res.Errors)
			}
			if _, ok := a.Records.PatientByIdentifier(identifier); !ok {
				a.Logger.Warn().Str("identifier", identifier).Msg("no registered patient holds this identifier")
			}

			v, err := a.Records.AddVitals(ctx, in)
			if perr := showVitals(cmd, []registry.Vitals{v}); perr != nil {
				return perr
			}
			return saved(cmd, err)
		}),
	}
	addVitalsFlags(addCmd)
	cmd.AddCommand(addCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "latest <identifier>",
		Short: "Show the most recent reading for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			identifier := patientid.Normalize(args[0])
			v, ok := a.Records.LatestVitals(identifier)
			if !ok {
				return fmt.Errorf("%w: no readings for %s", registry.ErrVitalsNotFound, identifier)
			}
			return showVitals(cmd, []registry.Vitals{v})
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history <identifier>",
		Short: "Show every reading for an identifier, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			return showVitals(cmd, a.Records.VitalsFor(patientid.Normalize(args[0])))
		}),
	})

	updateCmd := &cobra.Command{
		Use:   "update <vitals-id>",
		Short: "Correct a reading; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			existing, ok := a.Records.VitalsByID(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", registry.ErrVitalsNotFound, args[0])
			}

			var patch registry.VitalsPatch
			signs := existing.Signs()
			if cmd.Flags().Changed("systolic") {
				signs.Systolic, _ = cmd.Flags().GetFloat64("systolic")
				patch.BloodPressureSystolic = &signs.Systolic
			}
			if cmd.Flags().Changed("diastolic") {
				signs.Diastolic, _ = cmd.Flags().GetFloat64("diastolic")
				patch.BloodPressureDiastolic = &signs.Diastolic
			}
			if cmd.Flags().Changed("weight") {
				signs.Weight, _ = cmd.Flags().GetFloat64("weight")
				patch.Weight = &signs.Weight
			}
			if cmd.Flags().Changed("notes") {
				notes, _ := cmd.Flags().GetString("notes")
				patch.Notes = &notes
			}
			if cmd.Flags().Changed("by") {
				by, _ := cmd.Flags().GetString("by")
				patch.RecordedBy = &by
			}

			if res := vitals.Validate(signs); !res.Valid() {
				return invalid(cmd, "vitals rejected", res.Errors)
			}

			v, err := a.Records.UpdateVitals(ctx, existing.ID, patch)
			if errors.Is(err, registry.ErrVitalsNotFound) {
				return err
			}
			if perr := showVitals(cmd, []registry.Vitals{v}); perr != nil {
				return perr
			}
			return saved(cmd, err)
		}),
	}
	addVitalsFlags(updateCmd)
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "lookup [query]",
		Short: "List identifiers with their latest reading, filtered by identifier, name or service",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			rows := a.Records.IdentifierRows(query)
			if jsonOutput(cmd) {
				return printJSON(cmd, rows)
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No identifiers found.")
				return nil
			}
			fmt.Fprintf(out, "%-12s %-30s %-28s %s\n", "IDENTIFIER", "NAME", "SERVICE", "LATEST BP")
			for _, r := range rows {
				latest := "-"
				if v, ok := a.Records.LatestVitals(r.Identifier); ok {
					latest = rx.BloodPressure(v.BloodPressureSystolic, v.BloodPressureDiastolic)
				}
				fmt.Fprintf(out, "%-12s %-30s %-28s %s\n", r.Identifier, r.FullName, r.ServiceName, latest)
			}
			return nil
		}),
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every vitals record",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to clear vitals without --yes")
			}
			if err := a.Records.ClearVitals(ctx); err != nil {
				return saved(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All vitals cleared")
			return nil
		}),
	}
	clearCmd.Flags().Bool("yes", false, "Confirm")
	cmd.AddCommand(clearCmd)

	return cmd
}

func addVitalsFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("systolic", 0, "Systolic blood pressure (mmHg)")
	cmd.Flags().Float64("diastolic", 0, "Diastolic blood pressure (mmHg)")
	cmd.Flags().Float64("weight", 0, "Weight (kg)")
	cmd.Flags().String("notes", "", "Notes")
	cmd.Flags().String("by", "", "Staff member recording the reading")
}

func showVitals(cmd *cobra.Command, records []registry.Vitals) error {
	if jsonOutput(cmd) {
		type row struct {
			registry.Vitals
			Category vitals.Category `json:"category"`
		}
		rows := make([]row, len(records))
		for i, v := range records {
			rows[i] = row{Vitals: v, Category: v.Category()}
		}
		return printJSON(cmd, rows)
	}

	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No readings found.")
		return nil
	}
	fmt.Fprintf(out, "%-36s %-12s %-26s %-10s %-22s %s\n", "ID", "IDENTIFIER", "RECORDED", "BP", "CATEGORY", "WEIGHT")
	for _, v := range records {
		fmt.Fprintf(out, "%-36s %-12s %-26s %-10s %-22s %s\n",
			v.ID, v.PatientID, rx.DateTime(v.RecordedDate),
			rx.BloodPressure(v.BloodPressureSystolic, v.BloodPressureDiastolic),
			v.Category(), rx.Weight(v.Weight))
		if v.Notes != "" {
			fmt.Fprintf(out, "  notes: %s\n", v.Notes)
		}
	}
	return nil
}
