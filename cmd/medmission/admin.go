package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/medmission/medmission/internal/app"
	"github.com/medmission/medmission/internal/domain/catalog"
	"github.com/medmission/medmission/internal/domain/mission"
	"github.com/medmission/medmission/internal/domain/patientid"
	"github.com/medmission/medmission/internal/domain/registry"
	"github.com/medmission/medmission/internal/domain/rx"
)

func printCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print <identifier>",
		Short: "Print the prescription-style summary for an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			identifier := patientid.Normalize(args[0])
			p, ok := a.Records.PatientByIdentifier(identifier)
			if !ok {
				return fmt.Errorf("%w: %s", registry.ErrPatientNotFound, identifier)
			}
			v, ok := a.Records.LatestVitals(identifier)
			if !ok {
				return fmt.Errorf("%w: record vitals for %s before printing", registry.ErrVitalsNotFound, identifier)
			}
			info, err := a.Mission.Get(ctx)
			if err != nil {
				return err
			}

			summary := rx.Build(p, v, identifier, info, a.Catalog)

			var w io.Writer = cmd.OutOrStdout()
			if out, _ := cmd.Flags().GetString("out"); out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return rx.Render(w, summary)
		}),
	}
	cmd.Flags().String("out", "", "Write to this file instead of stdout")
	return cmd
}

func countersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counters",
		Short: "Inspect or reset the per-service identifier counters",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show [code]",
		Short: "Show the last sequence number minted per service",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			counters, err := a.IDs.Counters(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				code := strings.ToUpper(args[0])
				counters = map[string]int{code: counters[code]}
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, counters)
			}

			out := cmd.OutOrStdout()
			if len(counters) == 0 {
				fmt.Fprintln(out, "No identifiers minted yet.")
				return nil
			}
			fmt.Fprintf(out, "%-6s %-8s %s\n", "CODE", "CURRENT", "NEXT")
			for _, code := range counters.Codes() {
				fmt.Fprintf(out, "%-6s %-8d %s\n", code, counters[code], patientid.Format(code, counters[code]+1))
			}
			return nil
		}),
	})

	resetCmd := &cobra.Command{
		Use:   "reset [code]",
		Short: "Restart numbering for one service, or all with --all",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to reset counters without --yes")
			}

			switch {
			case all && len(args) == 0:
				if err := a.IDs.ResetAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All counters reset")
			case !all && len(args) == 1:
				code := strings.ToUpper(args[0])
				if err := a.IDs.Reset(ctx, code); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Counter %s reset\n", code)
			default:
				return errors.New("give either a service code or --all")
			}
			return nil
		}),
	}
	resetCmd.Flags().Bool("all", false, "Reset every counter")
	resetCmd.Flags().Bool("yes", false, "Confirm")
	cmd.AddCommand(resetCmd)

	return cmd
}

func missionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mission",
		Short: "Show or edit the mission details printed on summaries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the mission details",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			info, err := a.Mission.Get(ctx)
			if err != nil {
				return err
			}
			return showMission(cmd, info)
		}),
	})

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Change mission details; only the given flags change",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			var patch mission.InfoPatch
			for flag, dst := range map[string]**string{
				"name":      &patch.Name,
				"location":  &patch.Location,
				"organizer": &patch.Organizer,
				"contact":   &patch.ContactInfo,
			} {
				if cmd.Flags().Changed(flag) {
					v, _ := cmd.Flags().GetString(flag)
					*dst = &v
				}
			}
			if cmd.Flags().Changed("date") {
				raw, _ := cmd.Flags().GetString("date")
				d, err := parseMissionDate(raw)
				if err != nil {
					return err
				}
				patch.Date = &d
			}
			if patch.IsEmpty() {
				return errors.New("nothing to change: pass at least one of --name, --location, --date, --organizer, --contact")
			}

			info, err := a.Mission.Update(ctx, patch)
			if err != nil {
				return err
			}
			return showMission(cmd, info)
		}),
	}
	setCmd.Flags().String("name", "", "Mission name")
	setCmd.Flags().String("location", "", "Venue")
	setCmd.Flags().String("date", "", "Date (YYYY-MM-DD or RFC 3339)")
	setCmd.Flags().String("organizer", "", "Organizing group")
	setCmd.Flags().String("contact", "", "Contact information")
	cmd.AddCommand(setCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Restore the default mission details",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			info, err := a.Mission.Reset(ctx)
			if err != nil {
				return err
			}
			return showMission(cmd, info)
		}),
	})

	return cmd
}

func parseMissionDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: want YYYY-MM-DD or RFC 3339", raw)
	}
	return t, nil
}

func showMission(cmd *cobra.Command, info mission.Info) error {
	if jsonOutput(cmd) {
		return printJSON(cmd, info)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-11s %s\n", "Name:", info.Name)
	fmt.Fprintf(out, "%-11s %s\n", "Location:", info.Location)
	fmt.Fprintf(out, "%-11s %s\n", "Date:", rx.Date(info.Date))
	fmt.Fprintf(out, "%-11s %s\n", "Organizer:", info.Organizer)
	fmt.Fprintf(out, "%-11s %s\n", "Contact:", info.ContactInfo)
	return nil
}

func servicesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "services",
		Short: "List the services offered and their identifier prefixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			category, _ := cmd.Flags().GetString("category")

			cat := catalog.Default()
			services := cat.All()
			if category != "" {
				services = cat.InCategory(strings.ToLower(category))
			}
			if jsonOutput(cmd) {
				return printJSON(cmd, services)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-5s %-30s %-9s %s\n", "CODE", "NAME", "CATEGORY", "DESCRIPTION")
			for _, s := range services {
				fmt.Fprintf(out, "%-5s %-30s %-9s %s\n", s.Code, s.Name, s.Category, s.Description)
			}
			return nil
		},
	}
	cmd.Flags().String("category", "", "Only this category ("+strings.Join(catalog.Default().Categories(), ", ")+")")
	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the configured store opens and its data reads back",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			h, err := a.Check(ctx)
			if jsonOutput(cmd) {
				if perr := printJSON(cmd, h); perr != nil {
					return perr
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-11s %s\n", "Driver:", h.Driver)
			if h.Location != "" {
				fmt.Fprintf(out, "%-11s %s\n", "Location:", h.Location)
			}
			fmt.Fprintf(out, "%-11s %t\n", "Encrypted:", h.Encrypted)
			fmt.Fprintf(out, "%-11s %s\n", "ID policy:", h.Policy)
			fmt.Fprintf(out, "%-11s %d\n", "Patients:", h.Patients)
			fmt.Fprintf(out, "%-11s %d\n", "Vitals:", h.Vitals)
			if h.Pool != nil {
				fmt.Fprintf(out, "%-11s %d/%d conns, acquire %s\n", "Pool:", h.Pool.TotalConns, h.Pool.MaxConns, h.Pool.AcquireDuration)
			}
			if err != nil {
				fmt.Fprintf(out, "%-11s %s\n", "Status:", "FAILED")
				return err
			}
			fmt.Fprintf(out, "%-11s %s\n", "Status:", "OK")
			return nil
		}),
	}
}
