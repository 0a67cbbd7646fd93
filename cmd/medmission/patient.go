package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medmission/medmission/internal/app"
	"github.com/medmission/medmission/internal/domain/patientid"
	"github.com/medmission/medmission/internal/domain/registry"
	"github.com/medmission/medmission/internal/domain/rx"
	"github.com/medmission/medmission/pkg/pagination"
)

type patientFlags struct {
	first, middle, last string
	age                 int
	ageUnit, sex        string
	street, barangay    string
	city, province      string
	contact             string
	services            []string
	by                  string
}

func (f *patientFlags) bind(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.first, "first", "", "First name")
	fs.StringVar(&f.middle, "middle", "", "Middle name")
	fs.StringVar(&f.last, "last", "", "Last name")
	fs.IntVar(&f.age, "age", 0, "Age")
	fs.StringVar(&f.ageUnit, "age-unit", string(registry.AgeYears), "Age unit (years or months)")
	fs.StringVar(&f.sex, "sex", "", "Sex (male or female)")
	fs.StringVar(&f.street, "street", "", "Street")
	fs.StringVar(&f.barangay, "barangay", "", "Barangay")
	fs.StringVar(&f.city, "city", "", "City or municipality")
	fs.StringVar(&f.province, "province", "", "Province")
	fs.StringVar(&f.contact, "contact", "", "Contact number")
	fs.StringSliceVar(&f.services, "service", nil, "Service code, repeatable (e.g. --service MA --service DE)")
	fs.StringVar(&f.by, "by", "", "Staff member registering the patient")
}

// apply copies the flags that were set on cmd into in. With all set, every
// bound flag is applied.
func (f *patientFlags) apply(cmd *cobra.Command, in *registry.PatientInput, all bool) {
	set := func(name string) bool { return all || cmd.Flags().Changed(name) }

	if set("first") {
		in.FirstName = strings.TrimSpace(f.first)
	}
	if set("middle") {
		in.MiddleName = strings.TrimSpace(f.middle)
	}
	if set("last") {
		in.LastName = strings.TrimSpace(f.last)
	}
	if set("age") {
		in.Age = f.age
	}
	if set("age-unit") {
		in.AgeUnit = registry.AgeUnit(strings.ToLower(strings.TrimSpace(f.ageUnit)))
	}
	if set("sex") {
		in.Sex = parseSex(f.sex)
	}
	if set("street") {
		in.Street = strings.TrimSpace(f.street)
	}
	if set("barangay") {
		in.Barangay = strings.TrimSpace(f.barangay)
	}
	if set("city") {
		in.City = strings.TrimSpace(f.city)
	}
	if set("province") {
		in.Province = strings.TrimSpace(f.province)
	}
	if set("contact") {
		in.ContactNumber = strings.TrimSpace(f.contact)
	}
	if set("service") {
		in.ServiceCodes = nil
		for _, code := range f.services {
			if code = strings.ToUpper(strings.TrimSpace(code)); code != "" {
				in.ServiceCodes = append(in.ServiceCodes, code)
			}
		}
	}
	if set("by") {
		in.RegisteredBy = strings.TrimSpace(f.by)
	}
}

func parseSex(s string) registry.Sex {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return registry.SexMale
	case "female", "f":
		return registry.SexFemale
	}
	return registry.Sex(s)
}

func registerCmd() *cobra.Command {
	var f patientFlags
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a patient and mint one identifier per selected service",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			var in registry.PatientInput
			f.apply(cmd, &in, true)

			if problems := registry.ValidateInput(in, a.Catalog); len(problems) > 0 {
				return invalid(cmd, "registration rejected", problems)
			}

			p, err := a.Records.CreatePatient(ctx, in)
			if p.ID == "" {
				return err
			}
			if perr := showPatient(cmd, a, p); perr != nil {
				return perr
			}
			return saved(cmd, err)
		}),
	}
	f.bind(cmd)
	return cmd
}

func patientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Look up, list and edit registered patients",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <record-id|identifier>",
		Short: "Show one patient",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			p, err := findPatient(a, args[0])
			if err != nil {
				return err
			}
			return showPatient(cmd, a, p)
		}),
	})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List patients in registration order",
		Args:  cobra.NoArgs,
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			service, _ := cmd.Flags().GetString("service")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			patients := a.Records.Patients()
			if service != "" {
				patients = a.Records.FilterByService(strings.ToUpper(service))
			}
			page := pagination.Page(patients, pagination.New(limit, offset))

			if jsonOutput(cmd) {
				return printJSON(cmd, page)
			}
			printPatientTable(cmd, page.Data)
			if page.Total > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d-%d of %d", page.Offset+1, page.Offset+len(page.Data), page.Total)
				if page.HasMore {
					fmt.Fprintf(cmd.OutOrStdout(), " (next: --offset %d)", pagination.Params{Limit: page.Limit, Offset: page.Offset}.NextOffset())
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		}),
	}
	listCmd.Flags().String("service", "", "Only patients who selected this service code")
	listCmd.Flags().Int("limit", pagination.DefaultLimit, "Maximum patients per page")
	listCmd.Flags().Int("offset", 0, "Patients to skip")
	cmd.AddCommand(listCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "search <query>",
		Short: "Search by name or identifier (case-insensitive substring)",
		Args:  cobra.MaximumNArgs(1),
		RunE: withApp(func(_ context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			var query string
			if len(args) == 1 {
				query = args[0]
			}
			found := a.Records.SearchPatients(query)
			if jsonOutput(cmd) {
				return printJSON(cmd, found)
			}
			printPatientTable(cmd, found)
			return nil
		}),
	})

	var uf patientFlags
	updateCmd := &cobra.Command{
		Use:   "update <record-id>",
		Short: "Edit a patient; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			existing, ok := a.Records.PatientByID(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", registry.ErrPatientNotFound, args[0])
			}
			in := existing.Input()
			uf.apply(cmd, &in, false)

			if problems := registry.ValidateInput(in, a.Catalog); len(problems) > 0 {
				return invalid(cmd, "update rejected", problems)
			}

			p, err := a.Records.UpdatePatient(ctx, existing.ID, in)
			if p.ID == "" {
				return err
			}
			if perr := showPatient(cmd, a, p); perr != nil {
				return perr
			}
			return saved(cmd, err)
		}),
	}
	uf.bind(updateCmd)
	cmd.AddCommand(updateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete a patient; recorded vitals are kept",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, args []string) error {
			if err := a.Records.DeletePatient(ctx, args[0]); err != nil {
				return saved(cmd, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		}),
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every patient (counters are kept)",
		Args:  cobra.NoArgs,
		RunE: withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to clear patients without --yes")
			}
			if err := a.Records.ClearPatients(ctx); err != nil {
				return saved(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All patients cleared")
			return nil
		}),
	}
	clearCmd.Flags().Bool("yes", false, "Confirm")
	cmd.AddCommand(clearCmd)

	return cmd
}

// findPatient resolves a record id or, failing that, a minted identifier.
func findPatient(a *app.App, ref string) (registry.Patient, error) {
	if p, ok := a.Records.PatientByID(ref); ok {
		return p, nil
	}
	if p, ok := a.Records.PatientByIdentifier(patientid.Normalize(ref)); ok {
		return p, nil
	}
	return registry.Patient{}, fmt.Errorf("%w: %s", registry.ErrPatientNotFound, ref)
}

func showPatient(cmd *cobra.Command, a *app.App, p registry.Patient) error {
	if jsonOutput(cmd) {
		return printJSON(cmd, p)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-13s %s\n", "Record:", p.ID)
	fmt.Fprintf(out, "%-13s %s\n", "Name:", p.FullName())
	fmt.Fprintf(out, "%-13s %s / %s\n", "Age/Sex:", rx.Age(p.Age, string(p.AgeUnit)), p.Sex)
	fmt.Fprintf(out, "%-13s %s\n", "Address:", rx.Address(p.Street, p.Barangay, p.City, p.Province))
	if p.ContactNumber != "" {
		fmt.Fprintf(out, "%-13s %s\n", "Contact:", rx.PhoneNumber(p.ContactNumber))
	}
	fmt.Fprintf(out, "%-13s %s\n", "Registered:", rx.DateTime(p.RegistrationDate))
	if p.RegisteredBy != "" {
		fmt.Fprintf(out, "%-13s %s\n", "By:", p.RegisteredBy)
	}
	fmt.Fprintln(out, "Identifiers:")
	for i, pid := range p.PatientIDs {
		var code string
		if i < len(p.ServiceCodes) {
			code = p.ServiceCodes[i]
		}
		fmt.Fprintf(out, "  %-12s %s\n", pid, a.Catalog.DisplayName(code))
	}
	return nil
}

func printPatientTable(cmd *cobra.Command, patients []registry.Patient) {
	out := cmd.OutOrStdout()
	if len(patients) == 0 {
		fmt.Fprintln(out, "No patients found.")
		return
	}
	fmt.Fprintf(out, "%-36s %-30s %s\n", "RECORD", "NAME", "IDENTIFIERS")
	for _, p := range patients {
		fmt.Fprintf(out, "%-36s %-30s %s\n", p.ID, p.FullName(), strings.Join(p.PatientIDs, ", "))
	}
}
