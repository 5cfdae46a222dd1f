package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gookit/color"

	"runepkg/internal/app"
	"runepkg/internal/types"
)

func printBatchReport(w io.Writer, report types.BatchReport) {
	fmt.Fprintln(w)
	if len(report.Succeeded) > 0 {
		fmt.Fprintf(w, "%s %s\n", color.Green.Sprintf("Succeeded (%d):", len(report.Succeeded)), strings.Join(report.Succeeded, ", "))
	}
	if len(report.Failed) > 0 {
		fmt.Fprintln(w, color.Red.Sprintf("Failed (%d):", len(report.Failed)))
		for _, failure := range report.Failed {
			fmt.Fprintf(w, "  - %-24s %s\n", failure.Name, failure.Reason)
		}
	}
	if report.Total() == 0 {
		fmt.Fprintln(w, "Nothing to do.")
	}
}

func printUpdateSet(w io.Writer, set types.UpdateSet) {
	if set.Empty() {
		fmt.Fprintln(w, color.Green.Sprint("Everything is up to date."))
		return
	}
	for _, pkg := range set.External {
		fmt.Fprintf(w, "%s %s -> %s %s\n",
			color.Bold.Sprint(pkg.Record.Name), pkg.LocalVersion, color.Green.Sprint(pkg.Record.Version), color.Cyan.Sprint("(aur)"))
	}
	for _, update := range set.Repo {
		source := "repo"
		if update.Repository != "" {
			source = update.Repository
		}
		fmt.Fprintf(w, "%s %s -> %s %s\n",
			color.Bold.Sprint(update.Name), update.LocalVersion, color.Green.Sprint(update.RepoVersion), color.Cyan.Sprintf("(%s)", source))
	}
}

func printInstalled(w io.Writer, pkgs []types.InstalledPackage) {
	for _, pkg := range pkgs {
		line := color.Bold.Sprint(pkg.Name) + " " + pkg.Version
		switch pkg.Classification {
		case types.ClassificationOutdated:
			line += " " + color.Yellow.Sprintf("-> %s", pkg.RemoteVersion)
		case types.ClassificationOrphaned:
			line += " " + color.Gray.Sprint("[orphaned]")
		}
		fmt.Fprintln(w, line)
		if pkg.Description != "" {
			fmt.Fprintf(w, "    %s\n", pkg.Description)
		}
	}
}

func printSearchResults(w io.Writer, records []types.PackageRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No packages found.")
		return
	}
	for _, record := range records {
		line := fmt.Sprintf("%s %s (+%d %.2f)", color.Bold.Sprint("aur/"+record.Name), color.Green.Sprint(record.Version), record.Votes, record.Popularity)
		if record.IsOutOfDate() {
			line += " " + color.Red.Sprint("(Out-of-date)")
		}
		fmt.Fprintln(w, line)
		if record.Description != "" {
			fmt.Fprintf(w, "    %s\n", record.Description)
		}
	}
}

func printInfo(w io.Writer, result app.InfoResult) {
	for i, record := range result.Records {
		if i > 0 {
			fmt.Fprintln(w)
		}
		field := func(name string, value string) {
			if strings.TrimSpace(value) == "" {
				value = "None"
			}
			fmt.Fprintf(w, "%-16s: %s\n", name, value)
		}
		field("Name", record.Name)
		field("Package Base", record.Base())
		field("Version", record.Version)
		field("Description", record.Description)
		field("URL", record.URL)
		field("AUR URL", record.PackageURL(result.Host))
		field("Keywords", strings.Join(record.Keywords, " "))
		field("Licenses", strings.Join(record.License, " "))
		field("Depends On", strings.Join(record.Depends, " "))
		field("Make Deps", strings.Join(record.MakeDepends, " "))
		field("Optional Deps", strings.Join(record.OptDepends, " "))
		field("Conflicts With", strings.Join(record.Conflicts, " "))
		field("Maintainer", record.Maintainer)
		field("Votes", fmt.Sprint(record.Votes))
		field("Popularity", fmt.Sprintf("%.2f", record.Popularity))
		field("First Submitted", formatEpoch(record.FirstSubmitted))
		field("Last Modified", formatEpoch(record.LastModified))
		outOfDate := "No"
		if record.IsOutOfDate() {
			outOfDate = "Yes (" + formatEpoch(*record.OutOfDate) + ")"
		}
		field("Out-of-date", outOfDate)
	}
	for _, name := range result.Missing {
		fmt.Fprintln(w, color.Yellow.Sprintf("package %q was not found", name))
	}
}

func printDoctor(w io.Writer, result app.DoctorResult) {
	fmt.Fprintf(w, "build root: %s\n", result.BuildRoot)
	fmt.Fprintf(w, "aur url:    %s\n", result.AURURL)
	for _, tool := range result.MissingRequired {
		fmt.Fprintln(w, color.Red.Sprintf("missing required tool: %s", tool))
	}
	for _, tool := range result.MissingOptional {
		fmt.Fprintln(w, color.Yellow.Sprintf("missing optional tool: %s (version ordering will be approximate)", tool))
	}
	if result.Healthy() {
		fmt.Fprintln(w, color.Green.Sprint("all required tools found"))
	}
}

func formatEpoch(seconds int64) string {
	if seconds <= 0 {
		return ""
	}
	return time.Unix(seconds, 0).UTC().Format("2006-01-02 15:04 MST")
}
