package commands

import (
	"fmt"
	"io"
	"path"

	"github.com/gookit/color"
	"go.trai.ch/kiln/internal/app"
	"go.trai.ch/kiln/internal/core/domain"
)

func printResults(w io.Writer, results []domain.PackageResult) {
	for _, res := range results {
		status := color.Green.Sprint("built ")
		if res.Cached {
			status = color.Gray.Sprint("cached")
		}
		_, _ = fmt.Fprintf(w, "%s %s %s\n", status, color.Bold.Sprintf("%-24s", res.Platform), res.Record.Root)
		if res.Record.Archive != "" {
			_, _ = fmt.Fprintf(w, "%s %s\n", color.Gray.Sprintf("%-31s", ""), res.Record.Archive)
		}
	}
}

func printPlan(w io.Writer, plan domain.PackagePlan) {
	_, _ = fmt.Fprintf(w, "%s\n", color.Bold.Sprint(plan.Platform))
	_, _ = fmt.Fprintf(w, "  identity     %s (%s)\n", color.Cyan.Sprint(plan.Identity), plan.Identity.Key())
	_, _ = fmt.Fprintf(w, "  fingerprint  %s\n", plan.Fingerprint)
	_, _ = fmt.Fprintf(w, "  package      %s\n", plan.Layout.Root)
	_, _ = fmt.Fprintf(w, "  build        %s\n", plan.BuildDir)

	_, _ = fmt.Fprintln(w, "  options")
	for _, name := range plan.Options.Names() {
		_, _ = fmt.Fprintf(w, "    %s = %s\n", color.Cyan.Sprint(name), plan.Options[name])
	}

	_, _ = fmt.Fprintln(w, "  toolchain")
	if plan.Toolchain.Len() == 0 {
		_, _ = fmt.Fprintf(w, "    %s\n", color.Gray.Sprint("(build system defaults)"))
	}
	for v := range plan.Toolchain.Variables() {
		_, _ = fmt.Fprintf(w, "    %s = %s\n", color.Cyan.Sprint(v.Name), color.Yellow.Sprint(v.Value))
	}

	_, _ = fmt.Fprintln(w, "  layout")
	for _, folder := range plan.Layout.Folders {
		_, _ = fmt.Fprintf(w, "    %s/\n", folder)
	}
	for _, h := range plan.Layout.Headers {
		_, _ = fmt.Fprintf(w, "    %s <- %s\n", path.Join(h.Dest, "*"+h.Ext), color.Gray.Sprint(h.Source))
	}
	if plan.Layout.ToolArchive != "" {
		_, _ = fmt.Fprintf(w, "    %s <- %s\n", domain.BinDir+"/", color.Gray.Sprint(plan.Layout.ToolArchive))
	}
}

func printIdentities(w io.Writer, reports []app.IdentityReport) {
	for _, r := range reports {
		_, _ = fmt.Fprintf(w, "%s -> %s %s\n",
			color.Bold.Sprintf("%-24s", r.Platform),
			color.Cyan.Sprintf("%-20s", r.Identity),
			r.Identity.Key(),
		)
	}
}

func printRecords(w io.Writer, records []domain.PackageRecord) {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, color.Gray.Sprint("no packages recorded"))
		return
	}
	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s %s %s %s\n",
			color.Bold.Sprintf("%-24s", r.Platform),
			color.Cyan.Sprintf("%-20s", r.Identity),
			color.Yellow.Sprint(r.Timestamp.Format("2006-01-02 15:04:05")),
			r.Root,
		)
	}
}
