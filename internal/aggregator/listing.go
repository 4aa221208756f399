package aggregator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"

	"github.com/ubfleet/ubfleet/internal/pkgid"
	"github.com/ubfleet/ubfleet/internal/storage"
)

// ubListingTmpl renders the aggregated list of packages flagged UB, one
// row per package with its causes.
var ubListingTmpl = template.Must(template.New("ub").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Tool}} UB listing</title>
<style>body{background:#111;color:#eee;font-family:monospace}
a{color:#6cf}table{border-collapse:collapse}td{padding:2px 8px}</style>
</head><body>
<h1>{{.Tool}} — undefined behavior</h1>
<table>
{{range .Rows}}<tr><td><a href="/{{$.Tool}}/logs/{{.Name}}/{{.Version}}">{{.Name}} {{.Version}}</a></td><td>{{.Causes}}</td></tr>
{{end}}</table>
</body></html>
`))

// landingTmpl renders the top-level page: a search box whose client-side
// script redirects to a package's log using an embedded name -> versions
// map.
var landingTmpl = template.Must(template.New("landing").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Tool}}</title>
<style>body{background:#111;color:#eee;font-family:monospace}</style>
</head><body>
<h1>{{.Tool}}</h1>
<input id="q" placeholder="crate name" autofocus>
<script>
var packages = {{.PackagesJSON}};
document.getElementById("q").addEventListener("keydown", function(e) {
  if (e.key !== "Enter") return;
  var name = e.target.value.trim();
  var versions = packages[name];
  if (!versions || versions.length === 0) return;
  window.location = "/{{.Tool}}/logs/" + name + "/" + versions[versions.length - 1];
});
</script>
</body></html>
`))

// errorPage is the static page served in place of a log that does not
// exist, styled like a rendered log so the failure reads as compiler
// output.
const errorPage = `<!DOCTYPE html><html><head><style>
body {
    background: #111;
    color: #eee;
}
pre {
    word-wrap: break-word;
    white-space: pre-wrap;
    font-size: 14px;
}
</style><title>oops</title></head>
<body><pre><span style='color:#f55; font-weight:bold'>error</span>: No such file or directory (http error 404)

<span style='color:#f55; font-weight:bold'>error</span>: aborting due to previous error</pre></body></html>
`

// publishErrorPage uploads the static error page.
func (a *Aggregator) publishErrorPage(ctx context.Context) error {
	return a.store.Upload(ctx, storage.ErrorPageKey(a.tool), []byte(errorPage), "text/html; charset=utf-8")
}

type ubRow struct {
	Name    string
	Version string
	Causes  string
}

// publishUBListing ranks and dedups results, then
// renders and uploads the UB listing page.
func (a *Aggregator) publishUBListing(ctx context.Context, results []Result) error {
	ranked := rankResults(results)

	rows := make([]ubRow, 0, len(ranked))
	for _, r := range ranked {
		if r.Status.Kind != pkgid.UB {
			continue
		}
		rows = append(rows, ubRow{
			Name:    r.Package.Name,
			Version: r.Package.Version.String(),
			Causes:  causesString(r.Status.Causes),
		})
	}

	var buf bytes.Buffer
	if err := ubListingTmpl.Execute(&buf, struct {
		Tool string
		Rows []ubRow
	}{Tool: a.tool, Rows: rows}); err != nil {
		return fmt.Errorf("render UB listing template: %w", err)
	}

	return a.store.Upload(ctx, storage.UBListingKey(a.tool), buf.Bytes(), "text/html; charset=utf-8")
}

// publishLanding builds the {name: [versions...]} map over every rendered
// package (not just UB ones) and uploads the landing page.
func (a *Aggregator) publishLanding(ctx context.Context, results []Result) error {
	byName := make(map[string][]string)
	for _, r := range results {
		name := r.Package.Name
		byName[name] = append(byName[name], r.Package.Version.String())
	}
	for name := range byName {
		sort.Strings(byName[name])
	}

	packagesJSON, err := json.Marshal(byName)
	if err != nil {
		return fmt.Errorf("marshal packages map: %w", err)
	}

	var buf bytes.Buffer
	if err := landingTmpl.Execute(&buf, struct {
		Tool         string
		PackagesJSON template.JS
	}{Tool: a.tool, PackagesJSON: template.JS(packagesJSON)}); err != nil {
		return fmt.Errorf("render landing template: %w", err)
	}

	return a.store.Upload(ctx, storage.LandingKey(a.tool), buf.Bytes(), "text/html; charset=utf-8")
}

// rankResults sorts by (downloads desc, version desc) and dedups by name
// keeping the highest version, reusing internal/pkgid's pure helpers.
func rankResults(results []Result) []Result {
	pkgs := make([]pkgid.Package, len(results))
	byKey := make(map[pkgid.Key]Result, len(results))
	for i, r := range results {
		pkgs[i] = r.Package
		byKey[r.Package.Key()] = r
	}

	pkgid.SortByRank(pkgs)
	deduped := pkgid.DedupByNameKeepingHighestVersion(pkgs)

	out := make([]Result, 0, len(deduped))
	for _, p := range deduped {
		out = append(out, byKey[p.Key()])
	}
	return out
}

func causesString(causes []pkgid.Cause) string {
	var b bytes.Buffer
	for i, c := range causes {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(c.Kind)
		if c.SourceCrate != "" {
			b.WriteString(" (")
			b.WriteString(c.SourceCrate)
			b.WriteString(")")
		}
	}
	return b.String()
}
