package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"yesNo": yesNo,
	"f2":    func(v float64) string { return fmt.Sprintf("%.2f", v) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 24px; }
table { border-collapse: collapse; margin-bottom: 24px; }
th, td { border: 1px solid #999; padding: 4px 8px; text-align: right; }
th { background: #e6e6e6; }
td.text { text-align: left; }
.warn { color: #c80000; }
iframe { border: none; width: 100%; height: 520px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<h2>Overall Summary</h2>
<table>
<tr><td class="text">Total Parts</td><td>{{.Report.Summary.TotalParts}}</td></tr>
<tr><td class="text">Total Boards</td><td>{{.Report.Summary.TotalBoards}}</td></tr>
<tr><td class="text">Total Area (mm²)</td><td>{{f2 .Report.Summary.TotalArea}}</td></tr>
<tr><td class="text">Total Waste (mm²)</td><td>{{f2 .Report.Summary.TotalWaste}}</td></tr>
<tr><td class="text">Overall Efficiency %</td><td>{{f2 .Report.Summary.OverallEfficiency}}</td></tr>
<tr><td class="text">Total Cost</td><td>{{f2 .Report.Summary.TotalCost}}</td></tr>
</table>
{{if .Report.Unplaced}}<h2 class="warn">Unplaced Parts</h2>
<table>
<tr><th>Name</th><th>Material</th><th>Count</th><th>Reason</th></tr>
{{range .Report.Unplaced}}<tr><td class="text">{{.Name}}</td><td class="text">{{.Material}}</td><td>{{.Count}}</td><td class="text">{{.Reason}}</td></tr>
{{end}}</table>
{{end}}<h2>Materials</h2>
<table>
<tr><th>Material</th><th>Stock</th><th>Boards</th><th>Parts</th><th>Efficiency %</th><th>Price/Sheet</th><th>Cost</th></tr>
{{range .Report.Materials}}<tr><td class="text">{{.Material}}{{if .Defaulted}} (default stock){{end}}</td><td>{{.StockWidth}} x {{.StockHeight}}</td><td>{{.Boards}}</td><td>{{.Parts}}</td><td>{{f2 .Efficiency}}</td><td>{{f2 .PricePerSheet}}</td><td>{{f2 .Cost}}</td></tr>
{{end}}</table>
<h2>Boards</h2>
<table>
<tr><th>Board#</th><th>Material</th><th>Stock Size</th><th>Parts</th><th>Used Area</th><th>Waste Area</th><th>Efficiency %</th></tr>
{{range .Report.Boards}}<tr><td>{{.Number}}</td><td class="text">{{.Material}}</td><td>{{.StockSize}}</td><td>{{.PartsCount}}</td><td>{{f2 .UsedArea}}</td><td>{{f2 .WasteArea}}</td><td>{{f2 .Efficiency}}</td></tr>
{{end}}</table>
{{if .Charts}}<h2>Charts</h2>
<iframe srcdoc="{{.Charts}}"></iframe>
{{end}}<h2>Parts List</h2>
<table>
<tr><th>Part#</th><th>Name</th><th>Width</th><th>Height</th><th>Thickness</th><th>Material</th><th>Board#</th><th>X</th><th>Y</th><th>Rotated</th><th>Grain</th></tr>
{{range .Report.Parts}}<tr><td class="text">{{.Number}}</td><td class="text">{{.Name}}</td><td>{{.Width}}</td><td>{{.Height}}</td><td>{{.Thickness}}</td><td class="text">{{.Material}}</td><td>{{.Board}}</td><td>{{.X}}</td><td>{{.Y}}</td><td>{{yesNo .Rotated}}</td><td class="text">{{.Grain}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// WriteHTML renders the report as a standalone HTML page. When the result
// has boards, a per-board efficiency chart and a per-material used area
// chart are embedded.
func WriteHTML(w io.Writer, title string, rep Report) error {
	var chartHTML string
	if len(rep.Boards) > 0 {
		var buf bytes.Buffer
		if err := renderCharts(&buf, rep); err != nil {
			return fmt.Errorf("failed to render charts: %w", err)
		}
		chartHTML = buf.String()
	}
	return htmlTemplate.Execute(w, struct {
		Title  string
		Report Report
		Charts string
	}{Title: title, Report: rep, Charts: chartHTML})
}

// ExportHTML writes the HTML report to path.
func ExportHTML(path, title string, rep Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create HTML file: %w", err)
	}
	if err := WriteHTML(f, title, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func renderCharts(w io.Writer, rep Report) error {
	labels := make([]string, 0, len(rep.Boards))
	efficiency := make([]opts.BarData, 0, len(rep.Boards))
	for _, b := range rep.Boards {
		labels = append(labels, fmt.Sprintf("#%d %s", b.Number, b.Material))
		efficiency = append(efficiency, opts.BarData{Value: b.Efficiency})
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "board_efficiency"}),
		charts.WithTitleOpts(opts.Title{Title: "Board efficiency %"}),
	)
	bar.SetXAxis(labels).AddSeries("Efficiency", efficiency)

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{ChartID: "material_area"}),
		charts.WithTitleOpts(opts.Title{Title: "Used area by material (mm²)"}),
	)
	slices := make([]opts.PieData, 0, len(rep.Materials))
	for _, m := range rep.Materials {
		if m.UsedArea > 0 {
			slices = append(slices, opts.PieData{Name: m.Material, Value: m.UsedArea})
		}
	}
	pie.AddSeries("Used area", slices)

	page := components.NewPage()
	page.AddCharts(bar, pie)
	return page.Render(w)
}
