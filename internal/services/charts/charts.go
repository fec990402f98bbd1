package charts

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"MyPay/internal/domain/models"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const chartHeight = "400px"

var trendColors = []string{"#1f77b4", "#ff7f0e", "#2ca02c"}

// viridis stops, low to high
var marketColors = []string{
	"#440154", "#482878", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// Renderer is satisfied by every go-echarts chart.
type Renderer interface {
	Render(w io.Writer) error
}

// Render returns the chart as a standalone HTML page.
func Render(c Renderer) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Experience plots INR salary over the experience sweep and pins the
// submitted years.
func Experience(points []models.SweepPoint, years int) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Salary vs Experience", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Salary vs Experience (Current Job Rate)"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Years of Experience"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Salary (INR)"}),
	)

	x := make([]string, 0, len(points))
	data := make([]opts.LineData, 0, len(points))
	for _, p := range points {
		x = append(x, strconv.Itoa(int(p.X)))
		d := opts.LineData{Value: round2(p.INR), SymbolSize: 8}
		if int(p.X) == years {
			d.Name = "Your Prediction"
			d.Symbol = "pin"
			d.SymbolSize = 24
		}
		data = append(data, d)
	}

	line.SetXAxis(x).AddSeries("Predicted Salary (INR)", data,
		charts.WithLineStyleOpts(opts.LineStyle{Color: trendColors[0], Width: 3}),
	)
	return line
}

// Market plots INR salary for each job rate and marks the submitted one.
func Market(points []models.SweepPoint, years int, jobRate float64) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Market Analysis", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Salary by Job Rate (Experience: %d years)", years)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Job Rate"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Salary (INR)"}),
	)

	x := make([]string, 0, len(points))
	data := make([]opts.BarData, 0, len(points))
	for i, p := range points {
		x = append(x, strconv.Itoa(int(p.X)))
		data = append(data, opts.BarData{
			Value:     round2(p.INR),
			ItemStyle: &opts.ItemStyle{Color: marketColors[i%len(marketColors)]},
		})
	}

	bar.SetXAxis(x).AddSeries("Salary (INR)", data,
		charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{
			Name:  MarkLabel(jobRate),
			XAxis: MarkPosition(jobRate),
		}),
	)
	return bar
}

// MarkPosition maps a job rate onto the category axis, where rates 1..10 sit
// at indexes 0..9. Rates below 1 are pinned to the first bar.
func MarkPosition(jobRate float64) float64 {
	if jobRate < 1 {
		return 0
	}
	return jobRate - 1
}

// MarkLabel names the mark line with the submitted rate, flagging rates drawn
// at the first bar.
func MarkLabel(jobRate float64) string {
	r := strconv.FormatFloat(jobRate, 'f', -1, 64)
	if jobRate < 1 {
		return "Your Job Rate (" + r + ", shown at 1)"
	}
	return "Your Job Rate (" + r + ")"
}

// Trends plots the illustrative series shown before any submission.
func Trends(series []models.TrendSeries) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Sample Salary Trends", Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: "Sample Salary Trends by Experience and Job Rate"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Years of Experience"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Salary (INR)"}),
	)
	if len(series) == 0 {
		return line
	}

	x := make([]string, 0, len(series[0].Years))
	for _, y := range series[0].Years {
		x = append(x, strconv.Itoa(y))
	}
	line.SetXAxis(x)

	for i, s := range series {
		data := make([]opts.LineData, 0, len(s.INR))
		for _, v := range s.INR {
			data = append(data, opts.LineData{Value: round2(v)})
		}
		line.AddSeries(fmt.Sprintf("Job Rate %d", s.JobRate), data,
			charts.WithLineStyleOpts(opts.LineStyle{Color: trendColors[i%len(trendColors)], Width: 2}),
		)
	}
	return line
}

func round2(v float64) float64 {
	f, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	return f
}
