package duration

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SurvCurvePlotter is used to plot one or more survival curves.
type SurvCurvePlotter struct {
	plt *plot.Plot

	labels []string

	lines []*plotter.Line

	// Confidence band lines, drawn but not added to the legend
	bands []*plotter.Line

	width  vg.Length
	height vg.Length
}

// NewSurvCurvePlotter returns a default SurvCurvePlotter.
func NewSurvCurvePlotter() *SurvCurvePlotter {

	return &SurvCurvePlotter{
		plt:    plot.New(),
		width:  4,
		height: 4,
	}
}

// Width sets the width of the plot in inches.
func (sp *SurvCurvePlotter) Width(w float64) *SurvCurvePlotter {
	sp.width = vg.Length(w)
	return sp
}

// Height sets the height of the plot in inches.
func (sp *SurvCurvePlotter) Height(h float64) *SurvCurvePlotter {
	sp.height = vg.Length(h)
	return sp
}

// steps returns the points of a right-continuous step function that is 1
// at time zero.
func steps(ti, pr []float64, start float64) plotter.XYs {

	pts := make(plotter.XYs, 2*len(ti)+1)

	j := 0
	pts[j].X = 0
	pts[j].Y = start
	j++

	for i := range ti {
		pts[j].X = ti[i]
		pts[j].Y = pts[j-1].Y
		j++
		pts[j].X = ti[i]
		pts[j].Y = pr[i]
		j++
	}

	return pts
}

// Add plots a survival curve with the given legend label.  If bands is
// true the confidence bounds are drawn as dashed lines.
func (sp *SurvCurvePlotter) Add(c *SurvCurve, label string, bands bool) error {

	col := plotutil.Color(len(sp.lines))

	line, err := plotter.NewLine(steps(c.Time(), c.Surv(), 1))
	if err != nil {
		return err
	}
	line.Color = col
	sp.lines = append(sp.lines, line)
	sp.labels = append(sp.labels, label)

	if !bands {
		return nil
	}

	for _, b := range [][]float64{c.Lower(), c.Upper()} {
		bl, err := plotter.NewLine(steps(c.Time(), b, 1))
		if err != nil {
			return err
		}
		bl.Color = col
		bl.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		sp.bands = append(sp.bands, bl)
	}

	return nil
}

// Plot constructs the plot.
func (sp *SurvCurvePlotter) Plot() *SurvCurvePlotter {

	sp.plt.Y.Min = 0
	sp.plt.Y.Max = 1

	sp.plt.X.Label.Text = "Time"
	sp.plt.Y.Label.Text = "Proportion alive"

	leg := plot.NewLegend()

	for i := range sp.lines {
		sp.plt.Add(sp.lines[i])
		leg.Add(sp.labels[i], sp.lines[i])
	}
	for _, b := range sp.bands {
		sp.plt.Add(b)
	}

	if len(sp.lines) > 1 {
		leg.Top = false
		leg.Left = true
		sp.plt.Legend = leg
	}

	return sp
}

// GetPlotStruct returns the plotting structure for this plot.
func (sp *SurvCurvePlotter) GetPlotStruct() *plot.Plot {
	return sp.plt
}

// Save writes the plot to the given file, the format is determined by the
// file extension.
func (sp *SurvCurvePlotter) Save(fname string) error {
	return sp.plt.Save(sp.width*vg.Inch, sp.height*vg.Inch, fname)
}
