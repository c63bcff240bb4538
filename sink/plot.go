// Copyright (c) 2025–2026 The aq6315 developers. All rights reserved.
// Project site: https://github.com/osalab/aq6315
// Use of this source code is governed by a MIT-style license that
// can be found in the LICENSE.txt file for the project.

package sink

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/osalab/aq6315"
)

// savePlot renders level vs. wavelength as a line plot. The output format
// follows the file extension.
func savePlot(path string, pts []aq6315.Point) error {
	xys := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		xys[i].X = pt.Wavelength
		xys[i].Y = pt.Level
	}

	p := plot.New()
	p.Title.Text = "OSA Spectrum"
	p.X.Label.Text = "Wavelength (nm)"
	p.Y.Label.Text = "Level (μW/nm)"
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.2)
	p.Add(line)

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}
