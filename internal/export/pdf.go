/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions controls the proof sheet layout. Units are points.
// Built-in Helvetica keeps the text vector without font embedding.
type PDFOptions struct {
	// PageWidth bounds the sheet; the image box is scaled to fit it.
	// Zero selects a 500pt page.
	PageWidth float64
	Title     string
}

// WriteProofPDF renders a one-page geometry proof for a crop document: the
// effective image bounds with the crop rectangle drawn inside, plus the
// numeric summary. It is a review artifact, not a print master.
func WriteProofPDF(outPath string, doc Document, opt PDFOptions) error {
	imgW := doc.Source.Width
	imgH := doc.Source.Height
	if doc.Rotation.Base.Swapped() {
		imgW, imgH = imgH, imgW
	}
	if imgW <= 0 || imgH <= 0 {
		return fmt.Errorf("degenerate source dimensions %vx%v", imgW, imgH)
	}

	pageW := opt.PageWidth
	if pageW <= 0 {
		pageW = 500
	}
	const margin = 36.0
	const footer = 90.0
	scale := (pageW - 2*margin) / imgW
	pageH := imgH*scale + 2*margin + footer

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	title := opt.Title
	if title == "" {
		title = "gocrop proof sheet"
	}
	pdf.SetTitle(title, false)
	pdf.SetFont("Helvetica", "", 10)
	pdf.AddPage()

	// Image bounds.
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(1)
	pdf.Rect(margin, margin, imgW*scale, imgH*scale, "D")

	// Crop rectangle, hairline red like guide strokes.
	pdf.SetDrawColor(255, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Rect(
		margin+doc.Crop.X*scale,
		margin+doc.Crop.Y*scale,
		doc.Crop.Width*scale,
		doc.Crop.Height*scale,
		"D",
	)

	// Numeric summary under the diagram.
	pdf.SetTextColor(0, 0, 0)
	y := margin + imgH*scale + 18
	lines := []string{
		fmt.Sprintf("source: %.0f x %.0f px", doc.Source.Width, doc.Source.Height),
		fmt.Sprintf("crop: x=%.1f y=%.1f w=%.1f h=%.1f", doc.Crop.X, doc.Crop.Y, doc.Crop.Width, doc.Crop.Height),
		fmt.Sprintf("rotation: %.1f deg, base %d deg", doc.Rotation.Rotation, int(doc.Rotation.Base)),
		fmt.Sprintf("created: %s", doc.CreatedAt.Format("2006-01-02 15:04:05 UTC")),
	}
	for _, s := range lines {
		pdf.Text(margin, y, s)
		y += 14
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write proof pdf: %w", err)
	}
	return nil
}
