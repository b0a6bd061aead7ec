package report

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/factcheck-ai/factcheck/src/factcheck/verdict"
)

// sanitizePDFText converts characters outside the core fonts' range to ASCII
// equivalents so gofpdf renders them cleanly.
func sanitizePDFText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch r {
		case '–':
			b.WriteString("-")
		case '—':
			b.WriteString("--")
		case '‘', '’':
			b.WriteString("'")
		case '“', '”':
			b.WriteString("\"")
		case '…':
			b.WriteString("...")
		case ' ':
			b.WriteString(" ")
		case '​', '‌', '‍', '﻿':
		default:
			switch {
			case r < 128:
				b.WriteRune(r)
			case unicode.IsSpace(r):
				b.WriteString(" ")
			default:
				b.WriteString("?")
			}
		}
	}
	return b.String()
}

func verdictColors(label string) (fill [3]int, text [3]int) {
	switch label {
	case verdict.LikelyTrue:
		return [3]int{220, 255, 220}, [3]int{0, 150, 0}
	case verdict.LikelyFalse:
		return [3]int{255, 220, 220}, [3]int{200, 0, 0}
	default:
		return [3]int{255, 255, 220}, [3]int{200, 150, 0}
	}
}

// RenderPDF writes a one-to-two page PDF report for a finished check.
func RenderPDF(w io.Writer, claim string, res verdict.Result, docs []verdict.EvidenceDoc, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 20, 15)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 16)
		pdf.SetTextColor(59, 130, 246)
		pdf.CellFormat(0, 10, "FactCheckAI", "", 0, "C", false, 0, "")
		pdf.Ln(12)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated by FactCheckAI - Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 15, "Fact-Check Report", "", 0, "L", false, 0, "")
	pdf.Ln(18)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Claim:", "", 0, "L", false, 0, "")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 6, sanitizePDFText(claim), "", "", false)
	pdf.Ln(6)

	drawVerdictBox(pdf, res)
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, "Key Findings", "", 0, "L", false, 0, "")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for i, point := range res.Rationale {
		if i == 3 {
			break
		}
		pdf.MultiCell(0, 5, sanitizePDFText("- "+point), "", "", false)
		pdf.Ln(1)
	}
	if len(res.Rationale) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 6, "No rationale available.", "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Sources Analyzed (%d)", len(docs)), "", 0, "L", false, 0, "")
	pdf.Ln(8)
	for i, doc := range docs {
		name := doc.Source
		if name == "" {
			name = doc.URL
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.MultiCell(0, 5, sanitizePDFText(fmt.Sprintf("[%d] %s (credibility %.2f)", i+1, name, doc.Credibility)), "", "", false)
		pdf.SetFont("Arial", "", 8)
		pdf.SetTextColor(59, 130, 246)
		pdf.MultiCell(0, 4, sanitizePDFText(doc.URL), "", "", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(128, 128, 128)
	method := res.Engine
	if res.Model != "" {
		method = fmt.Sprintf("%s (%s)", res.Engine, res.Model)
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Method: %s", sanitizePDFText(method)), "", 0, "L", false, 0, "")
	pdf.Ln(5)
	pdf.CellFormat(0, 6, fmt.Sprintf("Analysis Date: %s", now.Format("January 2, 2006 at 3:04 PM")), "", 0, "L", false, 0, "")

	return pdf.Output(w)
}

func drawVerdictBox(pdf *gofpdf.Fpdf, res verdict.Result) {
	fill, text := verdictColors(res.Label)
	x, y := 15.0, pdf.GetY()
	w, h := 180.0, 18.0

	pdf.SetFillColor(fill[0], fill[1], fill[2])
	pdf.Rect(x, y, w, h, "F")
	pdf.SetDrawColor(text[0], text[1], text[2])
	pdf.SetLineWidth(0.5)
	pdf.Rect(x, y, w, h, "D")

	pdf.SetXY(x+4, y+3)
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(text[0], text[1], text[2])
	pdf.CellFormat(w-8, 6, sanitizePDFText(res.Label), "", 0, "L", false, 0, "")
	pdf.SetXY(x+4, y+10)
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(w-8, 5, fmt.Sprintf("Confidence: %.0f%%", res.Confidence*100), "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(x, y+h)
}
