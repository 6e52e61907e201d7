package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// PDFOptions configures PDF generation
type PDFOptions struct {
	PageSize       string     `json:"page_size"`   // A4, Letter, Legal
	Orientation    string     `json:"orientation"` // portrait, landscape
	Title          string     `json:"title"`
	DateFormat     string     `json:"date_format"`
	IncludePageNum bool       `json:"include_page_num"`
	HeaderColor    PDFColor   `json:"header_color"`
	AlternateRows  bool       `json:"alternate_rows"`
	AlternateColor PDFColor   `json:"alternate_color"`
	FontFamily     string     `json:"font_family"`
	FontSize       float64    `json:"font_size"`
	HeaderFontSize float64    `json:"header_font_size"`
	TitleFontSize  float64    `json:"title_font_size"`
	Margins        PDFMargins `json:"margins"`
}

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// PDFMargins represents page margins
type PDFMargins struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// DefaultPDFOptions returns default PDF options
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageSize:       "A4",
		Orientation:    "portrait",
		Title:          "Diagnostic carbone du territoire",
		DateFormat:     "02/01/2006",
		IncludePageNum: true,
		HeaderColor:    PDFColor{R: 68, G: 114, B: 196},
		AlternateRows:  true,
		AlternateColor: PDFColor{R: 242, G: 242, B: 242},
		FontFamily:     "Arial",
		FontSize:       10,
		HeaderFontSize: 10,
		TitleFontSize:  16,
		Margins: PDFMargins{
			Left:   15,
			Right:  15,
			Top:    20,
			Bottom: 20,
		},
	}
}

// PDFGenerator renders a territory dashboard as a PDF summary
type PDFGenerator struct {
	pdf     *gofpdf.Fpdf
	options PDFOptions
	tr      func(string) string
}

// NewPDFGenerator creates a new PDF generator
func NewPDFGenerator(options PDFOptions) *PDFGenerator {
	orientation := "P"
	if options.Orientation == "landscape" {
		orientation = "L"
	}

	pdf := gofpdf.New(orientation, "mm", options.PageSize, "")
	pdf.SetMargins(options.Margins.Left, options.Margins.Top, options.Margins.Right)
	pdf.SetAutoPageBreak(true, options.Margins.Bottom)

	g := &PDFGenerator{
		pdf:     pdf,
		options: options,
		// core fonts are cp1252 encoded
		tr: pdf.UnicodeTranslatorFromDescriptor(""),
	}
	g.setFooter()
	return g
}

// GenerateDashboard renders the description, the stocks table and the flux table
func (g *PDFGenerator) GenerateDashboard(d Dashboard) error {
	g.pdf.AddPage()

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.TitleFontSize)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 10, g.tr(g.options.Title), "", 1, "C", false, 0, "")

	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize+2)
	g.pdf.SetTextColor(100, 100, 100)
	g.pdf.CellFormat(0, 8, g.tr(fmt.Sprintf("%s (%s)", d.Name, d.Code)), "", 1, "C", false, 0, "")

	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize-1)
	g.pdf.SetTextColor(128, 128, 128)
	g.pdf.CellFormat(0, 6, g.tr("Exporté le "+d.ExportedAt.Format(g.options.DateFormat)), "", 1, "R", false, 0, "")

	summary := [][2]string{{"Communes", fmt.Sprint(len(d.Communes))}}
	if d.Stocks != nil {
		summary = append(summary, [2]string{"Stock total (tC)", formatNumber(d.Stocks.Total)})
	}
	if d.Flux != nil {
		summary = append(summary, [2]string{"Flux total (tCO2e / an)", formatNumber(d.Flux.Total)})
	}
	g.addSummarySection("Synthèse", summary)

	if rows := d.StockRows(); rows != nil {
		g.addSection("Stocks de carbone")
		g.addTable(StockColumns, rows)
	}
	if rows := d.FluxRows(); rows != nil {
		g.addSection("Flux de carbone")
		g.addTable(FluxColumns, rows)
	}

	return g.pdf.Error()
}

// addSection adds a section title
func (g *PDFGenerator) addSection(title string) {
	g.pdf.Ln(8)
	g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize+2)
	g.pdf.SetTextColor(0, 0, 0)
	g.pdf.CellFormat(0, 8, g.tr(title), "", 1, "L", false, 0, "")
}

// addSummarySection adds labelled values in order
func (g *PDFGenerator) addSummarySection(title string, items [][2]string) {
	g.addSection(title)
	for _, item := range items {
		g.pdf.SetFont(g.options.FontFamily, "B", g.options.FontSize)
		g.pdf.CellFormat(60, 6, g.tr(item[0]+" :"), "", 0, "L", false, 0, "")
		g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
		g.pdf.CellFormat(0, 6, g.tr(item[1]), "", 1, "L", false, 0, "")
	}
}

// addTable adds a header row and the data rows, with columns sharing the page width
func (g *PDFGenerator) addTable(columns []Column, rows []map[string]interface{}) {
	pageWidth, _ := g.pdf.GetPageSize()
	available := pageWidth - g.options.Margins.Left - g.options.Margins.Right
	first := available * 0.35
	other := (available - first) / float64(len(columns)-1)
	width := func(i int) float64 {
		if i == 0 {
			return first
		}
		return other
	}

	g.pdf.SetFont(g.options.FontFamily, "B", g.options.HeaderFontSize)
	g.pdf.SetFillColor(g.options.HeaderColor.R, g.options.HeaderColor.G, g.options.HeaderColor.B)
	g.pdf.SetTextColor(255, 255, 255)
	for i, col := range columns {
		g.pdf.CellFormat(width(i), 8, g.tr(col.Label), "1", 0, "C", true, 0, "")
	}
	g.pdf.Ln(-1)

	g.pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	g.pdf.SetTextColor(0, 0, 0)
	for i, row := range rows {
		// Alternate row colors
		if g.options.AlternateRows && i%2 == 1 {
			g.pdf.SetFillColor(g.options.AlternateColor.R, g.options.AlternateColor.G, g.options.AlternateColor.B)
		} else {
			g.pdf.SetFillColor(255, 255, 255)
		}
		for j, col := range columns {
			align := "R"
			if j == 0 {
				align = "L"
			}
			g.pdf.CellFormat(width(j), 7, g.tr(g.formatValue(row[col.Key])), "1", 0, align, true, 0, "")
		}
		g.pdf.Ln(-1)
	}
}

// formatValue formats a value for display
func (g *PDFGenerator) formatValue(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case float64:
		return formatNumber(v)
	case bool:
		if v {
			return "Oui"
		}
		return "Non"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// setFooter sets up the page footer
func (g *PDFGenerator) setFooter() {
	g.pdf.SetFooterFunc(func() {
		if !g.options.IncludePageNum {
			return
		}
		g.pdf.SetY(-15)
		g.pdf.SetFont(g.options.FontFamily, "", 8)
		g.pdf.SetTextColor(128, 128, 128)
		g.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", g.pdf.PageNo()), "", 0, "C", false, 0, "")
	})
}

// Write writes the PDF to a writer
func (g *PDFGenerator) Write(w io.Writer) error {
	return g.pdf.Output(w)
}

// OutputToBytes returns the PDF as bytes
func (g *PDFGenerator) OutputToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := g.pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
