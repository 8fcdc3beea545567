package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"crewdesk/internal/models"
)

// Generator renders order invoices; an interface so services can mock it.
type Generator interface {
	GenerateInvoice(data InvoiceData) (string, error)
}

type InvoiceData struct {
	OrderID      int
	CustomerName string
	Items        []InvoiceItem
	Total        float64
	CreatedAt    time.Time
	Filename     string // without path; derived from the order when empty
}

type InvoiceItem struct {
	Name  string
	Price float64
}

// InvoiceGenerator writes PDFs under RootDir using the core fonts, so no
// external TTF is needed.
type InvoiceGenerator struct {
	RootDir string
}

func NewInvoiceGenerator(rootDir string) *InvoiceGenerator {
	return &InvoiceGenerator{RootDir: filepath.Clean(rootDir)}
}

func (g *InvoiceGenerator) ensureTarget(filename string) (string, error) {
	if err := os.MkdirAll(g.RootDir, 0o755); err != nil {
		return "", fmt.Errorf("invoice dir: %w", err)
	}
	return filepath.Join(g.RootDir, filepath.Base(filename)), nil
}

func (g *InvoiceGenerator) GenerateInvoice(data InvoiceData) (string, error) {
	filename := data.Filename
	if filename == "" {
		filename = fmt.Sprintf("invoice_order_%d.pdf", data.OrderID)
	}
	absPath, err := g.ensureTarget(filename)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Invoice #%d", data.OrderID), false)
	pdf.SetAuthor("crewdesk", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "INVOICE", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	sub := fmt.Sprintf("No. CD-%06d  of  %s", data.OrderID, data.CreatedAt.Format("02.01.2006"))
	pdf.CellFormat(0, 7, sub, "", 1, "C", false, 0, "")
	g.hr(pdf)
	pdf.Ln(3)

	g.kvLine(pdf, "Billed to", data.CustomerName)
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 7, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Price", "B", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	for _, item := range data.Items {
		pdf.CellFormat(130, 6, item.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, fmt.Sprintf("%.2f", item.Price), "", 1, "R", false, 0, "")
	}
	pdf.Ln(2)
	g.hr(pdf)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(130, 8, "Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("%.2f", data.Total), "", 1, "R", false, 0, "")

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 10,
			fmt.Sprintf("Page %d/{nb}", pdf.PageNo()),
			"", 0, "C", false, 0, "",
		)
	})

	if err := pdf.OutputFileAndClose(absPath); err != nil {
		return "", err
	}
	// files under RootDir are served from /uploads
	return "/uploads/" + filepath.ToSlash(filepath.Base(absPath)), nil
}

func (g *InvoiceGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *InvoiceGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

// InvoiceDataFromOrder assembles the render input from an order and its
// resolved products.
func InvoiceDataFromOrder(order *models.Order, customer string, products []*models.Product) InvoiceData {
	items := make([]InvoiceItem, 0, len(products))
	for _, p := range products {
		items = append(items, InvoiceItem{Name: p.Name, Price: p.Price})
	}
	return InvoiceData{
		OrderID:      order.ID,
		CustomerName: customer,
		Items:        items,
		Total:        order.Total,
		CreatedAt:    order.CreatedAt,
	}
}
