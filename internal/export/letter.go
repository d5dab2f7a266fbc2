// Package export builds the downloadable artifacts: the satisfaction
// letter (.docx) and the inventory spreadsheet (.xlsx).
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fumiama/go-docx"

	"hac-portal/internal/domain"
)

var spanishMonths = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// LetterFilename derives the download name from the project field.
func LetterFilename(fields domain.LetterFields) string {
	return fmt.Sprintf("Carta_Satisfaccion_%s.docx", fields.ProjectName)
}

// Letter renders a satisfaction letter for the given form fields and
// returns the .docx bytes.
func Letter(fields domain.LetterFields) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	w.AddParagraph().Justification("end").AddText("Fecha: " + formatLetterDate(fields.DocDate))
	w.AddParagraph()
	w.AddParagraph().AddText("A quien interese:").Bold()
	w.AddParagraph().AddText("Por medio de la presente, queremos expresar nuestra satisfacción con los trabajos realizados por HidroAmbiente Consultores.")
	w.AddParagraph().AddText("Su profesionalismo y compromiso han sido fundamentales para el éxito de los proyectos desarrollados, cumpliendo con nuestras expectativas y necesidades.")
	w.AddParagraph().AddText("A continuación, se presenta un cuadro detallado con la información correspondiente:")
	w.AddParagraph()

	rows := [][2]string{
		{"Tipo de Proyecto", fields.ProjectType},
		{"Nombre del Proyecto", fields.ProjectName},
		{"Nombre del Cliente", fields.ClientName},
		{"Año", fields.Year},
		{"Contacto", fields.ContactPerson},
		{"Puesto del Contacto", fields.ContactPosition},
		{"Correo Electrónico", fields.ContactEmail},
	}
	table := w.AddTable(len(rows), 2, 0, nil)
	for i, row := range rows {
		table.TableRows[i].TableCells[0].AddParagraph().AddText(row[0]).Bold()
		table.TableRows[i].TableCells[1].AddParagraph().AddText(row[1])
	}

	w.AddParagraph()
	w.AddParagraph().AddText("Finalmente, agradecemos nuevamente su excelente trabajo y quedamos en espera de futuras colaboraciones que sigan fortaleciendo esta relación profesional.")
	w.AddParagraph()
	w.AddParagraph().AddText("Atentamente,")
	w.AddParagraph()
	w.AddParagraph()
	w.AddParagraph().AddText("_________________________")
	w.AddParagraph().AddText(fields.ContactPerson).Bold()
	w.AddParagraph().AddText(fields.ContactPosition)

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write letter document: %w", err)
	}
	return buf.Bytes(), nil
}

// formatLetterDate renders "2006-01-02" as "2 de enero de 2006",
// falling back to the raw input when it does not parse.
func formatLetterDate(docDate string) string {
	t, err := time.Parse("2006-01-02", docDate)
	if err != nil {
		return docDate
	}
	return fmt.Sprintf("%d de %s de %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
}
