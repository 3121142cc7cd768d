// Package render encodes format-neutral report documents into downloadable
// artifacts.
package render

import (
	"github.com/lawdesk/crm/internal/core/domain"
	"github.com/lawdesk/crm/internal/core/ports"
)

// Renderers returns one renderer per supported report format.
func Renderers() map[domain.ReportFormat]ports.Renderer {
	return map[domain.ReportFormat]ports.Renderer{
		domain.FormatPDF:   NewPDF(),
		domain.FormatExcel: NewExcel(),
		domain.FormatCSV:   NewCSV(),
	}
}
