package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/medflow/clinic-platform/internal/render"
)

// basicEngine renders a plain single-page text PDF. It stands in for a
// templated renderer so the pool and artifact flow work end to end without a
// headless browser on the host.
type basicEngine struct{}

func (basicEngine) RenderPrescriptionPDF(ctx context.Context, view *render.PrescriptionView) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := []string{
		view.ClinicName,
		"Prescription " + view.PrescriptionID,
		"Date: " + view.Date,
		"Patient: " + view.PatientName,
		"Doctor: " + view.DoctorName,
	}
	if view.Diagnosis != "" {
		lines = append(lines, "Diagnosis: "+view.Diagnosis)
	}
	if len(view.MedicationLines) > 0 {
		lines = append(lines, "", "Medications:")
		lines = append(lines, view.MedicationLines...)
	}
	if len(view.TestLines) > 0 {
		lines = append(lines, "", "Tests:")
		lines = append(lines, view.TestLines...)
	}
	if view.Notes != "" {
		lines = append(lines, "", "Notes: "+view.Notes)
	}

	var content bytes.Buffer
	content.WriteString("BT /F1 11 Tf 50 780 Td 14 TL\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", escapePDFText(line))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return out.Bytes(), nil
}

func (basicEngine) Close() error { return nil }

func escapePDFText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(s)
}
