package renderer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"quizbot/internal/domain"
	"quizbot/internal/logger"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

const defaultTemplate = "templates/report.html.tmpl"

// HTMLPDF renders the report as HTML and converts it with fpdf's basic HTML writer,
// which understands b, i, u, a, br and center.
type HTMLPDF struct {
	fontPath string
}

// NewHTMLPDF uses the UTF-8 TrueType font at fontPath when set, otherwise Helvetica with cp1252.
func NewHTMLPDF(fontPath string) *HTMLPDF {
	return &HTMLPDF{fontPath: fontPath}
}

func (r *HTMLPDF) loadTemplate(ref string) (*template.Template, error) {
	if ref == "" {
		return template.ParseFS(templateFS, defaultTemplate)
	}
	return template.ParseFiles(ref)
}

// Render writes <Dir>/<BaseName>.html.
func (r *HTMLPDF) Render(ctx context.Context, req domain.RenderRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tmpl, err := r.loadTemplate(req.TemplateRef)
	if err != nil {
		return "", fmt.Errorf("failed to load report template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, map[string]any{
		"title":     req.Data.Title,
		"user_id":   req.Data.UserID,
		"questions": req.Data.Questions,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute report template: %w", err)
	}

	if err := os.MkdirAll(req.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}
	path := filepath.Join(req.Dir, req.BaseName+".html")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}

// fpdf does not decode entities, only the ones html/template emits for plain text are undone.
// &lt; and &gt; stay escaped so that question text cannot open tags.
var entityReplacer = strings.NewReplacer("&#39;", "'", "&#34;", `"`, "&quot;", `"`, "&amp;", "&", "&#43;", "+")

// Convert writes the PDF next to the intermediate document.
func (r *HTMLPDF) Convert(ctx context.Context, intermediatePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(intermediatePath)
	if err != nil {
		return "", fmt.Errorf("failed to read intermediate report: %w", err)
	}
	body := strings.NewReplacer("\r\n", "", "\n", "").Replace(string(raw))
	body = entityReplacer.Replace(body)

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := func(s string) string { return s }
	if r.fontPath != "" {
		pdf.AddUTF8Font("report", "", r.fontPath)
		pdf.AddUTF8Font("report", "B", r.fontPath)
		pdf.AddUTF8Font("report", "I", r.fontPath)
		pdf.SetFont("report", "", 11)
	} else {
		pdf.SetFont("Helvetica", "", 11)
		tr = pdf.UnicodeTranslatorFromDescriptor("")
	}
	pdf.AddPage()
	html := pdf.HTMLBasicNew()
	html.Write(5.5, tr(body))

	out := strings.TrimSuffix(intermediatePath, filepath.Ext(intermediatePath)) + ".pdf"
	if err := pdf.OutputFileAndClose(out); err != nil {
		logger.Get().Error("HTMLPDF: conversion failed", zap.String("path", out), zap.Error(err))
		return out, fmt.Errorf("failed to write pdf: %w", err)
	}
	return out, nil
}

var _ domain.DocumentRenderer = (*HTMLPDF)(nil)
