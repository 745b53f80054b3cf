package renderer

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"quizbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest(dir string) domain.RenderRequest {
	return domain.RenderRequest{
		Dir:      filepath.Join(dir, "42"),
		BaseName: "test_20240301T100000_abc",
		Data: domain.ReportData{
			Title:  "Test Report",
			UserID: 42,
			Questions: []domain.ReportEntry{
				{QuestionNumber: 1, QuestionText: "Dog is to bark as cat is to", MainCategoryName: "Analogy",
					OptionA: "purr", OptionB: "meow", OptionC: "hiss", OptionD: "roar",
					CorrectAnswer: "B", Answered: true, UserAnswer: "A", Explanation: "Cats meow."},
				{QuestionNumber: 2, QuestionText: "Is 3 < 4?", MainCategoryName: "Arithmetic",
					OptionA: "yes", OptionB: "no", OptionC: "maybe", OptionD: "it's complicated",
					CorrectAnswer: "A", Answered: true, UserAnswer: "A", IsCorrect: true},
				{QuestionNumber: 3, QuestionText: "Pick the odd one", MainCategoryName: "Analogy",
					OptionA: "red", OptionB: "blue", OptionC: "green", OptionD: "loud", CorrectAnswer: "D"},
			},
		},
	}
}

func TestHTMLPDF_RenderAndConvert(t *testing.T) {
	ctx := context.Background()
	r := NewHTMLPDF("")

	html, err := r.Render(ctx, sampleRequest(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, ".html", filepath.Ext(html))

	raw, err := os.ReadFile(html)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "<b>Test Report</b>")
	assert.Contains(t, content, "<b>Question 1</b> (Analogy)")
	assert.Contains(t, content, "Correct answer: <b>B</b>")
	assert.Contains(t, content, "<i>Cats meow.</i>")
	assert.Contains(t, content, "Is 3 &lt; 4?")
	assert.Contains(t, content, "(correct)")
	assert.Contains(t, content, "Your answer: - (not answered)")

	pdf, err := r.Convert(ctx, html)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(html), "test_20240301T100000_abc.pdf"), pdf)
	out, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestHTMLPDF_CustomTemplate(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "custom.html")
	require.NoError(t, os.WriteFile(ref, []byte(`{{range .questions}}#{{.QuestionNumber}} {{end}}`), 0o644))

	req := sampleRequest(dir)
	req.TemplateRef = ref
	html, err := NewHTMLPDF("").Render(context.Background(), req)
	require.NoError(t, err)
	raw, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Equal(t, "#1 #2 #3 ", string(raw))
}

func TestHTMLPDF_Failures(t *testing.T) {
	ctx := context.Background()
	r := NewHTMLPDF("")

	req := sampleRequest(t.TempDir())
	req.TemplateRef = filepath.Join(t.TempDir(), "missing.html")
	_, err := r.Render(ctx, req)
	assert.Error(t, err)

	_, err = r.Convert(ctx, filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.Render(cancelled, sampleRequest(t.TempDir()))
	assert.ErrorIs(t, err, context.Canceled)
}
