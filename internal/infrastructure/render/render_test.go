package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/comparewise/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sampleRows = []domain.ComparisonRow{
	{DetailName: "Color", Product1: "Red", Product2: "Blue"},
	{DetailName: "Weight", Product1: "1kg", Product2: "2kg"},
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, sampleRows)

	out := buf.String()
	assert.Contains(t, out, "Detail Name")
	assert.Contains(t, out, "Product 1")
	assert.Contains(t, out, "Product 2")
	assert.Contains(t, out, "Color")
	assert.Contains(t, out, "Blue")
	assert.Less(t, strings.Index(out, "Color"), strings.Index(out, "Weight"))
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, nil)

	assert.Contains(t, buf.String(), "Detail Name")
}

func TestWorkbook(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Workbook(&buf, "B000123456", "B0009999XX", sampleRows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Comparison")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Detail Name", "Product 1 (B000123456)", "Product 2 (B0009999XX)"}, rows[0])
	assert.Equal(t, []string{"Color", "Red", "Blue"}, rows[1])
	assert.Equal(t, []string{"Weight", "1kg", "2kg"}, rows[2])
}

func TestTranscriptMarkdown(t *testing.T) {
	md := TranscriptMarkdown([]domain.Message{
		{Role: domain.RoleAssistant, Content: domain.Greeting},
		{Role: domain.RoleUser, Content: "Which is lighter?"},
	})

	assert.Contains(t, md, "**Assistant**")
	assert.Contains(t, md, "**You**")
	assert.Less(t, strings.Index(md, domain.Greeting), strings.Index(md, "Which is lighter?"))
}

func TestTranscript(t *testing.T) {
	out, err := Transcript([]domain.Message{
		{Role: domain.RoleAssistant, Content: domain.Greeting},
		{Role: domain.RoleUser, Content: "Which is lighter?"},
		{Role: domain.RoleAssistant, Content: "The first one."},
	}, 0)

	require.NoError(t, err)
	assert.Contains(t, out, "Ask me a question about the products!")
	assert.Contains(t, out, "Which is lighter?")
	assert.Contains(t, out, "The first one.")
}
